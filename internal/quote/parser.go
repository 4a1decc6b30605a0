package quote

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"StockOS/internal/model"
)

// PriceField is the index of the latest traded price in a feed record.
const PriceField = 3

// feedLine matches one `v_<code>="<record>";` assignment of the feed.
var feedLine = regexp.MustCompile(`v_([A-Za-z0-9_]+)="([^"]*)"`)

// ParseFeed extracts the per-code records from a feed response body.
func ParseFeed(body string) map[string]string {
	out := make(map[string]string)
	for _, m := range feedLine.FindAllStringSubmatch(body, -1) {
		out[m[1]] = m[2]
	}
	return out
}

// ParsePrice reads the latest price from a tilde-delimited record.
func ParsePrice(record string) (decimal.Decimal, bool) {
	parts := strings.Split(record, "~")
	if len(parts) <= PriceField {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(parts[PriceField]))
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuotes builds quotes for the requested codes. Codes with a missing
// or unparseable record are counted in skipped and left out.
func ParseQuotes(records map[string]string, codes []string) (quotes []model.Quote, skipped int) {
	for _, c := range codes {
		rec, ok := records[c]
		if !ok {
			skipped++
			continue
		}
		p, ok := ParsePrice(rec)
		if !ok {
			skipped++
			continue
		}
		quotes = append(quotes, model.Quote{QuoteCode: c, Price: p})
	}
	return quotes, skipped
}
