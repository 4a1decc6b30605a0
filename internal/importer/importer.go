// Package importer turns broker holdings exports of unknown shape into
// holding candidates: it decodes the bytes, detects the delimiter, maps
// localized headers to fields and parses every data row.
package importer

import (
	"log"
	"strings"
	"time"

	"StockOS/internal/model"
)

// Options controls a parse. A zero Today means time.Now().
type Options struct {
	Synonyms Synonyms
	Today    time.Time
}

// Result is a successful parse.
type Result struct {
	Delimiter  rune
	Headers    []string
	Mapping    ColumnMapping
	DataRows   int
	Candidates []Candidate
	Warnings   []Warning
}

// Holdings returns the parsed holdings in file order.
func (r *Result) Holdings() []model.Holding {
	out := make([]model.Holding, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.Holding
	}
	return out
}

// Parse decodes raw file bytes and parses them. See ParseText.
func Parse(raw []byte, opts Options) (*Result, error) {
	return ParseText(Decode(raw), opts)
}

// ParseText runs delimiter detection, column mapping and row parsing.
// Structural problems abort with EmptyInputError, SchemaRecognitionError
// or NoValidRowsError; cell problems only produce warnings.
func ParseText(text string, opts Options) (*Result, error) {
	syn := opts.Synonyms
	if syn == nil {
		syn = DefaultSynonyms
	}
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}

	det, err := DetectDelimiter(text)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] import: delimiter=%s headers=%s", DelimiterName(det.Delimiter), strings.Join(det.Headers, " | "))

	mapping, err := MapColumns(det.Headers, syn)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Delimiter: det.Delimiter,
		Headers:   det.Headers,
		Mapping:   mapping,
		DataRows:  len(det.Lines) - 1,
	}
	for i, line := range det.Lines[1:] {
		c, warnings, ok := ParseRow(SplitRow(line, det.Delimiter), mapping, i+2, today)
		if !ok {
			continue
		}
		res.Candidates = append(res.Candidates, c)
		res.Warnings = append(res.Warnings, warnings...)
	}
	for _, w := range res.Warnings {
		log.Printf("[WARN] import: %s", w)
	}

	if len(res.Candidates) == 0 {
		return nil, &NoValidRowsError{DataRows: res.DataRows}
	}
	return res, nil
}
