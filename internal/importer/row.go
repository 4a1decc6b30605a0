package importer

import (
	"encoding/csv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"StockOS/internal/model"
	"StockOS/internal/quote"
)

// Candidate is a parsed row before reconciliation.
type Candidate struct {
	Row     int
	Holding model.Holding
}

// SplitRow tokenizes one data line. Quoted cells may contain the
// delimiter; surrounding and stray quote characters are removed.
func SplitRow(line string, delim rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	cells, err := r.Read()
	if err != nil {
		cells = strings.Split(line, string(delim))
	}
	return cleanCells(cells)
}

// ParseNumber parses a locale formatted number such as "1,234.50".
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseRow turns one row of cells into a candidate. ok is false when the
// row is noise (fewer than two cells or no name) and should be skipped.
// Numeric problems never drop the row; they default the field and are
// reported as warnings.
func ParseRow(cells []string, m ColumnMapping, line int, today time.Time) (c Candidate, warnings []Warning, ok bool) {
	if len(cells) < 2 {
		return Candidate{}, nil, false
	}
	name := cell(cells, m.Index(FieldName))
	if name == "" {
		return Candidate{}, nil, false
	}

	warn := func(code WarningCode, f Field, v, msg string) {
		warnings = append(warnings, Warning{Code: code, Row: line, Field: f, Value: v, Message: msg})
	}

	// number parses a mapped numeric cell, falling back to def.
	number := func(f Field, def decimal.NullDecimal, defDesc string) decimal.NullDecimal {
		idx := m.Index(f)
		if idx == -1 {
			return def
		}
		raw := cell(cells, idx)
		v, ok := ParseNumber(raw)
		switch {
		case !ok:
			warn(WarnNumericParse, f, raw, "not a number, using "+defDesc)
			return def
		case v.IsNegative():
			warn(WarnNegative, f, raw, "negative, using "+defDesc)
			return def
		}
		return model.Price(v)
	}

	code := cell(cells, m.Index(FieldCode))
	industry := cell(cells, m.Index(FieldIndustry))
	if industry == "" {
		industry = model.DefaultIndustry
	}
	buy := number(FieldCost, decimal.NullDecimal{}, "unknown")

	h := model.Holding{
		Name:          name,
		Code:          code,
		QuoteCode:     quote.DeriveCode(code),
		Industry:      industry,
		Mechanism:     model.DefaultMechanism,
		MechanismText: model.DefaultMechanismText,
		Rationale:     model.DefaultRationale,
		Reasoning:     model.DefaultReasoning,
		TargetPrice:   model.Pending,
		Triggers:      model.Pending,
		BuyPrice:      buy,
		CurrentPrice:  number(FieldCurrent, buy, "cost price"),
		Quantity:      number(FieldQuantity, model.Price(decimal.Zero), "0").Decimal,
		BuyDate:       today.Format(time.DateOnly),
	}
	return Candidate{Row: line, Holding: h}, warnings, true
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
