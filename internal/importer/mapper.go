package importer

import "strings"

// Field is a semantic column of a holdings export.
type Field string

const (
	FieldName     Field = "name"
	FieldCode     Field = "code"
	FieldQuantity Field = "quantity"
	FieldCost     Field = "cost"
	FieldCurrent  Field = "current"
	FieldIndustry Field = "industry"
)

// Fields lists every semantic field in mapping order.
var Fields = []Field{FieldName, FieldCode, FieldQuantity, FieldCost, FieldCurrent, FieldIndustry}

// RequiredFields must be mapped for an import to proceed.
var RequiredFields = []Field{FieldName, FieldCost}

// Synonyms maps each field to the header labels that identify it. Labels
// are matched as case-sensitive substrings of a header cell.
type Synonyms map[Field][]string

// DefaultSynonyms covers the mainland broker exports plus common English
// labels.
var DefaultSynonyms = Synonyms{
	FieldName:     {"证券名称", "名称", "股票名称", "证券代码", "Security Name", "Stock Name", "Name"},
	FieldCode:     {"证券代码", "代码", "Stock Code", "Security Code", "Symbol", "Code"},
	FieldQuantity: {"证券数量", "持仓数量", "数量", "股份余额", "Quantity", "Shares", "Qty"},
	FieldCost:     {"成本价", "买入价", "成本", "成本金额", "Cost Price", "Avg Cost", "Cost"},
	FieldCurrent:  {"当前价", "现价", "市价", "Current Price", "Last Price", "Market Price"},
	FieldIndustry: {"所属行业", "细分行业", "行业", "Industry", "Sector"},
}

// Merge returns a copy of s with extra labels appended after the existing
// ones of each field.
func (s Synonyms) Merge(extra map[string][]string) Synonyms {
	out := make(Synonyms, len(s))
	for f, labels := range s {
		out[f] = append([]string(nil), labels...)
	}
	for name, labels := range extra {
		f := Field(name)
		out[f] = append(out[f], labels...)
	}
	return out
}

// ColumnMapping maps a field to its column index. A missing field maps to -1.
type ColumnMapping map[Field]int

// Index returns the column of f, or -1 if f is not mapped.
func (m ColumnMapping) Index(f Field) int {
	if i, ok := m[f]; ok {
		return i
	}
	return -1
}

// FindColumn returns the index of the first header containing any of the
// labels, or -1.
func FindColumn(headers, labels []string) int {
	for i, h := range headers {
		for _, l := range labels {
			if l != "" && strings.Contains(h, l) {
				return i
			}
		}
	}
	return -1
}

// MapColumns builds the column mapping for headers. It fails with a
// SchemaRecognitionError when a required field is missing.
func MapColumns(headers []string, syn Synonyms) (ColumnMapping, error) {
	m := make(ColumnMapping, len(Fields))
	for _, f := range Fields {
		m[f] = FindColumn(headers, syn[f])
	}

	var missing []Field
	for _, f := range RequiredFields {
		if m[f] == -1 {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaRecognitionError{Headers: headers, Missing: missing}
	}
	return m, nil
}
