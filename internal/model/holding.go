package model

import "github.com/shopspring/decimal"

// Default field values for holdings created by an import.
const (
	DefaultIndustry      = "未分类"
	DefaultMechanism     = "growth"
	DefaultMechanismText = "自动导入"
	DefaultRationale     = "从表格自动导入"
	DefaultReasoning     = "表格数据，请手动编辑投资逻辑"
	Pending              = "待定"
)

// Holding is a single portfolio position. Name is the merge key and is
// unique within a Portfolio.
//
// A price that could not be read from the source is not Valid and is
// persisted as null. It propagates: any value derived from it is not
// Valid either.
type Holding struct {
	Name          string              `json:"name"`
	Code          string              `json:"symbol"`
	QuoteCode     string              `json:"apiSymbol"`
	Industry      string              `json:"industry"`
	Mechanism     string              `json:"mechanism"`
	MechanismText string              `json:"mechanismText"`
	Rationale     string              `json:"rationale"`
	Reasoning     string              `json:"reasoning"`
	TargetPrice   string              `json:"targetPrice"`
	Triggers      string              `json:"triggers"`
	BuyPrice      decimal.NullDecimal `json:"buyPrice"`
	CurrentPrice  decimal.NullDecimal `json:"currentPrice"`
	Quantity      decimal.Decimal     `json:"quantity"`
	BuyDate       string              `json:"buyDate"` // YYYY-MM-DD
	Edited        bool                `json:"edited,omitempty"`
}

// MarketValue returns current price × quantity.
func (h Holding) MarketValue() decimal.NullDecimal {
	if !h.CurrentPrice.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(h.CurrentPrice.Decimal.Mul(h.Quantity))
}

// Profit returns (current price − buy price) × quantity.
func (h Holding) Profit() decimal.NullDecimal {
	if !h.CurrentPrice.Valid || !h.BuyPrice.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(h.CurrentPrice.Decimal.Sub(h.BuyPrice.Decimal).Mul(h.Quantity))
}

// Price returns a known price. It is a shorthand for building holdings.
func Price(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(v)
}

// WatchItem is a free-form watchlist entry.
type WatchItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Signal string `json:"signal"`
	Budget string `json:"budget"`
}

// Portfolio is the persisted state: cash, holdings and watchlist.
type Portfolio struct {
	AvailableCash decimal.Decimal `json:"availableCash"`
	Holdings      []Holding       `json:"ownedStocks"`
	Watchlist     []WatchItem     `json:"watchlist"`
}

// Clone returns a deep copy of the slices of p.
func (p Portfolio) Clone() Portfolio {
	p.Holdings = append([]Holding(nil), p.Holdings...)
	p.Watchlist = append([]WatchItem(nil), p.Watchlist...)
	return p
}
