package model

import "github.com/shopspring/decimal"

// PositionValue is the per-holding valuation.
type PositionValue struct {
	Name        string
	Industry    string
	MarketValue decimal.NullDecimal
	Profit      decimal.NullDecimal
}

// IndustryProfit is the summed profit of one industry.
type IndustryProfit struct {
	Industry string
	Profit   decimal.NullDecimal
}

// Summary holds portfolio-level aggregates. Industries keeps the order in
// which each industry was first seen. A total is not Valid when any of its
// terms is not.
type Summary struct {
	Positions        []PositionValue
	TotalMarketValue decimal.NullDecimal
	TotalProfit      decimal.NullDecimal
	AvailableCash    decimal.Decimal
	TotalAssets      decimal.NullDecimal
	Industries       []IndustryProfit
}
