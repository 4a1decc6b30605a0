// Package analytics computes profit and loss aggregates over a portfolio
// snapshot.
package analytics

import (
	"github.com/shopspring/decimal"

	"StockOS/internal/model"
)

// Compute values every holding and sums market value, profit and profit
// per industry. Industries appear in the order they are first seen. It is
// pure: the same snapshot always yields the same summary.
func Compute(p model.Portfolio) model.Summary {
	zero := model.Price(decimal.Zero)
	sum := model.Summary{
		Positions:        make([]model.PositionValue, 0, len(p.Holdings)),
		TotalMarketValue: zero,
		TotalProfit:      zero,
		AvailableCash:    p.AvailableCash,
	}
	industryIdx := make(map[string]int)

	for _, h := range p.Holdings {
		pv := model.PositionValue{
			Name:        h.Name,
			Industry:    h.Industry,
			MarketValue: h.MarketValue(),
			Profit:      h.Profit(),
		}
		sum.Positions = append(sum.Positions, pv)
		sum.TotalMarketValue = add(sum.TotalMarketValue, pv.MarketValue)
		sum.TotalProfit = add(sum.TotalProfit, pv.Profit)

		i, ok := industryIdx[h.Industry]
		if !ok {
			i = len(sum.Industries)
			industryIdx[h.Industry] = i
			sum.Industries = append(sum.Industries, model.IndustryProfit{Industry: h.Industry, Profit: zero})
		}
		sum.Industries[i].Profit = add(sum.Industries[i].Profit, pv.Profit)
	}

	sum.TotalAssets = add(sum.TotalMarketValue, model.Price(sum.AvailableCash))
	return sum
}

func add(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return model.Price(a.Decimal.Add(b.Decimal))
}
