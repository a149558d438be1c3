package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/collector"
	"GridironMarket/internal/model"
)

type openPosition struct {
	qty     int64
	cost    decimal.Decimal
	lastTxn time.Time
}

// Positions aggregates trades into open positions with average-cost
// accounting: a sale removes cost at the pre-sale average price, and a
// position sold down to zero resets its cost. Closed positions are omitted.
func Positions(txns []model.Transaction) []model.Position {
	open := make(map[string]*openPosition)
	for _, t := range txns {
		p, ok := open[t.TeamName]
		if !ok {
			p = &openPosition{lastTxn: t.Timestamp}
			open[t.TeamName] = p
		}
		if t.Timestamp.After(p.lastTxn) {
			p.lastTxn = t.Timestamp
		}

		qty := int64(t.Quantity)
		if t.Action == model.ActionBuy {
			p.qty += qty
			p.cost = p.cost.Add(decimal.NewFromFloat(t.Price).Mul(decimal.NewFromInt(qty)))
			continue
		}
		p.qty -= qty
		if p.qty > 0 {
			avgBefore := p.cost.Div(decimal.NewFromInt(p.qty + qty))
			p.cost = p.cost.Sub(avgBefore.Mul(decimal.NewFromInt(qty)))
		} else {
			p.cost = decimal.Zero
		}
	}

	out := make([]model.Position, 0, len(open))
	for team, p := range open {
		if p.qty <= 0 {
			continue
		}
		out = append(out, model.Position{
			TeamName:        team,
			Quantity:        int(p.qty),
			AvgPrice:        p.cost.Div(decimal.NewFromInt(p.qty)).Round(2).InexactFloat64(),
			LastTransaction: p.lastTxn,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamName < out[j].TeamName })
	return out
}

// Value prices every position at prices[team]; positions without a usable
// price are valued at their average cost. Non-finite amounts count as zero.
func Value(snap model.PortfolioSnapshot, prices map[string]float64) ([]model.Holding, model.PortfolioStats) {
	var totalValue, totalCost decimal.Decimal
	holdings := make([]model.Holding, 0, len(snap.Positions))

	for _, p := range snap.Positions {
		if !finite(p.AvgPrice) {
			p.AvgPrice = 0
		}
		current, ok := prices[p.TeamName]
		if !ok || !finite(current) || current <= 0 {
			current = p.AvgPrice
		}
		qty := decimal.NewFromInt(int64(p.Quantity))
		value := decimal.NewFromFloat(current).Mul(qty)
		cost := decimal.NewFromFloat(p.AvgPrice).Mul(qty)
		pl := value.Sub(cost)

		h := model.Holding{
			Position:     p,
			Abbreviation: collector.Abbreviation(p.TeamName),
			CurrentPrice: current,
			TotalValue:   value.Round(2).InexactFloat64(),
			TotalCost:    cost.Round(2).InexactFloat64(),
			ProfitLoss:   pl.Round(2).InexactFloat64(),
		}
		if pct, ok := calculator.PercentChange(value.InexactFloat64(), cost.InexactFloat64()); ok {
			h.ProfitLossPercent = pct
		}
		holdings = append(holdings, h)

		totalValue = totalValue.Add(value)
		totalCost = totalCost.Add(cost)
	}

	cash := snap.Balance
	if !finite(cash) {
		cash = 0
	}
	stats := model.PortfolioStats{
		Cash:       cash,
		TotalValue: totalValue.Round(2).InexactFloat64(),
		TotalCost:  totalCost.Round(2).InexactFloat64(),
		ProfitLoss: totalValue.Sub(totalCost).Round(2).InexactFloat64(),
	}
	if !totalCost.IsZero() {
		stats.ProfitLossPercent = totalValue.Sub(totalCost).Div(totalCost).Mul(decimal.NewFromInt(100)).InexactFloat64()
		stats.HasProfitLossPercent = true
	}
	return holdings, stats
}

// AccountValue is cash plus the market value of all holdings.
func AccountValue(stats model.PortfolioStats) float64 {
	return decimal.NewFromFloat(stats.Cash).Add(decimal.NewFromFloat(stats.TotalValue)).Round(2).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
