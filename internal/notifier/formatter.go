package notifier

import (
	"fmt"
	"strings"

	"GridironMarket/internal/chart"
	"GridironMarket/internal/collector"
	"GridironMarket/internal/format"
	"GridironMarket/internal/model"
	"GridironMarket/internal/portfolio"
	"GridironMarket/internal/screener"
)

// FormatBoard formats the market board: teams first, then division ETFs.
func FormatBoard(teams, etfs []model.Team) string {
	var b strings.Builder
	b.WriteString("🏈 <b>Market Board</b>\n\n")
	if len(teams) == 0 && len(etfs) == 0 {
		b.WriteString("No market data yet.\n")
		return b.String()
	}
	for _, t := range teams {
		b.WriteString(boardLine(t))
	}
	if len(etfs) > 0 {
		b.WriteString("\n<b>Division ETFs</b>\n")
		for _, t := range etfs {
			b.WriteString(boardLine(t))
		}
	}
	return b.String()
}

func boardLine(t model.Team) string {
	return fmt.Sprintf("%-5s %-14s %10s  %8s  vol %s\n",
		t.Abbreviation, t.Name, format.Currency(t.Price),
		format.PercentPtr(t.WeekChangePercent), format.Volume(t.Volume))
}

// FormatChart formats one rendered chart frame.
func FormatChart(v chart.View) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s\n\n", v.TeamName, v.RangeLabel))

	label := "Price"
	if v.Hovering {
		label = "Hover"
	}
	b.WriteString(fmt.Sprintf("%s: %s @ %s\n", label, v.DisplayPrice, v.DisplayTime))
	b.WriteString(fmt.Sprintf("1W: %s | 1M: %s\n", v.WeekText, v.MonthText))
	b.WriteString(fmt.Sprintf("Axis: %s\n", format.Range(v.Domain.Min, v.Domain.Max)))

	if n := len(v.Series); n > 0 {
		b.WriteString(fmt.Sprintf("Points: %d (%s → %s)\n", n, v.Ticks[0], v.Ticks[n-1]))
	} else {
		b.WriteString("Points: 0\n")
	}

	if v.Selection != nil {
		b.WriteString(fmt.Sprintf("\nSelection: %s → %s\n",
			format.ChartPrice(v.Selection.Start.Price), format.ChartPrice(v.Selection.End.Price)))
		if v.ChangeText != "" {
			b.WriteString(fmt.Sprintf("Change: %s\n", v.ChangeText))
		}
	}
	return b.String()
}

// FormatPortfolio formats account stats, holdings and the value trend.
func FormatPortfolio(holdings []model.Holding, stats model.PortfolioStats, perf portfolio.Performance) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio</b>\n\n")
	b.WriteString(fmt.Sprintf("Account value: %s\n", format.Currency(portfolio.AccountValue(stats))))
	b.WriteString(fmt.Sprintf("Cash: %s\n", format.Currency(stats.Cash)))
	b.WriteString(fmt.Sprintf("Holdings: %s (cost %s)\n", format.Currency(stats.TotalValue), format.Currency(stats.TotalCost)))
	b.WriteString(fmt.Sprintf("P&L: %s (%s)\n",
		format.SignedCurrency(stats.ProfitLoss),
		format.OptionalPercent(stats.ProfitLossPercent, stats.HasProfitLossPercent)))
	if stats.HasDayChange {
		b.WriteString(fmt.Sprintf("Today: %s (%s)\n",
			format.SignedCurrency(stats.DayChange), format.SignedPercent(stats.DayChangePercent)))
	}
	b.WriteString(fmt.Sprintf("1W: %s | 1M: %s\n", format.PercentPtr(perf.WeekChange), format.PercentPtr(perf.MonthChange)))

	if len(holdings) == 0 {
		b.WriteString("\nNo open positions.\n")
		return b.String()
	}
	b.WriteString("\n<b>Positions</b>\n")
	for _, h := range holdings {
		b.WriteString(fmt.Sprintf("%-5s x%-4d avg %s  now %s  %s (%s)\n",
			h.Abbreviation, h.Quantity, format.Currency(h.AvgPrice), format.Currency(h.CurrentPrice),
			format.SignedCurrency(h.ProfitLoss), format.SignedPercent(h.ProfitLossPercent)))
	}
	return b.String()
}

// FormatTrending lists the biggest movers of the week with their trend tier.
func FormatTrending(teams []model.Team) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Trending</b>\n\n")
	if len(teams) == 0 {
		b.WriteString("Not enough history yet.\n")
		return b.String()
	}
	for i, t := range teams {
		b.WriteString(fmt.Sprintf("%d. %s %s %s (%s)\n",
			i+1, t.Name, format.Currency(t.Price), format.PercentPtr(t.WeekChangePercent),
			screener.Classify(t.WeekChangePercent)))
	}
	return b.String()
}

// FormatTrade confirms an executed trade.
func FormatTrade(txn model.Transaction, balance float64) string {
	verb := "Bought"
	if txn.Action == model.ActionSell {
		verb = "Sold"
	}
	return fmt.Sprintf("✅ %s %d %s @ %s\nCash: %s",
		verb, txn.Quantity, txn.TeamName, format.Currency(txn.Price), format.Currency(balance))
}

// FormatLiveGames lists each game away-at-home with score, clock and each
// side's move since kickoff.
func FormatLiveGames(games []model.LiveGame) string {
	var b strings.Builder
	b.WriteString("🔴 <b>Live Games</b>\n\n")
	if len(games) == 0 {
		b.WriteString("No games in progress.\n")
		return b.String()
	}
	for _, g := range games {
		status := g.Quarter + " " + g.Clock
		if g.Final {
			status = "Final"
		}
		b.WriteString(fmt.Sprintf("%s %d @ %s %d | %s\n",
			g.Away.Abbreviation, g.Away.Score, g.Home.Abbreviation, g.Home.Score, status))
		for _, side := range []model.GameSide{g.Away, g.Home} {
			b.WriteString(fmt.Sprintf("  %-5s %10s  %s\n",
				side.Abbreviation, format.Currency(side.Price), format.SignedPercent(side.ChangePercent)))
		}
	}
	return b.String()
}

// FormatTransactions lists trades in the order given.
func FormatTransactions(txns []model.Transaction) string {
	var b strings.Builder
	b.WriteString("🧾 <b>Transactions</b>\n\n")
	if len(txns) == 0 {
		b.WriteString("No trades yet.\n")
		return b.String()
	}
	for _, t := range txns {
		b.WriteString(fmt.Sprintf("%s %-4s %-5s x%-4d @ %s = %s\n",
			t.Timestamp.In(format.Location).Format("Jan 2 15:04"), strings.ToUpper(string(t.Action)),
			collector.Abbreviation(t.TeamName), t.Quantity, format.Currency(t.Price),
			format.Currency(t.Price*float64(t.Quantity))))
	}
	return b.String()
}
