package model

import "time"

// TradeAction is the side of a transaction.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// Transaction is a single executed trade.
type Transaction struct {
	ID        string      `json:"id"`
	TeamName  string      `json:"team_name"`
	Action    TradeAction `json:"action"`
	Quantity  int         `json:"quantity"`
	Price     float64     `json:"price"`
	Timestamp time.Time   `json:"timestamp"`
}

// Position is an open holding aggregated from transactions.
type Position struct {
	TeamName        string    `json:"team_name"`
	Quantity        int       `json:"quantity"`
	AvgPrice        float64   `json:"avg_price"`
	LastTransaction time.Time `json:"last_transaction"`
}

// Holding is a position valued at the current market price.
type Holding struct {
	Position
	Abbreviation      string  `json:"abbreviation"`
	CurrentPrice      float64 `json:"current_price"`
	TotalValue        float64 `json:"total_value"`
	TotalCost         float64 `json:"total_cost"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}

// PortfolioSnapshot is the backend's view of a user's account.
type PortfolioSnapshot struct {
	Balance   float64    `json:"balance"`
	Positions []Position `json:"positions"`
}

// PortfolioPoint is one sample of total account value.
type PortfolioPoint struct {
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	Timestamp *int64  `json:"timestamp,omitempty"`
}

// PortfolioStats summarizes a valued portfolio.
type PortfolioStats struct {
	Cash                 float64 `json:"cash"`
	TotalValue           float64 `json:"total_value"`
	TotalCost            float64 `json:"total_cost"`
	ProfitLoss           float64 `json:"profit_loss"`
	ProfitLossPercent    float64 `json:"profit_loss_percent"`
	DayChange            float64 `json:"day_change"`
	DayChangePercent     float64 `json:"day_change_percent"`
	HasProfitLossPercent bool    `json:"has_profit_loss_percent"`
	HasDayChange         bool    `json:"has_day_change"`
}
