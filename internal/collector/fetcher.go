package collector

import (
	"context"

	"GridironMarket/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchBoard(ctx context.Context) (*model.MarketBoard, error)
	FetchTeamHistory(ctx context.Context, team string) ([]model.TeamSnapshot, error)
	FetchPortfolio(ctx context.Context) (*model.PortfolioSnapshot, error)
	FetchPortfolioHistory(ctx context.Context) ([]model.PortfolioPoint, error)
	FetchLiveGames(ctx context.Context) ([]model.LiveGame, error)
	Name() string
}
