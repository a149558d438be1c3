package recorder

import (
	"context"
	"time"

	"GridironMarket/internal/model"
)

// Recorder persists market and portfolio history for the charts.
type Recorder interface {
	RecordSnapshots(ctx context.Context, rows []model.TeamSnapshot) error
	RecordPortfolioValue(ctx context.Context, value float64, at time.Time) error
	TeamHistory(ctx context.Context, team string, since time.Time) ([]model.TeamSnapshot, error)
	PortfolioHistory(ctx context.Context, since time.Time) ([]model.PortfolioPoint, error)
	Close() error
}
