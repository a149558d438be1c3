package recorder

import (
	"context"
	"time"

	"GridironMarket/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshots(context.Context, []model.TeamSnapshot) error { return nil }
func (n *NoopRecorder) RecordPortfolioValue(context.Context, float64, time.Time) error {
	return nil
}
func (n *NoopRecorder) TeamHistory(context.Context, string, time.Time) ([]model.TeamSnapshot, error) {
	return nil, nil
}
func (n *NoopRecorder) PortfolioHistory(context.Context, time.Time) ([]model.PortfolioPoint, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
