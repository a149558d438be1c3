package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GridironMarket/internal/cache"
	"GridironMarket/internal/format"
	"GridironMarket/internal/model"
)

var baseTime = time.Date(2025, 11, 9, 18, 0, 0, 0, time.UTC)

func init() {
	format.Location = time.UTC
}

func TestNormalizeTeams(t *testing.T) {
	rows := []model.TeamSnapshot{
		{TeamName: "Kansas City", Value: 100, Price: 100, Timestamp: baseTime.Add(time.Minute)},
		{TeamName: "Buffalo", Value: 90, Price: 90, Timestamp: baseTime},
		{TeamName: "Kansas City", Value: 95, Price: 95, Timestamp: baseTime},
		{TeamName: "Buffalo", Value: 91, Price: 91, Volume: 500, Timestamp: baseTime},
		{TeamName: "Gotham Knights", Value: 10, Price: 10},
	}

	teams := NormalizeTeams(rows)
	require.Len(t, teams, 3)

	assert.Equal(t, "Buffalo", teams[0].Name)
	assert.Equal(t, 91.0, teams[0].Price, "later row wins a timestamp tie")
	require.NotNil(t, teams[0].Volume)
	assert.Equal(t, 500.0, *teams[0].Volume)
	assert.Equal(t, "BUF", teams[0].Abbreviation)
	assert.Equal(t, "AFC East", teams[0].Division)

	assert.Equal(t, "Gotham Knights", teams[1].Name)
	assert.Equal(t, "GK", teams[1].Abbreviation)
	assert.Equal(t, "Unknown", teams[1].Division)
	assert.Nil(t, teams[1].Volume)

	assert.Equal(t, 100.0, teams[2].Price)
	assert.Equal(t, "KC", teams[2].Abbreviation)
	assert.Equal(t, model.InstrumentTeam, teams[2].Type)
}

func TestHistoryPoints(t *testing.T) {
	rows := []model.TeamSnapshot{
		{TeamName: "Miami", Price: 12, Timestamp: baseTime.Add(5 * time.Minute)},
		{TeamName: "Miami", Price: 10, Timestamp: baseTime},
		{TeamName: "Miami", Price: 11},
	}
	pts := HistoryPoints(rows, 99, baseTime)
	require.Len(t, pts, 3)
	assert.Equal(t, format.Placeholder, pts[0].Time)
	assert.False(t, pts[0].HasTimestamp())
	assert.Equal(t, "18:00", pts[1].Time)
	assert.Equal(t, "18:05", pts[2].Time)
	assert.Equal(t, 12.0, pts[2].Price)
}

func TestHistoryPoints_EmptyFallsBackToCurrentPrice(t *testing.T) {
	pts := HistoryPoints(nil, 42.5, baseTime)
	require.Len(t, pts, 1)
	assert.Equal(t, 42.5, pts[0].Price)
	assert.Equal(t, "18:00", pts[0].Time)
}

type countingFetcher struct {
	*MockFetcher
	historyCalls int
}

func (c *countingFetcher) FetchTeamHistory(ctx context.Context, team string) ([]model.TeamSnapshot, error) {
	c.historyCalls++
	return c.MockFetcher.FetchTeamHistory(ctx, team)
}

func TestCollector_TeamHistoryIsCached(t *testing.T) {
	ctx := context.Background()
	mock := NewMockFetcher(7)
	mock.Now = func() time.Time { return baseTime }
	mock.Backfill(10, 5*time.Second)
	f := &countingFetcher{MockFetcher: mock}

	c := NewCollector(f, cache.NewQueryCache(cache.NewMemoryStore()), 15*time.Second)
	first, err := c.TeamHistory(ctx, "Detroit", 0)
	require.NoError(t, err)
	assert.Len(t, first, 10)

	_, err = c.TeamHistory(ctx, "Detroit", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.historyCalls)

	c.InvalidateHistory(ctx, "Detroit")
	_, err = c.TeamHistory(ctx, "Detroit", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.historyCalls)
}

func TestCollector_UnknownTeamFallsBack(t *testing.T) {
	mock := NewMockFetcher(1)
	c := NewCollector(mock, nil, 0)
	c.now = func() time.Time { return baseTime }

	pts, err := c.TeamHistory(context.Background(), "London", 77)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 77.0, pts[0].Price)
}

func TestCollector_Collect(t *testing.T) {
	mock := NewMockFetcher(3)
	mock.Now = func() time.Time { return baseTime }
	snap, err := NewCollector(mock, nil, 0).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Teams, 32)
	assert.Len(t, snap.ETFs, 8)

	team, ok := snap.Find("Kansas City Chiefs")
	require.True(t, ok)
	assert.Equal(t, "Kansas City", team.Name)

	etf, ok := snap.Find("NFC West")
	require.True(t, ok)
	assert.Equal(t, model.InstrumentETF, etf.Type)
	assert.Equal(t, "NFCW", etf.Abbreviation)
}
