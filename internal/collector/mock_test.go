package collector

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GridironMarket/internal/model"
)

func TestNextPrice_Bounded(t *testing.T) {
	assert.Equal(t, 175.0, NextPrice(300, 100, 1))
	assert.Equal(t, 25.0, NextPrice(10, 100, -1))
	// at the anchor with no shock the price holds
	assert.Equal(t, 100.0, NextPrice(100, 100, 0))
	// above the anchor it reverts
	assert.Less(t, NextPrice(150, 100, 0), 150.0)
	// zero anchor falls back to the current price
	assert.Equal(t, 50.0, NextPrice(50, 0, 0))
}

func TestNextPrice_RoundsToCents(t *testing.T) {
	p := NextPrice(123.456, 120, 0.37)
	assert.Equal(t, p, math.Round(p*100)/100)
}

func TestMockFetcher_Deterministic(t *testing.T) {
	clock := func() time.Time { return baseTime }
	a, b := NewMockFetcher(42), NewMockFetcher(42)
	a.Now, b.Now = clock, clock

	ba, err := a.FetchBoard(context.Background())
	require.NoError(t, err)
	bb, err := b.FetchBoard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ba, bb)
}

func TestMockFetcher_ETFIsDivisionAverage(t *testing.T) {
	m := NewMockFetcher(9)
	m.Now = func() time.Time { return baseTime }
	board, err := m.FetchBoard(context.Background())
	require.NoError(t, err)

	prices := map[string]float64{}
	for _, s := range board.Teams {
		prices[s.TeamName] = s.Value
	}
	for _, etf := range board.ETFs {
		var sum float64
		for _, k := range DivisionMembers(etf.TeamName) {
			sum += prices[k]
		}
		assert.InDelta(t, sum/4, etf.Value, 0.006, etf.TeamName)
	}
}

func TestMockFetcher_HistoryAndPortfolio(t *testing.T) {
	m := NewMockFetcher(5)
	m.Now = func() time.Time { return baseTime }
	m.HistoryLimit = 4
	m.Portfolio = &model.PortfolioSnapshot{
		Balance:   100,
		Positions: []model.Position{{TeamName: "Seattle", Quantity: 2}},
	}
	m.Backfill(6, time.Minute)

	h, err := m.FetchTeamHistory(context.Background(), "Seattle")
	require.NoError(t, err)
	require.Len(t, h, 4)
	assert.Equal(t, baseTime, h[3].Timestamp)

	ph, err := m.FetchPortfolioHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, ph, 4)
	assert.InDelta(t, 100+2*h[3].Value, ph[3].Value, 0.006)

	_, err = m.FetchTeamHistory(context.Background(), "London")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGameClock(t *testing.T) {
	cases := []struct {
		elapsed       time.Duration
		quarter, left string
	}{
		{0, "Q1", "15:00"},
		{135 * time.Second, "Q1", "12:45"},
		{15 * time.Minute, "Q2", "15:00"},
		{36*time.Minute + 15*time.Second, "Q3", "8:45"},
		{59*time.Minute + 59*time.Second, "Q4", "0:01"},
		{time.Hour, "Final", "0:00"},
		{-time.Minute, "Q1", "15:00"},
	}
	for _, tc := range cases {
		q, left := GameClock(tc.elapsed)
		assert.Equal(t, tc.quarter, q, tc.elapsed.String())
		assert.Equal(t, tc.left, left, tc.elapsed.String())
	}
}

func TestMockFetcher_LiveGames(t *testing.T) {
	m := NewMockFetcher(5)
	m.Now = func() time.Time { return baseTime }

	games, err := m.FetchLiveGames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, games, "nothing is live before the first tick")

	m.Backfill(10, time.Minute)
	games, err = m.FetchLiveGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, defaultLiveGames)

	board, err := m.FetchBoard(context.Background())
	require.NoError(t, err)
	prices := map[string]float64{}
	for _, s := range board.Teams {
		prices[s.TeamName] = s.Price
	}
	games, err = m.FetchLiveGames(context.Background())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, g := range games {
		assert.Equal(t, "Q1", g.Quarter)
		assert.Equal(t, "12:30", g.Clock)
		assert.False(t, g.Final)
		for _, side := range []model.GameSide{g.Home, g.Away} {
			assert.False(t, seen[side.TeamName], "a team plays one game at a time")
			seen[side.TeamName] = true
			assert.Equal(t, prices[side.TeamName], side.Price)
			assert.Equal(t, Abbreviation(side.TeamName), side.Abbreviation)
			assert.GreaterOrEqual(t, side.Score, 0)
		}
	}
}

func TestMockFetcher_LiveGamesFinishAndRestart(t *testing.T) {
	m := NewMockFetcher(5)
	m.Now = func() time.Time { return baseTime }
	m.Backfill(int(gameLength/gameClockStep)+1, time.Minute)

	games, err := m.FetchLiveGames(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, games)
	for _, g := range games {
		assert.True(t, g.Final)
		assert.Equal(t, "Final", g.Quarter)
		assert.True(t, strings.HasPrefix(g.ID, "1-"), g.ID)
	}

	m.Tick(baseTime.Add(time.Minute))
	games, err = m.FetchLiveGames(context.Background())
	require.NoError(t, err)
	for _, g := range games {
		assert.False(t, g.Final)
		assert.Equal(t, "15:00", g.Clock)
		assert.True(t, strings.HasPrefix(g.ID, "2-"), g.ID)
		assert.Zero(t, g.Home.Score)
		assert.Zero(t, g.Home.ChangePercent)
	}
}

func TestMockFetcher_LiveGamesDisabled(t *testing.T) {
	m := NewMockFetcher(5)
	m.LiveGames = 0
	m.Backfill(3, time.Minute)
	games, err := m.FetchLiveGames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, games)
}
