package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"GridironMarket/internal/cache"
	"GridironMarket/internal/format"
	"GridironMarket/internal/model"
)

// Snapshot is one normalized refresh of the market board.
type Snapshot struct {
	Board *model.MarketBoard
	Teams []model.Team
	ETFs  []model.Team
}

// Find returns the team or ETF called name.
func (s *Snapshot) Find(name string) (model.Team, bool) {
	if s == nil {
		return model.Team{}, false
	}
	for _, list := range [][]model.Team{s.Teams, s.ETFs} {
		for _, t := range list {
			if t.Name == name {
				return t, true
			}
		}
	}
	if info, ok := FindTeam(name); ok && info.Key != name {
		return s.Find(info.Key)
	}
	return model.Team{}, false
}

// Collector orchestrates data fetching and normalization.
type Collector struct {
	Fetcher          Fetcher
	Cache            *cache.QueryCache
	HistoryStaleTime time.Duration

	now func() time.Time
}

// NewCollector creates a new Collector. Team histories are cached for
// staleTime; a nil cache disables caching.
func NewCollector(fetcher Fetcher, qc *cache.QueryCache, staleTime time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, Cache: qc, HistoryStaleTime: staleTime, now: time.Now}
}

// Collect fetches the board and normalizes teams and ETFs.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	board, err := c.Fetcher.FetchBoard(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch board: %w", err)
	}
	return &Snapshot{
		Board: board,
		Teams: NormalizeTeams(board.Teams),
		ETFs:  NormalizeTeams(board.ETFs),
	}, nil
}

// NormalizeTeams keeps the latest record per team (later rows win ties),
// attaches metadata and sorts by name.
func NormalizeTeams(rows []model.TeamSnapshot) []model.Team {
	latest := make(map[string]model.TeamSnapshot, len(rows))
	for _, r := range rows {
		if prev, ok := latest[r.TeamName]; !ok || !r.Timestamp.Before(prev.Timestamp) {
			latest[r.TeamName] = r
		}
	}

	teams := make([]model.Team, 0, len(latest))
	for i, r := range rows {
		if latest[r.TeamName] != r {
			continue
		}
		delete(latest, r.TeamName)

		id := fmt.Sprintf("%s-%d", r.TeamName, i)
		if !r.Timestamp.IsZero() {
			id = fmt.Sprintf("%s-%d", r.TeamName, r.Timestamp.UnixMilli())
		}
		t := model.Team{
			ID:           id,
			Name:         r.TeamName,
			Abbreviation: Abbreviation(r.TeamName),
			Price:        r.Price,
			Division:     Division(r.TeamName),
			Type:         r.Type,
			Timestamp:    r.Timestamp,
		}
		if t.Type == "" {
			t.Type = model.InstrumentTeam
		}
		value := r.Value
		t.Value = &value
		if r.Volume > 0 {
			volume := r.Volume
			t.Volume = &volume
		}
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams
}

func historyKey(team string) string { return "team-history:" + team }

// TeamHistory returns the team's chart points. A team without history
// gets a single point at fallbackPrice so the chart never renders empty.
func (c *Collector) TeamHistory(ctx context.Context, team string, fallbackPrice float64) ([]model.DataPoint, error) {
	rows, err := cache.Fetch(ctx, c.Cache, historyKey(team), c.HistoryStaleTime,
		func(ctx context.Context) ([]model.TeamSnapshot, error) {
			return c.Fetcher.FetchTeamHistory(ctx, team)
		})
	if errors.Is(err, ErrNotFound) {
		log.Printf("[WARN] No history for %s, charting current price", team)
		rows, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", team, err)
	}
	return HistoryPoints(rows, fallbackPrice, c.now()), nil
}

// InvalidateHistory drops the cached history of teams.
func (c *Collector) InvalidateHistory(ctx context.Context, teams ...string) {
	keys := make([]string, len(teams))
	for i, t := range teams {
		keys[i] = historyKey(t)
	}
	c.Cache.Invalidate(ctx, keys...)
}

// HistoryPoints converts history rows to chart points labelled "15:04".
// Rows without a timestamp keep a placeholder label and no timestamp.
func HistoryPoints(rows []model.TeamSnapshot, fallbackPrice float64, now time.Time) []model.DataPoint {
	if len(rows) == 0 {
		return []model.DataPoint{{
			Time:  now.In(format.Location).Format("15:04"),
			Price: fallbackPrice,
		}}
	}

	sorted := append([]model.TeamSnapshot(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	points := make([]model.DataPoint, len(sorted))
	for i, r := range sorted {
		if r.Timestamp.IsZero() {
			points[i] = model.DataPoint{Time: format.Placeholder, Price: r.Price}
			continue
		}
		points[i] = model.NewDataPoint(r.Timestamp.In(format.Location).Format("15:04"), r.Price, r.Timestamp)
	}
	return points
}

// Portfolio fetches the backend's account snapshot.
func (c *Collector) Portfolio(ctx context.Context) (*model.PortfolioSnapshot, error) {
	snap, err := c.Fetcher.FetchPortfolio(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch portfolio: %w", err)
	}
	return snap, nil
}

// PortfolioHistory fetches the raw account value history.
func (c *Collector) PortfolioHistory(ctx context.Context) ([]model.PortfolioPoint, error) {
	points, err := c.Fetcher.FetchPortfolioHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch portfolio history: %w", err)
	}
	return points, nil
}
