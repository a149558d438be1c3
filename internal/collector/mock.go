package collector

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"GridironMarket/internal/model"
)

// NextPrice advances a mean-reverting, bounded random walk by one step.
// shock is a uniform draw in [-1, 1]. The result stays within 25%..175% of
// anchor and is rounded to cents.
func NextPrice(curr, anchor, shock float64) float64 {
	if anchor <= 0 {
		anchor = curr
		if anchor <= 0 {
			anchor = 1
		}
	}
	dev := (curr - anchor) / anchor
	vol := math.Max(0.01, 0.035*(1-math.Abs(dev)))
	next := curr * (1 - 0.08*dev + shock*vol)
	next = math.Max(0.25*anchor, math.Min(next, 1.75*anchor))
	return math.Round(next*100) / 100
}

// MockFetcher simulates the market backend for development and testing:
// every board fetch advances each team one random-walk step, prices
// the division ETFs as the average of their members and runs the clock
// of a slate of live games.
type MockFetcher struct {
	Now          func() time.Time
	HistoryLimit int

	// LiveGames is how many games each simulated slate plays; zero
	// disables the live feed.
	LiveGames int

	// Portfolio, when set, is returned by FetchPortfolio and valued on
	// every tick to build the portfolio history.
	Portfolio *model.PortfolioSnapshot

	mu        sync.Mutex
	rng       *rand.Rand
	anchors   map[string]float64
	history   map[string][]model.TeamSnapshot
	portfolio []model.PortfolioPoint
	gameRng   *rand.Rand
	slate     *gameSlate
}

// NewMockFetcher seeds anchors for all 32 teams. The same seed and clock
// produce the same market.
func NewMockFetcher(seed int64) *MockFetcher {
	m := &MockFetcher{
		Now:          time.Now,
		HistoryLimit: 5000,
		LiveGames:    defaultLiveGames,
		rng:          rand.New(rand.NewSource(seed)),
		gameRng:      rand.New(rand.NewSource(seed + 1)),
		anchors:      make(map[string]float64),
		history:      make(map[string][]model.TeamSnapshot),
	}
	for _, t := range teamTable {
		m.anchors[t.Key] = math.Round((60+m.rng.Float64()*90)*100) / 100
	}
	return m
}

func (m *MockFetcher) Name() string { return "mock" }

// Backfill simulates n ticks spaced step apart, ending now.
func (m *MockFetcher) Backfill(n int, step time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.Now()
	for i := n - 1; i >= 0; i-- {
		m.tick(end.Add(-time.Duration(i) * step))
	}
}

// Tick advances the market one step at now.
func (m *MockFetcher) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick(now)
}

func (m *MockFetcher) tick(now time.Time) {
	prices := make(map[string]float64, len(teamTable))
	for _, t := range teamTable {
		anchor := m.anchors[t.Key]
		curr := anchor
		if h := m.history[t.Key]; len(h) > 0 {
			curr = h[len(h)-1].Value
		}
		next := NextPrice(curr, anchor, m.rng.Float64()*2-1)
		prices[t.Key] = next
		m.append(model.TeamSnapshot{
			TeamName:  t.Key,
			Value:     next,
			Price:     next,
			Volume:    float64(100 + m.rng.Intn(9900)),
			Timestamp: now,
			Type:      model.InstrumentTeam,
		})
	}

	m.advanceGames(prices)

	for _, d := range Divisions {
		members := DivisionMembers(d)
		var sum float64
		for _, k := range members {
			sum += prices[k]
		}
		avg := math.Round(sum/float64(len(members))*100) / 100
		m.append(model.TeamSnapshot{TeamName: d, Value: avg, Price: avg, Timestamp: now, Type: model.InstrumentETF})
	}

	if m.Portfolio != nil {
		total := m.Portfolio.Balance
		for _, p := range m.Portfolio.Positions {
			total += prices[p.TeamName] * float64(p.Quantity)
		}
		m.portfolio = append(m.portfolio, model.PortfolioPoint{
			Date:      now.Format("Jan 2"),
			Value:     math.Round(total*100) / 100,
			Timestamp: model.Millis(now.UnixMilli()),
		})
		if over := len(m.portfolio) - m.HistoryLimit; m.HistoryLimit > 0 && over > 0 {
			m.portfolio = m.portfolio[over:]
		}
	}
}

func (m *MockFetcher) append(s model.TeamSnapshot) {
	h := append(m.history[s.TeamName], s)
	if over := len(h) - m.HistoryLimit; m.HistoryLimit > 0 && over > 0 {
		h = h[over:]
	}
	m.history[s.TeamName] = h
}

// FetchBoard ticks the market and returns the latest snapshot per instrument.
func (m *MockFetcher) FetchBoard(_ context.Context) (*model.MarketBoard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	m.tick(now)

	board := &model.MarketBoard{FetchedAt: now}
	for _, h := range m.history {
		latest := h[len(h)-1]
		if latest.Type == model.InstrumentETF {
			board.ETFs = append(board.ETFs, latest)
		} else {
			board.Teams = append(board.Teams, latest)
		}
	}
	sort.Slice(board.Teams, func(i, j int) bool { return board.Teams[i].TeamName < board.Teams[j].TeamName })
	sort.Slice(board.ETFs, func(i, j int) bool { return board.ETFs[i].TeamName < board.ETFs[j].TeamName })
	return board, nil
}

func (m *MockFetcher) FetchTeamHistory(_ context.Context, team string) ([]model.TeamSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.history[team]
	if !ok {
		if _, known := m.anchors[team]; !known && !IsDivision(team) {
			return nil, fmt.Errorf("mock %s: %w", team, ErrNotFound)
		}
		return nil, nil
	}
	return append([]model.TeamSnapshot(nil), h...), nil
}

func (m *MockFetcher) FetchPortfolio(_ context.Context) (*model.PortfolioSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Portfolio == nil {
		return &model.PortfolioSnapshot{}, nil
	}
	snap := *m.Portfolio
	snap.Positions = append([]model.Position(nil), m.Portfolio.Positions...)
	return &snap, nil
}

func (m *MockFetcher) FetchPortfolioHistory(_ context.Context) ([]model.PortfolioPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PortfolioPoint(nil), m.portfolio...), nil
}
