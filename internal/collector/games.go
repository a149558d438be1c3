package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/model"
)

const (
	quarterLength = 15 * time.Minute
	gameLength    = 4 * quarterLength

	// gameClockStep is the game time that passes per simulated market tick.
	gameClockStep = 15 * time.Second

	defaultLiveGames = 4
)

// GameClock names the quarter and the time left in it after elapsed game
// time, e.g. ("Q3", "8:45"). A finished game reads ("Final", "0:00").
func GameClock(elapsed time.Duration) (string, string) {
	if elapsed >= gameLength {
		return "Final", "0:00"
	}
	if elapsed < 0 {
		elapsed = 0
	}
	left := quarterLength - elapsed%quarterLength
	return fmt.Sprintf("Q%d", int(elapsed/quarterLength)+1),
		fmt.Sprintf("%d:%02d", int(left/time.Minute), int(left%time.Minute/time.Second))
}

type mockGame struct {
	id                       string
	home, away               string
	homeScore, awayScore     int
	homeKickoff, awayKickoff float64
}

// gameSlate is a set of games kicked off together.
type gameSlate struct {
	number  int
	elapsed time.Duration
	games   []mockGame
}

// advanceGames runs the game clock one step. Once every game of the slate
// is final the next tick kicks off a new slate.
func (m *MockFetcher) advanceGames(prices map[string]float64) {
	if m.LiveGames <= 0 {
		return
	}
	if m.slate == nil || m.slate.elapsed >= gameLength {
		m.kickoff(prices)
		return
	}
	m.slate.elapsed += gameClockStep
	for i := range m.slate.games {
		g := &m.slate.games[i]
		g.homeScore += m.drive()
		g.awayScore += m.drive()
	}
}

func (m *MockFetcher) drive() int {
	switch r := m.gameRng.Float64(); {
	case r < 0.012:
		return 7
	case r < 0.022:
		return 3
	}
	return 0
}

func (m *MockFetcher) kickoff(prices map[string]float64) {
	number := 1
	if m.slate != nil {
		number = m.slate.number + 1
	}
	keys := make([]string, len(teamTable))
	for i, t := range teamTable {
		keys[i] = t.Key
	}
	m.gameRng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	s := &gameSlate{number: number, games: make([]mockGame, min(m.LiveGames, len(keys)/2))}
	for i := range s.games {
		away, home := keys[2*i], keys[2*i+1]
		s.games[i] = mockGame{
			id:          fmt.Sprintf("%d-%s-%s", number, Abbreviation(away), Abbreviation(home)),
			home:        home,
			away:        away,
			homeKickoff: prices[home],
			awayKickoff: prices[away],
		}
	}
	m.slate = s
}

// FetchLiveGames returns the current slate priced at the latest tick.
// Nothing is live before the first tick.
func (m *MockFetcher) FetchLiveGames(_ context.Context) ([]model.LiveGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slate == nil {
		return nil, nil
	}

	quarter, clock := GameClock(m.slate.elapsed)
	out := make([]model.LiveGame, 0, len(m.slate.games))
	for _, g := range m.slate.games {
		out = append(out, model.LiveGame{
			ID:      g.id,
			Home:    m.side(g.home, g.homeScore, g.homeKickoff),
			Away:    m.side(g.away, g.awayScore, g.awayKickoff),
			Quarter: quarter,
			Clock:   clock,
			Final:   m.slate.elapsed >= gameLength,
		})
	}
	return out, nil
}

func (m *MockFetcher) side(team string, score int, kickoff float64) model.GameSide {
	s := model.GameSide{TeamName: team, Abbreviation: Abbreviation(team), Score: score, Price: kickoff}
	if h := m.history[team]; len(h) > 0 {
		s.Price = h[len(h)-1].Price
	}
	if pct, ok := calculator.PercentChange(s.Price, kickoff); ok {
		s.ChangePercent = math.Round(pct*100) / 100
	}
	return s
}

// LiveGames fetches the games in progress with side names resolved to
// board keys.
func (c *Collector) LiveGames(ctx context.Context) ([]model.LiveGame, error) {
	games, err := c.Fetcher.FetchLiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch live games: %w", err)
	}
	for i := range games {
		normalizeSide(&games[i].Home)
		normalizeSide(&games[i].Away)
	}
	return games, nil
}

func normalizeSide(s *model.GameSide) {
	if info, ok := FindTeam(s.TeamName); ok {
		s.TeamName = info.Key
	}
	if s.Abbreviation == "" {
		s.Abbreviation = Abbreviation(s.TeamName)
	}
}
