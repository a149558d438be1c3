package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/chart"
	"GridironMarket/internal/collector"
	"GridironMarket/internal/model"
	"GridironMarket/internal/notifier"
	"GridironMarket/internal/portfolio"
	"GridironMarket/internal/recorder"
)

var (
	// ErrUnknownTeam is returned for a team or ETF missing from the board.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrNoLedger is returned for trading operations when positions come
	// from the backend.
	ErrNoLedger = errors.New("trading needs the local ledger (portfolio.source: ledger)")
)

// historyLookback is how far back the recorder is read for week changes.
const historyLookback = calculator.WeekWindow + 24*time.Hour

// Scheduler polls the market and owns the terminal's chart focus.
type Scheduler struct {
	Cron          *cron.Cron
	Collector     *collector.Collector
	Ledger        *portfolio.Manager // nil when positions come from the backend
	Notifier      notifier.Notifier
	Recorder      recorder.Recorder
	DomainOptions calculator.DomainOptions
	Ctx           context.Context

	mu        sync.Mutex
	snapshot  *collector.Snapshot
	team      string
	rng       calculator.Range
	session   *chart.Session
	flash     chart.FlashTracker
	degraded  bool
	portfolio *chart.Session

	now func() time.Time
}

// NewScheduler creates a new Scheduler focused on the default range.
func NewScheduler(ctx context.Context, col *collector.Collector, ledger *portfolio.Manager, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:          cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Collector:     col,
		Ledger:        ledger,
		Notifier:      n,
		Recorder:      rec,
		DomainOptions: calculator.DefaultDomainOptions(),
		Ctx:           ctx,
		rng:           calculator.Range1D,
		session:       chart.NewSession(),
		portfolio:     chart.NewSession(),
		now:           time.Now,
	}
}

// Focus sets the team and range the chart commands act on.
func (s *Scheduler) Focus(team string, r calculator.Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if team != s.team {
		s.session = chart.NewSession()
		s.flash = chart.FlashTracker{}
	}
	s.team = team
	if r != "" {
		s.rng = r
	}
}

// RegisterAll registers the board and portfolio polling tasks.
func (s *Scheduler) RegisterAll(teamsCron, portfolioCron string) error {
	if _, err := s.Cron.AddFunc(teamsCron, s.RefreshBoard); err != nil {
		return fmt.Errorf("register board task: %w", err)
	}
	if _, err := s.Cron.AddFunc(portfolioCron, s.RefreshPortfolio); err != nil {
		return fmt.Errorf("register portfolio task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RefreshBoard fetches a fresh board snapshot and records it.
func (s *Scheduler) RefreshBoard() {
	if _, err := s.refreshBoard(s.Ctx); err != nil {
		log.Printf("[ERROR] refresh board: %v", err)
		s.setDegraded(true, fmt.Sprintf("❌ Market refresh failed: %v", err))
		return
	}
	s.setDegraded(false, "✅ Market data restored")
}

func (s *Scheduler) refreshBoard(ctx context.Context) (*collector.Snapshot, error) {
	snap, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.TeamSnapshot, 0, len(snap.Board.Teams)+len(snap.Board.ETFs))
	rows = append(rows, snap.Board.Teams...)
	rows = append(rows, snap.Board.ETFs...)
	if err := s.Recorder.RecordSnapshots(ctx, rows); err != nil {
		log.Printf("[WARN] record snapshots: %v", err)
	}
	s.attachWeekChange(ctx, snap)

	s.mu.Lock()
	s.snapshot = snap
	focus := s.team
	if t, ok := snap.Find(focus); ok {
		s.flash.Observe(t.Price, s.now())
	}
	s.mu.Unlock()

	if focus != "" {
		s.Collector.InvalidateHistory(ctx, focus)
	}
	return snap, nil
}

// attachWeekChange fills each instrument's week change from recorded history.
func (s *Scheduler) attachWeekChange(ctx context.Context, snap *collector.Snapshot) {
	now := s.now()
	since := now.Add(-historyLookback)
	for _, list := range [][]model.Team{snap.Teams, snap.ETFs} {
		for i := range list {
			rows, err := s.Recorder.TeamHistory(ctx, list[i].Name, since)
			if err != nil {
				log.Printf("[WARN] read history %s: %v", list[i].Name, err)
				continue
			}
			if len(rows) == 0 {
				continue
			}
			points := collector.HistoryPoints(rows, list[i].Price, now)
			if v, ok := calculator.TrailingChange(points, calculator.WeekWindow); ok {
				list[i].WeekChangePercent = &v
			}
		}
	}
}

func (s *Scheduler) setDegraded(failed bool, msg string) {
	s.mu.Lock()
	changed := s.degraded != failed
	s.degraded = failed
	s.mu.Unlock()
	if changed {
		s.trySend(msg)
	}
}

// Snapshot returns the latest board, fetching one if none is held yet.
func (s *Scheduler) Snapshot(ctx context.Context) (*collector.Snapshot, error) {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	if snap != nil {
		return snap, nil
	}
	return s.refreshBoard(ctx)
}

// ChartInput resolves team on the board and loads its history.
func (s *Scheduler) ChartInput(ctx context.Context, team string, r calculator.Range) (chart.Input, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return chart.Input{}, err
	}
	t, ok := snap.Find(team)
	if !ok {
		return chart.Input{}, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	points, err := s.Collector.TeamHistory(ctx, t.Name, t.Price)
	if err != nil {
		return chart.Input{}, err
	}
	price := t.Price
	return chart.Input{
		TeamName:      t.Name,
		Points:        points,
		Range:         r,
		Price:         &price,
		DomainOptions: s.DomainOptions,
	}, nil
}

// LiveGames returns the games in progress. A side the feed sent without a
// price is priced from the board.
func (s *Scheduler) LiveGames(ctx context.Context) ([]model.LiveGame, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	games, err := s.Collector.LiveGames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range games {
		for _, side := range []*model.GameSide{&games[i].Home, &games[i].Away} {
			if side.Price > 0 {
				continue
			}
			if t, ok := snap.Find(side.TeamName); ok {
				side.Price = t.Price
			}
		}
	}
	return games, nil
}

// Transactions returns the local ledger's trades, newest first.
func (s *Scheduler) Transactions(_ context.Context) ([]model.Transaction, error) {
	if s.Ledger == nil {
		return nil, ErrNoLedger
	}
	return s.Ledger.Transactions(), nil
}

// PortfolioReport is the valued account and its performance history.
type PortfolioReport struct {
	Holdings     []model.Holding       `json:"holdings"`
	Stats        model.PortfolioStats  `json:"stats"`
	AccountValue float64               `json:"account_value"`
	Performance  portfolio.Performance `json:"performance"`
	Chart        chart.View            `json:"chart"`
}

// Portfolio values the account at the latest board prices.
func (s *Scheduler) Portfolio(ctx context.Context) (*PortfolioReport, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var positions model.PortfolioSnapshot
	if s.Ledger != nil {
		positions = s.Ledger.Snapshot()
	} else {
		p, err := s.Collector.Portfolio(ctx)
		if err != nil {
			return nil, err
		}
		positions = *p
	}

	prices := make(map[string]float64, len(snap.Teams)+len(snap.ETFs))
	for _, list := range [][]model.Team{snap.Teams, snap.ETFs} {
		for _, t := range list {
			prices[t.Name] = t.Price
		}
	}
	holdings, stats := portfolio.Value(positions, prices)
	account := portfolio.AccountValue(stats)

	now := s.now()
	history := append(s.portfolioHistory(ctx), model.PortfolioPoint{
		Value:     account,
		Timestamp: model.Millis(now.UnixMilli()),
	})
	perf := portfolio.Analyze(history, now)
	stats = portfolio.WithDayChange(stats, perf)

	s.mu.Lock()
	view, err := chart.Render(chart.Input{
		TeamName:           "Portfolio",
		Points:             perf.Points,
		Range:              portfolio.DefaultRange,
		Price:              &account,
		WeekChangePercent:  perf.WeekChange,
		MonthChangePercent: perf.MonthChange,
		PriceDomain:        perf.Domain,
		DomainOptions:      s.DomainOptions,
	}, s.portfolio)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return &PortfolioReport{
		Holdings:     holdings,
		Stats:        stats,
		AccountValue: account,
		Performance:  perf,
		Chart:        view,
	}, nil
}

// portfolioHistory prefers the backend's history for a backend account and
// falls back to locally recorded values.
func (s *Scheduler) portfolioHistory(ctx context.Context) []model.PortfolioPoint {
	if s.Ledger == nil {
		history, err := s.Collector.PortfolioHistory(ctx)
		if err != nil {
			log.Printf("[WARN] portfolio history: %v", err)
		}
		if len(history) > 0 {
			return history
		}
	}
	history, err := s.Recorder.PortfolioHistory(ctx, time.Time{})
	if err != nil {
		log.Printf("[WARN] recorded portfolio history: %v", err)
	}
	return history
}

// RefreshPortfolio values the account and records the value.
func (s *Scheduler) RefreshPortfolio() {
	report, err := s.Portfolio(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] refresh portfolio: %v", err)
		return
	}
	if err := s.Recorder.RecordPortfolioValue(s.Ctx, report.AccountValue, s.now()); err != nil {
		log.Printf("[WARN] record portfolio value: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
