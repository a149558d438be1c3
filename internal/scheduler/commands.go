package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/chart"
	"GridironMarket/internal/model"
	"GridironMarket/internal/notifier"
	"GridironMarket/internal/screener"
)

const helpText = `Available commands:
• /teams [search] - market board
• /chart TEAM [RANGE] - focus a team chart
• /range RANGE - 1MIN, 5MIN, 1H, 1D, 1W or ALL
• /hover N - hover the Nth chart point (negative counts from the end)
• /drag A B - select points A to B
• /leave - pointer leaves the chart
• /clear - clear the selection
• /portfolio - account value and positions
• /trending - biggest movers this week
• /live - games in progress
• /transactions [N] - last N trades (default 10)
• /buy TEAM QTY [PRICE] - buy shares (market price by default)
• /sell TEAM QTY [PRICE] - sell shares`

const (
	trendingCount     = 5
	transactionsCount = 10
)

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var (
		reply string
		err   error
	)
	switch name {
	case "/teams":
		reply, err = s.cmdTeams(strings.Join(args, " "))
	case "/chart":
		reply, err = s.cmdChart(args)
	case "/range":
		reply, err = s.cmdRange(args)
	case "/hover":
		reply, err = s.cmdHover(args)
	case "/drag":
		reply, err = s.cmdDrag(args)
	case "/leave":
		reply, err = s.dispatch(chart.Event{Kind: chart.PointerLeave})
	case "/clear":
		reply, err = s.dispatch(chart.Event{Kind: chart.Clear})
	case "/portfolio":
		reply, err = s.cmdPortfolio()
	case "/trending":
		reply, err = s.cmdTrending()
	case "/live":
		reply, err = s.cmdLive()
	case "/transactions":
		reply, err = s.cmdTransactions(args)
	case "/buy", "/sell":
		reply, err = s.cmdTrade(name, args)
	default:
		return helpText
	}
	if err != nil {
		return "❌ " + err.Error()
	}
	return reply
}

func (s *Scheduler) cmdTeams(search string) (string, error) {
	snap, err := s.Snapshot(s.Ctx)
	if err != nil {
		return "", err
	}
	return notifier.FormatBoard(
		screener.Filter(snap.Teams, search, screener.AllDivisions),
		screener.Filter(snap.ETFs, search, screener.AllDivisions),
	), nil
}

// cmdChart accepts "/chart New York J 1W": a trailing range is optional
// and team names may contain spaces.
func (s *Scheduler) cmdChart(args []string) (string, error) {
	var r calculator.Range
	if n := len(args); n > 0 {
		if parsed, err := calculator.ParseRange(args[n-1]); err == nil {
			r, args = parsed, args[:n-1]
		}
	}
	team := strings.Join(args, " ")
	if team == "" {
		s.mu.Lock()
		team = s.team
		s.mu.Unlock()
	}
	if team == "" {
		return "", errors.New("usage: /chart TEAM [RANGE]")
	}

	snap, err := s.Snapshot(s.Ctx)
	if err != nil {
		return "", err
	}
	t, ok := snap.Find(team)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	s.Focus(t.Name, r)
	return s.renderFocus(s.Ctx, nil)
}

func (s *Scheduler) cmdRange(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: /range RANGE")
	}
	r, err := calculator.ParseRange(args[0])
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.rng = r
	s.mu.Unlock()
	return s.renderFocus(s.Ctx, nil)
}

func (s *Scheduler) cmdHover(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: /hover N")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid point index %q", args[0])
	}
	return s.renderFocus(s.Ctx, func(series []model.DataPoint) ([]chart.Event, error) {
		p, err := pointAt(series, n)
		if err != nil {
			return nil, err
		}
		return []chart.Event{{Kind: chart.PointerMove, Point: p}}, nil
	})
}

func (s *Scheduler) cmdDrag(args []string) (string, error) {
	if len(args) != 2 {
		return "", errors.New("usage: /drag A B")
	}
	a, errA := strconv.Atoi(args[0])
	b, errB := strconv.Atoi(args[1])
	if errA != nil || errB != nil {
		return "", fmt.Errorf("invalid point indexes %q %q", args[0], args[1])
	}
	return s.renderFocus(s.Ctx, func(series []model.DataPoint) ([]chart.Event, error) {
		start, err := pointAt(series, a)
		if err != nil {
			return nil, err
		}
		end, err := pointAt(series, b)
		if err != nil {
			return nil, err
		}
		return []chart.Event{
			{Kind: chart.PointerDown, Point: start},
			{Kind: chart.PointerMove, Point: end},
			{Kind: chart.PointerUp},
		}, nil
	})
}

func (s *Scheduler) dispatch(ev chart.Event) (string, error) {
	return s.renderFocus(s.Ctx, func([]model.DataPoint) ([]chart.Event, error) {
		return []chart.Event{ev}, nil
	})
}

func pointAt(series []model.DataPoint, n int) (*model.DataPoint, error) {
	if n < 0 {
		n += len(series)
	}
	if n < 0 || n >= len(series) {
		return nil, fmt.Errorf("point %d out of range (chart has %d points)", n, len(series))
	}
	p := series[n]
	return &p, nil
}

// renderFocus renders the focused chart. When events is set it receives the
// current series, and the events it returns are dispatched before a final
// render.
func (s *Scheduler) renderFocus(ctx context.Context, events func([]model.DataPoint) ([]chart.Event, error)) (string, error) {
	s.mu.Lock()
	team, r := s.team, s.rng
	s.mu.Unlock()
	if team == "" {
		return "", errors.New("no chart focused, use /chart TEAM")
	}

	in, err := s.ChartInput(ctx, team, r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	view, err := chart.Render(in, s.session)
	if err != nil {
		return "", err
	}
	if events != nil {
		evs, err := events(view.Series)
		if err != nil {
			return "", err
		}
		for _, ev := range evs {
			s.session.Dispatch(ev)
		}
		if view, err = chart.Render(in, s.session); err != nil {
			return "", err
		}
	}

	out := notifier.FormatChart(view)
	if f := s.flash.Current(s.now()); f != chart.FlashNone {
		out += fmt.Sprintf("Tick: %s\n", f)
	}
	return out, nil
}

func (s *Scheduler) cmdPortfolio() (string, error) {
	report, err := s.Portfolio(s.Ctx)
	if err != nil {
		return "", err
	}
	return notifier.FormatPortfolio(report.Holdings, report.Stats, report.Performance), nil
}

func (s *Scheduler) cmdTrending() (string, error) {
	snap, err := s.Snapshot(s.Ctx)
	if err != nil {
		return "", err
	}
	return notifier.FormatTrending(screener.Trending(snap.Teams, trendingCount)), nil
}

func (s *Scheduler) cmdLive() (string, error) {
	games, err := s.LiveGames(s.Ctx)
	if err != nil {
		return "", err
	}
	return notifier.FormatLiveGames(games), nil
}

func (s *Scheduler) cmdTransactions(args []string) (string, error) {
	n := transactionsCount
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return "", errors.New("usage: /transactions [N]")
		}
		n = v
	}
	txns, err := s.Transactions(s.Ctx)
	if err != nil {
		return "", err
	}
	if len(txns) > n {
		txns = txns[:n]
	}
	return notifier.FormatTransactions(txns), nil
}

// cmdTrade parses "TEAM QTY [PRICE]" where TEAM may contain spaces.
func (s *Scheduler) cmdTrade(name string, args []string) (string, error) {
	if s.Ledger == nil {
		return "", ErrNoLedger
	}
	usage := fmt.Errorf("usage: %s TEAM QTY [PRICE]", name)
	if len(args) < 2 {
		return "", usage
	}

	price := 0.0
	if n := len(args); n >= 3 {
		if _, err := strconv.Atoi(args[n-2]); err == nil {
			p, err := strconv.ParseFloat(args[n-1], 64)
			if err != nil {
				return "", usage
			}
			price, args = p, args[:n-1]
		}
	}
	qty, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		return "", usage
	}
	team := strings.Join(args[:len(args)-1], " ")

	snap, err := s.Snapshot(s.Ctx)
	if err != nil {
		return "", err
	}
	t, ok := snap.Find(team)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	if price == 0 {
		price = t.Price
	}

	var txn model.Transaction
	if name == "/buy" {
		txn, err = s.Ledger.Buy(t.Name, qty, price)
	} else {
		txn, err = s.Ledger.Sell(t.Name, qty, price)
	}
	if err != nil {
		return "", err
	}
	return notifier.FormatTrade(txn, s.Ledger.Balance()), nil
}
