package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GridironMarket/internal/chart"
	"GridironMarket/internal/format"
	"GridironMarket/internal/model"
	"GridironMarket/internal/portfolio"
)

func TestConsoleNotifier_StripsMarkup(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)
	require.NoError(t, n.Send(context.Background(), "<b>Buffalo</b> up"))
	assert.Equal(t, "Buffalo up\n", buf.String())
}

func TestReadCommands(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)
	var seen []string
	handler := func(cmd string) string {
		seen = append(seen, cmd)
		if cmd == "/quiet" {
			return ""
		}
		return "ok " + cmd
	}

	err := ReadCommands(context.Background(), strings.NewReader("/teams\n\n  /quiet \n/chart Buffalo\n"), n, handler)
	require.NoError(t, err)
	assert.Equal(t, []string{"/teams", "/quiet", "/chart Buffalo"}, seen)
	assert.Equal(t, "ok /teams\nok /chart Buffalo\n", buf.String())
}

func TestReadCommands_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pr, pw := io.Pipe()
	defer pw.Close()
	err := ReadCommands(ctx, pr, NewConsoleNotifier(io.Discard), func(string) string { return "" })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	require.NoError(t, tn.Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "hello", got["text"])
}

func TestTelegramNotifier_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad chat", http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	err := tn.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

type flakyNotifier struct {
	failures int32
	calls    int32
}

func (f *flakyNotifier) Send(context.Context, string) error {
	if atomic.AddInt32(&f.calls, 1) <= f.failures {
		return errors.New("timeout")
	}
	return nil
}

func TestSendWithRetry(t *testing.T) {
	f := &flakyNotifier{failures: 2}
	require.NoError(t, sendWithRetry(context.Background(), f, "x", 3, time.Millisecond))
	assert.Equal(t, int32(3), f.calls)

	f = &flakyNotifier{failures: 10}
	err := Retrying{Notifier: f, MaxRetries: 1, Backoff: time.Millisecond}.Send(context.Background(), "x")
	assert.ErrorContains(t, err, "all 2 retries exhausted")
	assert.Equal(t, int32(2), f.calls)
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var polls int32
	replies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if atomic.AddInt32(&polls, 1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /teams "}}]}`))
				return
			}
			assert.Equal(t, "8", r.URL.Query().Get("offset"))
			<-r.Context().Done()
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(cmd string) string { return "reply to " + cmd })
		close(done)
	}()

	select {
	case r := <-replies:
		assert.Equal(t, "reply to /teams", r)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	<-done
}

func ptr(v float64) *float64 { return &v }

func TestFormatBoard(t *testing.T) {
	teams := []model.Team{{Name: "Buffalo", Abbreviation: "BUF", Price: 1234.5, WeekChangePercent: ptr(3.2)}}
	etfs := []model.Team{{Name: "AFC East", Abbreviation: "AFCE", Price: 100}}
	out := FormatBoard(teams, etfs)
	assert.Contains(t, out, "BUF")
	assert.Contains(t, out, "$1,234.50")
	assert.Contains(t, out, "+3.20%")
	assert.Contains(t, out, "Division ETFs")
	assert.Contains(t, out, "AFCE")

	assert.Contains(t, FormatBoard(nil, nil), "No market data")
}

func TestFormatChart(t *testing.T) {
	v := chart.View{
		TeamName: "Buffalo", RangeLabel: "1h",
		DisplayPrice: "$110.00", DisplayTime: "18:01", Hovering: true,
		Series:   []model.DataPoint{{Price: 100}, {Price: 110}},
		Ticks:    []string{"18:00", "18:01"},
		Domain:   model.Domain{Min: 90, Max: 120},
		WeekText: "+1.00%", MonthText: "—",
		Selection:  &model.Selection{Start: model.DataPoint{Price: 100}, End: model.DataPoint{Price: 110}},
		ChangeText: "+$10.00 (+10.00%)",
	}
	out := FormatChart(v)
	assert.Contains(t, out, "Hover: $110.00 @ 18:01")
	assert.Contains(t, out, "Axis: 90 - 120")
	assert.Contains(t, out, "Points: 2 (18:00 → 18:01)")
	assert.Contains(t, out, "Change: +$10.00 (+10.00%)")
}

func TestFormatPortfolio(t *testing.T) {
	holdings := []model.Holding{{
		Position:     model.Position{TeamName: "Buffalo", Quantity: 2, AvgPrice: 100},
		Abbreviation: "BUF", CurrentPrice: 110, ProfitLoss: 20, ProfitLossPercent: 10,
	}}
	stats := model.PortfolioStats{Cash: 800, TotalValue: 220, TotalCost: 200, ProfitLoss: 20, ProfitLossPercent: 10, HasProfitLossPercent: true}
	out := FormatPortfolio(holdings, stats, portfolio.Performance{})
	assert.Contains(t, out, "Account value: $1,020.00")
	assert.Contains(t, out, "P&L: +$20.00 (+10.00%)")
	assert.Contains(t, out, "BUF")
	assert.NotContains(t, out, "Today:")

	assert.Contains(t, FormatPortfolio(nil, model.PortfolioStats{}, portfolio.Performance{}), "No open positions")
}

func TestFormatTrendingAndTrade(t *testing.T) {
	out := FormatTrending([]model.Team{{Name: "Dallas", Price: 80, WeekChangePercent: ptr(-12)}})
	assert.Contains(t, out, "1. Dallas $80.00 -12.00% (Sliding)")

	txn := model.Transaction{TeamName: "Buffalo", Action: model.ActionSell, Quantity: 3, Price: 120}
	assert.Equal(t, "✅ Sold 3 Buffalo @ $120.00\nCash: $500.00", FormatTrade(txn, 500))
}

func TestFormatLiveGames(t *testing.T) {
	games := []model.LiveGame{
		{
			ID:      "1",
			Home:    model.GameSide{TeamName: "Kansas City", Abbreviation: "KC", Score: 24, Price: 145.5, ChangePercent: 2.3},
			Away:    model.GameSide{TeamName: "Baltimore", Abbreviation: "BAL", Score: 21, Price: 132.4, ChangePercent: -1.2},
			Quarter: "Q4", Clock: "5:23",
		},
		{
			ID:      "2",
			Home:    model.GameSide{Abbreviation: "SF", Score: 17},
			Away:    model.GameSide{Abbreviation: "BUF", Score: 14},
			Quarter: "Final", Clock: "0:00", Final: true,
		},
	}
	out := FormatLiveGames(games)
	assert.Contains(t, out, "BAL 21 @ KC 24 | Q4 5:23")
	assert.Contains(t, out, "$145.50  +2.30%")
	assert.Contains(t, out, "$132.40  -1.20%")
	assert.Contains(t, out, "BUF 14 @ SF 17 | Final\n")

	assert.Contains(t, FormatLiveGames(nil), "No games in progress")
}

func TestFormatTransactions(t *testing.T) {
	prev := format.Location
	format.Location = time.UTC
	t.Cleanup(func() { format.Location = prev })

	txns := []model.Transaction{
		{TeamName: "Buffalo", Action: model.ActionSell, Quantity: 2, Price: 120, Timestamp: time.Date(2025, 11, 9, 18, 5, 0, 0, time.UTC)},
		{TeamName: "Buffalo", Action: model.ActionBuy, Quantity: 5, Price: 100, Timestamp: time.Date(2025, 11, 9, 17, 0, 0, 0, time.UTC)},
	}
	out := FormatTransactions(txns)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "Nov 9 18:05 SELL BUF"), lines[2])
	assert.Contains(t, lines[2], "@ $120.00 = $240.00")
	assert.True(t, strings.HasPrefix(lines[3], "Nov 9 17:00 BUY  BUF"), lines[3])
	assert.Contains(t, lines[3], "@ $100.00 = $500.00")

	assert.Contains(t, FormatTransactions(nil), "No trades yet")
}
