package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"GridironMarket/internal/model"
)

// ErrNotFound is returned when the backend has no record of an instrument.
var ErrNotFound = errors.New("not found")

// APIFetcher implements Fetcher against the market backend's REST API.
type APIFetcher struct {
	BaseURL     string
	Token       string // bearer token for the /trades endpoints
	HistoryPath string
	Client      *http.Client
}

// NewAPIFetcher creates a fetcher with optional proxy support.
func NewAPIFetcher(baseURL, token, historyPath, proxyURL string) *APIFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &APIFetcher{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Token:       token,
		HistoryPath: historyPath,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *APIFetcher) Name() string { return "api" }

// number accepts JSON numbers as well as numeric strings ("123.45").
// Anything unparseable or non-finite is treated as missing.
type number struct {
	v  float64
	ok bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.v, n.ok = v, true
	return nil
}

// stamp accepts ISO-8601 strings with or without zone (UTC assumed) and
// epoch numbers in seconds or milliseconds.
type stamp struct {
	t time.Time
}

var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (s *stamp) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		return nil
	}
	if !strings.HasPrefix(raw, `"`) {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		if n > 1e11 {
			s.t = time.UnixMilli(int64(n)).UTC()
		} else {
			s.t = time.Unix(int64(n), 0).UTC()
		}
		return nil
	}
	s.t, _ = parseStamp(strings.Trim(raw, `"`))
	return nil
}

func parseStamp(v string) (time.Time, bool) {
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type wireSnapshot struct {
	TeamName  string `json:"team_name"`
	Value     number `json:"value"`
	Price     number `json:"price"`
	Volume    number `json:"volume"`
	Timestamp stamp  `json:"timestamp"`
	Type      string `json:"type"`
}

func (w wireSnapshot) snapshot() model.TeamSnapshot {
	s := model.TeamSnapshot{
		TeamName:  w.TeamName,
		Value:     w.Value.v,
		Price:     w.Value.v,
		Volume:    w.Volume.v,
		Timestamp: w.Timestamp.t,
		Type:      model.InstrumentTeam,
	}
	if w.Price.ok {
		s.Price = w.Price.v
	}
	if w.Type == string(model.InstrumentETF) || IsDivision(w.TeamName) {
		s.Type = model.InstrumentETF
	}
	return s
}

func snapshots(in []wireSnapshot) []model.TeamSnapshot {
	out := make([]model.TeamSnapshot, 0, len(in))
	for _, w := range in {
		if w.TeamName == "" {
			continue
		}
		out = append(out, w.snapshot())
	}
	return out
}

// FetchBoard reads /market/all-teams. Both the grouped
// {"teams":[...],"etfs":[...]} shape and a flat list are accepted.
func (f *APIFetcher) FetchBoard(ctx context.Context) (*model.MarketBoard, error) {
	body, err := f.get(ctx, "/market/all-teams", false)
	if err != nil {
		return nil, err
	}

	board := &model.MarketBoard{FetchedAt: time.Now()}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var flat []wireSnapshot
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return nil, fmt.Errorf("api decode board: %w", err)
		}
		for _, s := range snapshots(flat) {
			if s.Type == model.InstrumentETF {
				board.ETFs = append(board.ETFs, s)
			} else {
				board.Teams = append(board.Teams, s)
			}
		}
		return board, nil
	}

	var grouped struct {
		Teams []wireSnapshot `json:"teams"`
		ETFs  []wireSnapshot `json:"etfs"`
	}
	if err := json.Unmarshal(body, &grouped); err != nil {
		return nil, fmt.Errorf("api decode board: %w", err)
	}
	board.Teams = snapshots(grouped.Teams)
	board.ETFs = snapshots(grouped.ETFs)
	for i := range board.ETFs {
		board.ETFs[i].Type = model.InstrumentETF
	}
	return board, nil
}

// FetchTeamHistory reads /market/team/{name}, oldest first.
func (f *APIFetcher) FetchTeamHistory(ctx context.Context, team string) ([]model.TeamSnapshot, error) {
	body, err := f.get(ctx, "/market/team/"+url.PathEscape(team), false)
	if err != nil {
		return nil, err
	}
	var rows []wireSnapshot
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("api decode history %s: %w", team, err)
	}
	out := snapshots(rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// FetchPortfolio reads /trades/portfolio with the configured token.
func (f *APIFetcher) FetchPortfolio(ctx context.Context) (*model.PortfolioSnapshot, error) {
	body, err := f.get(ctx, "/trades/portfolio", true)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Balance   number `json:"balance"`
		Positions []struct {
			TeamName        string `json:"team_name"`
			Quantity        int    `json:"quantity"`
			AvgPrice        number `json:"avg_price"`
			LastTransaction stamp  `json:"last_transaction"`
		} `json:"positions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api decode portfolio: %w", err)
	}
	snap := &model.PortfolioSnapshot{Balance: resp.Balance.v}
	for _, p := range resp.Positions {
		snap.Positions = append(snap.Positions, model.Position{
			TeamName:        p.TeamName,
			Quantity:        p.Quantity,
			AvgPrice:        p.AvgPrice.v,
			LastTransaction: p.LastTransaction.t,
		})
	}
	return snap, nil
}

type wirePortfolioPoint struct {
	Date      string `json:"date"`
	Value     number `json:"value"`
	Balance   number `json:"balance"`
	Timestamp stamp  `json:"timestamp"`
}

// FetchPortfolioHistory reads the account value history. The response may
// be a bare list or wrapped as {"history":[...]}.
func (f *APIFetcher) FetchPortfolioHistory(ctx context.Context) ([]model.PortfolioPoint, error) {
	if f.HistoryPath == "" {
		return nil, nil
	}
	body, err := f.get(ctx, f.HistoryPath, true)
	if err != nil {
		return nil, err
	}

	var rows []wirePortfolioPoint
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &rows)
	} else {
		var wrapped struct {
			History []wirePortfolioPoint `json:"history"`
		}
		err = json.Unmarshal(body, &wrapped)
		rows = wrapped.History
	}
	if err != nil {
		return nil, fmt.Errorf("api decode portfolio history: %w", err)
	}

	out := make([]model.PortfolioPoint, 0, len(rows))
	for _, r := range rows {
		p := model.PortfolioPoint{Date: r.Date, Value: r.Value.v}
		if !r.Value.ok {
			p.Value = r.Balance.v
		}
		if !r.Timestamp.t.IsZero() {
			p.Timestamp = model.Millis(r.Timestamp.t.UnixMilli())
		}
		out = append(out, p)
	}
	return out, nil
}

type wireGameSide struct {
	Name          string `json:"name"`
	Abbreviation  string `json:"abbreviation"`
	Score         number `json:"score"`
	Price         number `json:"price"`
	ChangePercent number `json:"changePercent"`
}

func (w wireGameSide) side() model.GameSide {
	return model.GameSide{
		TeamName:      w.Name,
		Abbreviation:  w.Abbreviation,
		Score:         int(math.Round(w.Score.v)),
		Price:         w.Price.v,
		ChangePercent: w.ChangePercent.v,
	}
}

type wireLiveGame struct {
	ID            string       `json:"id"`
	HomeTeam      wireGameSide `json:"homeTeam"`
	AwayTeam      wireGameSide `json:"awayTeam"`
	Quarter       string       `json:"quarter"`
	TimeRemaining string       `json:"timeRemaining"`
}

// FetchLiveGames reads /live-games, a bare list or {"games":[...]}. A
// backend without the feed has no live games.
func (f *APIFetcher) FetchLiveGames(ctx context.Context) ([]model.LiveGame, error) {
	body, err := f.get(ctx, "/live-games", false)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []wireLiveGame
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &rows)
	} else {
		var wrapped struct {
			Games []wireLiveGame `json:"games"`
		}
		err = json.Unmarshal(body, &wrapped)
		rows = wrapped.Games
	}
	if err != nil {
		return nil, fmt.Errorf("api decode live games: %w", err)
	}

	out := make([]model.LiveGame, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.LiveGame{
			ID:      r.ID,
			Home:    r.HomeTeam.side(),
			Away:    r.AwayTeam.side(),
			Quarter: r.Quarter,
			Clock:   r.TimeRemaining,
			Final:   strings.EqualFold(r.Quarter, "final"),
		})
	}
	return out, nil
}

func (f *APIFetcher) get(ctx context.Context, path string, auth bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if auth && f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("api %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api %s: status %d, body: %s", path, resp.StatusCode, string(body))
	}
	return body, nil
}
