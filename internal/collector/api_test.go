package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GridironMarket/internal/model"
)

func newTestAPI(t *testing.T, routes map[string]string) *APIFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/trades/portfolio" && r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Instrument not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewAPIFetcher(srv.URL+"/", "secret", "/portfolio/history", "")
}

func TestAPIFetcher_FetchBoard(t *testing.T) {
	f := newTestAPI(t, map[string]string{
		"/market/all-teams": `{
			"teams": [{"team_name":"Buffalo","value":"123.45","timestamp":"2025-11-09T18:00:05.123456","type":"Team"}],
			"etfs":  [{"team_name":"AFC East","value":"101.10","timestamp":"2025-11-09T18:00:05","type":"ETF"}]
		}`,
	})

	board, err := f.FetchBoard(context.Background())
	require.NoError(t, err)
	require.Len(t, board.Teams, 1)
	require.Len(t, board.ETFs, 1)

	bills := board.Teams[0]
	assert.Equal(t, "Buffalo", bills.TeamName)
	assert.Equal(t, 123.45, bills.Value)
	assert.Equal(t, 123.45, bills.Price)
	assert.Equal(t, model.InstrumentTeam, bills.Type)
	assert.Equal(t, time.Date(2025, 11, 9, 18, 0, 5, 123456000, time.UTC), bills.Timestamp)
	assert.Equal(t, model.InstrumentETF, board.ETFs[0].Type)
}

func TestAPIFetcher_FetchBoardFlatList(t *testing.T) {
	f := newTestAPI(t, map[string]string{
		"/market/all-teams": `[
			{"team_name":"Dallas","value":98.5,"price":99,"volume":1200,"timestamp":1762711200000},
			{"team_name":"NFC East","value":97}
		]`,
	})

	board, err := f.FetchBoard(context.Background())
	require.NoError(t, err)
	require.Len(t, board.Teams, 1)
	require.Len(t, board.ETFs, 1)
	assert.Equal(t, 99.0, board.Teams[0].Price)
	assert.Equal(t, 1200.0, board.Teams[0].Volume)
	assert.Equal(t, int64(1762711200000), board.Teams[0].Timestamp.UnixMilli())
}

func TestAPIFetcher_FetchTeamHistory(t *testing.T) {
	f := newTestAPI(t, map[string]string{
		"/market/team/New%20York%20J": `[
			{"team_name":"New York J","value":51.2,"timestamp":"2025-11-09T18:00:10"},
			{"team_name":"New York J","value":50.9,"timestamp":"2025-11-09T18:00:05"}
		]`,
	})

	rows, err := f.FetchTeamHistory(context.Background(), "New York J")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 50.9, rows[0].Value)
	assert.Equal(t, 51.2, rows[1].Price)

	_, err = f.FetchTeamHistory(context.Background(), "London")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIFetcher_FetchPortfolio(t *testing.T) {
	f := newTestAPI(t, map[string]string{
		"/trades/portfolio": `{"balance":"950.25","positions":[
			{"team_name":"Kansas City","quantity":3,"avg_price":"110.50","last_transaction":"2025-11-09 17:59:00"}
		]}`,
	})

	snap, err := f.FetchPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 950.25, snap.Balance)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, 3, snap.Positions[0].Quantity)
	assert.Equal(t, 110.5, snap.Positions[0].AvgPrice)
	assert.Equal(t, time.Date(2025, 11, 9, 17, 59, 0, 0, time.UTC), snap.Positions[0].LastTransaction)

	f.Token = "wrong"
	_, err = f.FetchPortfolio(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestAPIFetcher_NonFiniteNumbersAreMissing(t *testing.T) {
	f := newTestAPI(t, map[string]string{
		"/trades/portfolio": `{"balance":"Infinity","positions":[
			{"team_name":"Dallas","quantity":1,"avg_price":"NaN","last_transaction":"2025-11-09 17:59:00"}
		]}`,
		"/market/all-teams": `{"teams":[{"team_name":"Dallas","value":"NaN","price":"-Inf","timestamp":"2025-11-09T18:00:00"}],"etfs":[]}`,
	})

	snap, err := f.FetchPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.Balance)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, 0.0, snap.Positions[0].AvgPrice)

	board, err := f.FetchBoard(context.Background())
	require.NoError(t, err)
	require.Len(t, board.Teams, 1)
	assert.Equal(t, 0.0, board.Teams[0].Value)
	assert.Equal(t, 0.0, board.Teams[0].Price)
}

func TestAPIFetcher_FetchPortfolioHistory(t *testing.T) {
	f := newTestAPI(t, map[string]string{
		"/portfolio/history": `{"history":[
			{"date":"Nov 8","balance":1000},
			{"date":"Nov 9","value":"1012.5","timestamp":"2025-11-09T00:00:00Z"}
		]}`,
	})

	pts, err := f.FetchPortfolioHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 1000.0, pts[0].Value)
	assert.Nil(t, pts[0].Timestamp)
	assert.Equal(t, 1012.5, pts[1].Value)
	require.NotNil(t, pts[1].Timestamp)

	f.HistoryPath = ""
	pts, err = f.FetchPortfolioHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pts)
}

func TestAPIFetcher_FetchLiveGames(t *testing.T) {
	f := newTestAPI(t, map[string]string{
		"/live-games": `[
			{"id":"1","quarter":"Q4","timeRemaining":"5:23",
			 "homeTeam":{"name":"Kansas City Chiefs","abbreviation":"KC","score":24,"price":145.5,"changePercent":2.3},
			 "awayTeam":{"name":"Baltimore Ravens","score":"21","price":"132.40","changePercent":-1.2}},
			{"id":"2","quarter":"Final","timeRemaining":"0:00",
			 "homeTeam":{"name":"SF","score":17},"awayTeam":{"name":"Buffalo","score":14}}
		]`,
	})
	col := NewCollector(f, nil, time.Minute)

	games, err := col.LiveGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)

	kc := games[0]
	assert.Equal(t, "Kansas City", kc.Home.TeamName)
	assert.Equal(t, 24, kc.Home.Score)
	assert.Equal(t, 2.3, kc.Home.ChangePercent)
	assert.Equal(t, "Baltimore", kc.Away.TeamName)
	assert.Equal(t, "BAL", kc.Away.Abbreviation)
	assert.Equal(t, 132.4, kc.Away.Price)
	assert.Equal(t, "Q4", kc.Quarter)
	assert.Equal(t, "5:23", kc.Clock)
	assert.False(t, kc.Final)

	assert.Equal(t, "San Francisco", games[1].Home.TeamName)
	assert.True(t, games[1].Final)
}

func TestAPIFetcher_FetchLiveGamesMissingFeed(t *testing.T) {
	f := newTestAPI(t, map[string]string{})
	games, err := f.FetchLiveGames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, games)
}
