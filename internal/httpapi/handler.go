// Package httpapi serves the market terminal's derived views as JSON.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/chart"
	"GridironMarket/internal/collector"
	"GridironMarket/internal/model"
	"GridironMarket/internal/scheduler"
	"GridironMarket/internal/screener"
)

// Market is the data the handlers render from.
type Market interface {
	Snapshot(ctx context.Context) (*collector.Snapshot, error)
	ChartInput(ctx context.Context, team string, r calculator.Range) (chart.Input, error)
	Portfolio(ctx context.Context) (*scheduler.PortfolioReport, error)
	Transactions(ctx context.Context) ([]model.Transaction, error)
	LiveGames(ctx context.Context) ([]model.LiveGame, error)
}

// teamSession serializes the events applied to one team's chart.
type teamSession struct {
	mu sync.Mutex
	*chart.Session
}

// Handler owns one chart session per board instrument.
type Handler struct {
	market       Market
	defaultRange calculator.Range

	mu       sync.Mutex // guards sessions
	sessions map[string]*teamSession
}

func NewHandler(market Market, defaultRange calculator.Range) *Handler {
	if defaultRange == "" {
		defaultRange = calculator.Range1D
	}
	return &Handler{
		market:       market,
		defaultRange: defaultRange,
		sessions:     make(map[string]*teamSession),
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/teams", h.Teams)
	charts := r.Group("/chart")
	{
		charts.GET("/:team", h.Chart)
		charts.POST("/:team/events", h.ChartEvent)
	}
	r.GET("/portfolio", h.Portfolio)
	r.GET("/portfolio/transactions", h.Transactions)
	r.GET("/live", h.LiveGames)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[INFO] %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Teams returns the board filtered by ?search= and ?division=, optionally
// ordered by ?sort=volume|trending and capped by ?limit=.
func (h *Handler) Teams(c *gin.Context) {
	snap, err := h.market.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	search := c.Query("search")
	division := c.DefaultQuery("division", screener.AllDivisions)
	teams := screener.Filter(snap.Teams, search, division)
	etfs := screener.Filter(snap.ETFs, search, screener.AllDivisions)

	limit := -1
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	switch c.Query("sort") {
	case "":
		if limit >= 0 && len(teams) > limit {
			teams = teams[:limit]
		}
	case "volume":
		teams = screener.TopByVolume(teams, limit)
	case "trending":
		teams = screener.Trending(teams, limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be volume or trending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams, "etfs": etfs})
}

// session returns the session of a resolved board name, creating it on
// first use.
func (h *Handler) session(team string) *teamSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[team]
	if !ok {
		s = &teamSession{Session: chart.NewSession()}
		h.sessions[team] = s
	}
	return s
}

func (h *Handler) rangeParam(c *gin.Context, v string) (calculator.Range, bool) {
	if v == "" {
		return h.defaultRange, true
	}
	r, err := calculator.ParseRange(v)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return r, true
}

type chartResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	chart.View
}

// Chart renders a team chart under that team's session. Aliases of a team
// ("BUF", "Buffalo Bills") share its session.
func (h *Handler) Chart(c *gin.Context) {
	r, ok := h.rangeParam(c, c.Query("range"))
	if !ok {
		return
	}
	in, err := h.market.ChartInput(c.Request.Context(), c.Param("team"), r)
	if err != nil {
		writeError(c, err)
		return
	}
	s := h.session(in.TeamName)

	s.mu.Lock()
	defer s.mu.Unlock()
	view, err := chart.Render(in, s.Session)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chartResponse{SessionID: s.ID, State: s.State().String(), View: view})
}

// eventRequest is a pointer event. The point is given directly, or by
// index into the currently rendered series (negative counts from the end).
type eventRequest struct {
	Kind  string           `json:"kind" binding:"required"`
	Range string           `json:"range"`
	X     float64          `json:"x"`
	Y     float64          `json:"y"`
	Index *int             `json:"index"`
	Point *model.DataPoint `json:"point"`
}

// ChartEvent applies one pointer event and returns the re-rendered chart.
func (h *Handler) ChartEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, ok := chart.ParseEventKind(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be move, down, up, leave or clear"})
		return
	}
	r, ok := h.rangeParam(c, req.Range)
	if !ok {
		return
	}

	in, err := h.market.ChartInput(c.Request.Context(), c.Param("team"), r)
	if err != nil {
		writeError(c, err)
		return
	}
	s := h.session(in.TeamName)

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := chart.Event{Kind: kind, X: req.X, Y: req.Y, Point: req.Point}
	if ev.Point == nil && req.Index != nil {
		view, err := chart.Render(in, s.Session)
		if err != nil {
			writeError(c, err)
			return
		}
		i := *req.Index
		if i < 0 {
			i += len(view.Series)
		}
		if i < 0 || i >= len(view.Series) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index out of range"})
			return
		}
		p := view.Series[i]
		ev.Point = &p
	}
	s.Dispatch(ev)

	view, err := chart.Render(in, s.Session)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chartResponse{SessionID: s.ID, State: s.State().String(), View: view})
}

// Portfolio returns the valued account.
func (h *Handler) Portfolio(c *gin.Context) {
	report, err := h.market.Portfolio(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Transactions returns the ledger's trades newest first, capped by ?limit=.
func (h *Handler) Transactions(c *gin.Context) {
	limit := -1
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	txns, err := h.market.Transactions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if limit >= 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

// LiveGames returns the games in progress.
func (h *Handler) LiveGames(c *gin.Context) {
	games, err := h.market.LiveGames(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if games == nil {
		games = []model.LiveGame{}
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calculator.ErrUnknownRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, scheduler.ErrUnknownTeam), errors.Is(err, collector.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scheduler.ErrNoLedger):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "market backend unavailable"})
	}
}
