package recorder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"GridironMarket/internal/model"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the HTTP readers do not block the poller's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS team_market_information (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			team_name TEXT    NOT NULL,
			value     REAL    NOT NULL,
			price     REAL,
			volume    REAL,
			type      TEXT,
			timestamp INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tmi_team_ts ON team_market_information(team_name, timestamp)`,

		`CREATE TABLE IF NOT EXISTS portfolio_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			balance   REAL    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_ts ON portfolio_history(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// snapshotRow is the stored form of a TeamSnapshot; timestamps are epoch ms.
type snapshotRow struct {
	TeamName  string  `db:"team_name"`
	Value     float64 `db:"value"`
	Price     float64 `db:"price"`
	Volume    float64 `db:"volume"`
	Type      string  `db:"type"`
	Timestamp int64   `db:"timestamp"`
}

func (s snapshotRow) snapshot() model.TeamSnapshot {
	return model.TeamSnapshot{
		TeamName:  s.TeamName,
		Value:     s.Value,
		Price:     s.Price,
		Volume:    s.Volume,
		Type:      model.InstrumentType(s.Type),
		Timestamp: time.UnixMilli(s.Timestamp).UTC(),
	}
}

func (r *SQLiteRecorder) RecordSnapshots(ctx context.Context, rows []model.TeamSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, s := range rows {
		ts := s.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		price := s.Price
		if price == 0 {
			price = s.Value
		}
		row := snapshotRow{
			TeamName:  s.TeamName,
			Value:     s.Value,
			Price:     price,
			Volume:    s.Volume,
			Type:      string(s.Type),
			Timestamp: ts.UnixMilli(),
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO team_market_information
			(team_name, value, price, volume, type, timestamp)
			VALUES (:team_name, :value, :price, :volume, :type, :timestamp)`, row); err != nil {
			return fmt.Errorf("insert %s: %w", s.TeamName, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordPortfolioValue(ctx context.Context, value float64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO portfolio_history (timestamp, balance) VALUES (?, ?)`,
		at.UnixMilli(), value)
	return err
}

// TeamHistory returns the team's records at or after since, oldest first.
func (r *SQLiteRecorder) TeamHistory(ctx context.Context, team string, since time.Time) ([]model.TeamSnapshot, error) {
	var rows []snapshotRow
	err := r.db.SelectContext(ctx, &rows, `SELECT team_name, value,
			COALESCE(price, value) AS price, COALESCE(volume, 0) AS volume,
			COALESCE(type, '') AS type, timestamp
		FROM team_market_information
		WHERE team_name = ? AND timestamp >= ?
		ORDER BY timestamp ASC, id ASC`, team, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("select history %s: %w", team, err)
	}
	out := make([]model.TeamSnapshot, len(rows))
	for i, row := range rows {
		out[i] = row.snapshot()
	}
	return out, nil
}

// PortfolioHistory returns recorded account values at or after since.
func (r *SQLiteRecorder) PortfolioHistory(ctx context.Context, since time.Time) ([]model.PortfolioPoint, error) {
	var rows []struct {
		Timestamp int64   `db:"timestamp"`
		Balance   float64 `db:"balance"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT timestamp, balance FROM portfolio_history
		WHERE timestamp >= ? ORDER BY timestamp ASC, id ASC`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("select portfolio history: %w", err)
	}
	out := make([]model.PortfolioPoint, len(rows))
	for i, row := range rows {
		out[i] = model.PortfolioPoint{
			Date:      time.UnixMilli(row.Timestamp).UTC().Format("Jan 2"),
			Value:     row.Balance,
			Timestamp: model.Millis(row.Timestamp),
		}
	}
	return out, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
