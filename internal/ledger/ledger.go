// Package ledger provides SQLite-based run telemetry for batch simulations.
// It is append-only analysis data: nothing in the simulation is ever
// restored from it.
package ledger

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/farm-world/internal/engine"
)

// DB wraps a SQLite connection for run recording.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		rows INTEGER NOT NULL,
		cols INTEGER NOT NULL,
		started_at TEXT NOT NULL DEFAULT (datetime('now')),
		finished_at TEXT,
		final_year INTEGER,
		final_balance REAL,
		final_sustainability INTEGER,
		outcome TEXT
	);

	CREATE TABLE IF NOT EXISTS daily_metrics (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		balance REAL NOT NULL,
		water_reserve REAL NOT NULL,
		farm_health REAL NOT NULL,
		farm_value REAL NOT NULL,
		sustainability INTEGER NOT NULL,
		soil_score REAL NOT NULL,
		diversity_score REAL NOT NULL,
		tech_score REAL NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL,
		alert INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_daily_run ON daily_metrics(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_run_day ON run_events(run_id, day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a new run and returns its id.
func (db *DB) StartRun(seed int64, rows, cols int) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, rows, cols) VALUES (?, ?, ?, ?)",
		id, seed, rows, cols,
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// RecordDay appends one day of farm metrics.
func (db *DB) RecordDay(runID string, g *engine.Game) error {
	s := g.ComputeSustainability()
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO daily_metrics
		(run_id, day, balance, water_reserve, farm_health, farm_value,
		 sustainability, soil_score, diversity_score, tech_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, g.Day(), g.Balance(), g.WaterReserve(), g.FarmHealth(), g.FarmValue(),
		s.Score, s.SoilScore, s.DiversityScore, s.TechScore,
	)
	return err
}

// RecordNotifications appends a batch of farm news to the run.
func (db *DB) RecordNotifications(runID string, notes []engine.Notification) error {
	if len(notes) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, n := range notes {
		alert := 0
		if n.Alert {
			alert = 1
		}
		_, err := tx.Exec(
			"INSERT INTO run_events (run_id, day, category, message, alert) VALUES (?, ?, ?, ?, ?)",
			runID, n.Day, n.Category, n.Message, alert,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FinishRun records the final outcome of a run.
func (db *DB) FinishRun(runID string, g *engine.Game, outcome string) error {
	_, err := db.conn.Exec(`UPDATE runs SET
		finished_at = datetime('now'),
		final_year = ?,
		final_balance = ?,
		final_sustainability = ?,
		outcome = ?
		WHERE id = ?`,
		g.Year(), g.Balance(), g.ComputeSustainability().Score, outcome, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	slog.Info("run recorded", "run", runID, "outcome", outcome, "year", g.Year(), "balance", g.Balance())
	return nil
}

// RunSummary is one finished run's headline numbers.
type RunSummary struct {
	ID                  string  `db:"id" json:"id"`
	Seed                int64   `db:"seed" json:"seed"`
	FinalYear           *int    `db:"final_year" json:"final_year"`
	FinalBalance        *float64 `db:"final_balance" json:"final_balance"`
	FinalSustainability *int    `db:"final_sustainability" json:"final_sustainability"`
	Outcome             *string `db:"outcome" json:"outcome"`
}

// RecentRuns returns the most recently started runs.
func (db *DB) RecentRuns(limit int) ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs,
		`SELECT id, seed, final_year, final_balance, final_sustainability, outcome
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	return runs, err
}
