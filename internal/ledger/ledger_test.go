package ledger

import (
	"path/filepath"
	"testing"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/engine"
	"github.com/talgya/farm-world/internal/entropy"
)

func newTestGame(cfg engine.Config) *engine.Game {
	return engine.NewGame(cfg, catalog.DefaultCrops(), catalog.DefaultTechnologies(), entropy.NewSeeded(cfg.Seed))
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	cfg := engine.DefaultConfig()
	cfg.UniformSoil = true
	g := newTestGame(cfg)

	runID, err := db.StartRun(cfg.Seed, cfg.Rows, cfg.Cols)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 3; i++ {
		g.Tick()
		if err := db.RecordDay(runID, g); err != nil {
			t.Fatalf("record day %d: %v", i, err)
		}
	}
	if err := db.RecordNotifications(runID, g.Notifications()); err != nil {
		t.Fatalf("record notifications: %v", err)
	}
	if err := db.FinishRun(runID, g, "completed"); err != nil {
		t.Fatalf("finish: %v", err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != runID {
		t.Fatalf("run id = %s, want %s", r.ID, runID)
	}
	if r.Outcome == nil || *r.Outcome != "completed" {
		t.Fatalf("outcome = %v", r.Outcome)
	}
	if r.FinalYear == nil || *r.FinalYear != g.Year() {
		t.Fatalf("final year = %v, want %d", r.FinalYear, g.Year())
	}

	var days int
	if err := db.conn.Get(&days, "SELECT COUNT(*) FROM daily_metrics WHERE run_id = ?", runID); err != nil {
		t.Fatalf("count: %v", err)
	}
	if days != 3 {
		t.Fatalf("recorded %d days, want 3", days)
	}
}

func TestRecordDayIsIdempotentPerDay(t *testing.T) {
	db := openTestDB(t)

	cfg := engine.DefaultConfig()
	cfg.UniformSoil = true
	g := newTestGame(cfg)
	g.Tick()

	runID, err := db.StartRun(cfg.Seed, cfg.Rows, cfg.Cols)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := db.RecordDay(runID, g); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := db.RecordDay(runID, g); err != nil {
		t.Fatalf("second record: %v", err)
	}

	var days int
	if err := db.conn.Get(&days, "SELECT COUNT(*) FROM daily_metrics WHERE run_id = ?", runID); err != nil {
		t.Fatalf("count: %v", err)
	}
	if days != 1 {
		t.Fatalf("recorded %d rows for one day, want 1", days)
	}
}
