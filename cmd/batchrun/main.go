// Command batchrun drives headless farm simulations as fast as the CPU
// allows, recording every run in the SQLite ledger for later analysis.
// A baseline rotation strategy stands in for the farmer.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/engine"
	"github.com/talgya/farm-world/internal/entropy"
	"github.com/talgya/farm-world/internal/ledger"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	baseSeed := envInt64OrDefault("FARMSIM_SEED", 42)
	runs := envIntOrDefault("BATCH_RUNS", 10)
	targetYears := envIntOrDefault("BATCH_YEARS", 10)
	catalogPath := os.Getenv("FARMSIM_CATALOG")
	dbPath := envOrDefault("FARMSIM_DB", "data/farm-runs.db")

	crops, techs, err := catalog.Load(catalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "path", catalogPath, "error", err)
		os.Exit(1)
	}

	os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := ledger.Open(dbPath)
	if err != nil {
		slog.Error("failed to open run ledger", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("batch starting", "runs", runs, "years", targetYears, "base_seed", baseSeed)
	start := time.Now()

	for i := 0; i < runs; i++ {
		seed := baseSeed + int64(i)
		if err := runOnce(db, crops, techs, seed, targetYears); err != nil {
			slog.Error("run failed", "seed", seed, "error", err)
		}
	}

	slog.Info("batch finished", "runs", runs, "elapsed", time.Since(start))

	summaries, err := db.RecentRuns(runs)
	if err != nil {
		slog.Error("summary query failed", "error", err)
		return
	}
	for _, r := range summaries {
		if r.FinalBalance == nil || r.FinalSustainability == nil {
			continue
		}
		fmt.Printf("seed %-6d balance %9.0f  sustainability %3d  %s\n",
			r.Seed, *r.FinalBalance, *r.FinalSustainability, outcomeOf(r))
	}
}

func runOnce(db *ledger.DB, crops *catalog.CropCatalog, techs []*catalog.Technology, seed int64, targetYears int) error {
	cfg := engine.DefaultConfig()
	cfg.Seed = seed
	game := engine.NewGame(cfg, crops, techs, entropy.NewSeeded(seed))
	game.SetStrategy(engine.StrategyFunc(rotationStrategy))

	runID, err := db.StartRun(seed, cfg.Rows, cfg.Cols)
	if err != nil {
		return err
	}

	outcome := "completed"
	for {
		game.Tick()

		// Metrics are sampled at season boundaries to keep the ledger light.
		if game.Day()%90 == 0 {
			if err := db.RecordDay(runID, game); err != nil {
				slog.Error("metrics write failed", "run", runID, "error", err)
			}
		}

		// Runs only end on year boundaries, so every recorded year is complete.
		if game.Day()%360 != 0 {
			continue
		}
		if game.Balance() <= 0 {
			outcome = "bankrupt"
			break
		}
		if game.Year() > targetYears {
			break
		}
	}

	if err := db.RecordNotifications(runID, game.Notifications()); err != nil {
		slog.Error("notifications write failed", "run", runID, "error", err)
	}
	return db.FinishRun(runID, game, outcome)
}

// rotationStrategy is the baseline automated farmer: harvest whatever is
// ready, replant with a rotating crop choice, keep plots watered and fed,
// and buy the cheapest affordable technology.
func rotationStrategy(g *engine.Game) {
	crops := g.Crops().Plantable()
	if len(crops) == 0 {
		return
	}

	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			p := g.PlotAt(row, col)

			if p.HarvestReady {
				g.Harvest(row, col)
			}

			if p.Empty() {
				// Offset by position and day so neighbors and successive
				// cycles pick different crops.
				pick := crops[(row+col+g.Day()/90)%len(crops)]
				g.Plant(row, col, pick.ID)
				continue
			}

			if p.WaterLevel < 40 {
				g.Irrigate(row, col)
			}
			if !p.Fertilized && g.Balance() > 400 {
				g.Fertilize(row, col)
			}
		}
	}

	// Research at most one technology per day, cheapest first.
	var cheapest *catalog.Technology
	for _, t := range g.Technologies() {
		if t.Researched || t.Cost > g.Balance()-500 {
			continue
		}
		if cheapest == nil || t.Cost < cheapest.Cost {
			cheapest = t
		}
	}
	if cheapest != nil {
		g.ResearchTechnology(cheapest.ID)
	}
}

func outcomeOf(r ledger.RunSummary) string {
	if r.Outcome == nil {
		return "unknown"
	}
	return *r.Outcome
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}
