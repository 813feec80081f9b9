// Command farmsim runs the interactive farm simulation daemon: one
// simulated day per tick, observed and steered over the HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/talgya/farm-world/internal/api"
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
	seed := envInt64OrDefault("FARMSIM_SEED", 42)
	apiPort := envIntOrDefault("FARMSIM_PORT", 8080)
	catalogPath := os.Getenv("FARMSIM_CATALOG")
	dbPath := envOrDefault("FARMSIM_DB", "data/farm-runs.db")

	slog.Info("farm simulation starting", "seed", seed, "port", apiPort)

	// ── Catalogs ──────────────────────────────────────────────────────
	crops, techs, err := catalog.Load(catalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "path", catalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded",
		"crops", len(crops.Plantable()),
		"technologies", len(techs),
		"source", sourceName(catalogPath),
	)

	// ── Run ledger ────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := ledger.Open(dbPath)
	if err != nil {
		slog.Error("failed to open run ledger", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("run ledger opened", "path", dbPath)

	// ── Game ──────────────────────────────────────────────────────────
	cfg := engine.DefaultConfig()
	cfg.Seed = seed

	// An explicit seed makes the whole run replayable; otherwise live play
	// draws from the OS entropy pool.
	rng := entropy.NewCrypto()
	if os.Getenv("FARMSIM_SEED") != "" {
		rng = entropy.NewSeeded(seed)
		slog.Info("deterministic run", "seed", seed)
	}

	game := engine.NewGame(cfg, crops, techs, rng)
	runner := engine.NewRunner(game)

	runID, err := db.StartRun(seed, cfg.Rows, cfg.Cols)
	if err != nil {
		slog.Error("failed to register run", "error", err)
		os.Exit(1)
	}
	slog.Info("run registered", "run", runID)

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("FARMSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("FARMSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Game:     game,
		Runner:   runner,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	fmt.Printf("\nFarm is live: %dx%d plots, %.0f in the bank.\n", game.Rows(), game.Cols(), game.Balance())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runner.Run()

	// Record the final state before exit.
	if err := db.RecordDay(runID, game); err != nil {
		slog.Error("final metrics write failed", "error", err)
	}
	if err := db.RecordNotifications(runID, game.Notifications()); err != nil {
		slog.Error("final notifications write failed", "error", err)
	}
	if err := db.FinishRun(runID, game, "stopped"); err != nil {
		slog.Error("final run write failed", "error", err)
	}

	fmt.Println("Simulation stopped. Run recorded.")
}

func sourceName(path string) string {
	if path == "" {
		return "built-in defaults"
	}
	return path
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
