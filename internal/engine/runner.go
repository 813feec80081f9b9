package engine

import (
	"log/slog"
	"time"
)

// Runner drives a Game on a wall-clock timer: one tick per interval,
// adjustable speed, pausable. Batch callers skip the Runner entirely and
// call Game.Tick in a tight loop.
type Runner struct {
	Game     *Game
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // base tick interval
	Running  bool
}

// NewRunner wraps a game with default pacing (one day per second).
func NewRunner(g *Game) *Runner {
	return &Runner{
		Game:     g,
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the tick loop. Blocks until Stop is called.
func (r *Runner) Run() {
	r.Running = true
	slog.Info("simulation loop started", "day", r.Game.Day(), "speed", r.Speed)

	for r.Running {
		if r.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		r.Game.Tick()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation loop stopped", "day", r.Game.Day())
}

// Stop halts the loop after the current tick completes.
func (r *Runner) Stop() {
	r.Running = false
}
