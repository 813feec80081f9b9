package engine

import "log/slog"

// Strategy is the per-tick port for automated drivers. The engine invokes
// it once at the end of every tick with itself as the handle. A nil
// strategy is simply skipped; core correctness never depends on one being
// installed.
type Strategy interface {
	OnTick(g *Game)
}

// StrategyFunc adapts a plain function to the Strategy port.
type StrategyFunc func(g *Game)

func (f StrategyFunc) OnTick(g *Game) { f(g) }

// runStrategy calls the installed strategy inside a failure boundary. A
// panicking strategy is logged and the tick continues normally.
func (g *Game) runStrategy() {
	if g.strategy == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("strategy hook failed", "day", g.day, "panic", r)
		}
	}()
	g.strategy.OnTick(g)
}
