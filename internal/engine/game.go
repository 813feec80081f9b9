// Package engine drives the day-by-day farm economy: the tick orchestrator,
// the stochastic event engine, and the farm-wide economic aggregates.
package engine

import (
	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/entropy"
	"github.com/talgya/farm-world/internal/farm"
	"github.com/talgya/farm-world/internal/grid"
)

// Calendar and economy tuning.
const (
	DaysPerSeason = 90
	DaysPerYear   = 360

	dailyOverhead      = 5.0
	lowBalanceWarning  = -500.0
	plantingCostFactor = 0.15
	fertilizeCost      = 20.0
	irrigationDraw     = 1.0 // reserve units per irrigation

	interestRate = 0.04 // on positive year-end balance
	debtRate     = 0.09 // on negative year-end balance

	droughtDriftPerYear  = 0.02
	droughtProbCap       = 0.60
	heatwaveDriftPerYear = 0.015
	heatwaveProbCap      = 0.50

	marketFloor     = 0.4
	marketCeiling   = 2.5
	opportunityCeil = 3.0

	notificationCap = 200
)

// Season indices.
const (
	SeasonSpring = 0
	SeasonSummer = 1
	SeasonFall   = 2
	SeasonWinter = 3
)

// SeasonName returns a human-readable season name.
func SeasonName(season int) string {
	switch season {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonFall:
		return "Fall"
	case SeasonWinter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// Climate holds the farm-wide weather odds. Both probabilities only ever
// drift upward, capped.
type Climate struct {
	DroughtProbability  float64 `json:"drought_probability"`
	HeatwaveProbability float64 `json:"heatwave_probability"`
}

// Notification is one line of the farm's news feed.
type Notification struct {
	Day      int    `json:"day"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Alert    bool   `json:"alert"`
}

// Config sets up a new game.
type Config struct {
	Rows                 int     `yaml:"rows"`
	Cols                 int     `yaml:"cols"`
	Seed                 int64   `yaml:"seed"`
	StartingBalance      float64 `yaml:"starting_balance"`
	StartingWaterReserve float64 `yaml:"starting_water_reserve"`
	UniformSoil          bool    `yaml:"uniform_soil"` // skip noise heterogeneity
}

// DefaultConfig returns the standard 10x10 farm.
func DefaultConfig() Config {
	return Config{
		Rows:                 10,
		Cols:                 10,
		Seed:                 42,
		StartingBalance:      1000,
		StartingWaterReserve: 80,
	}
}

// Game owns the complete farm state and exposes the public action surface.
// Single-threaded by design: one Tick runs to completion before the next.
type Game struct {
	crops   *catalog.CropCatalog
	techs   []*catalog.Technology // deep per-game copy
	techSet *farm.TechSet
	rng     entropy.Source

	balance      float64
	waterReserve float64
	climate      Climate
	day          int // absolute simulated day, first tick is day 1
	season       int
	year         int
	grid         [][]*farm.Plot
	market       map[string]float64 // crop id -> price factor
	pending      []*PendingEvent

	notifications []Notification
	strategy      Strategy

	farmHealth     float64
	farmValue      float64
	sustainability Sustainability

	// Cooldown markers: the day each multi-day weather event last ended.
	droughtEndedDay  int
	heatwaveEndedDay int
}

// NewGame builds a game from catalogs and a random source. The technology
// list is deep-copied so the catalog templates stay pristine.
func NewGame(cfg Config, crops *catalog.CropCatalog, techs []*catalog.Technology, rng entropy.Source) *Game {
	gameTechs := catalog.CloneTechnologies(techs)

	var plots [][]*farm.Plot
	if cfg.UniformSoil {
		plots = grid.Uniform(cfg.Rows, cfg.Cols, crops.Empty())
	} else {
		plots = grid.Generate(cfg.Rows, cfg.Cols, cfg.Seed, crops.Empty())
	}

	market := make(map[string]float64, len(crops.Plantable()))
	for _, c := range crops.Plantable() {
		market[c.ID] = 1.0
	}

	g := &Game{
		crops:        crops,
		techs:        gameTechs,
		techSet:      farm.NewTechSet(gameTechs),
		rng:          rng,
		balance:      cfg.StartingBalance,
		waterReserve: clampf(cfg.StartingWaterReserve, 0, 100),
		climate: Climate{
			DroughtProbability:  0.15,
			HeatwaveProbability: 0.12,
		},
		season:           SeasonSpring,
		year:             1,
		grid:             plots,
		market:           market,
		droughtEndedDay:  -1,
		heatwaveEndedDay: -1,
	}
	g.farmHealth = g.computeFarmHealth()
	g.farmValue = g.computeFarmValue()
	g.sustainability = g.ComputeSustainability()
	return g
}

// SetStrategy installs the per-tick strategy port. Pass nil to remove it.
func (g *Game) SetStrategy(s Strategy) {
	g.strategy = s
}

// --- accessors ---

func (g *Game) Balance() float64      { return g.balance }
func (g *Game) WaterReserve() float64 { return g.waterReserve }
func (g *Game) FarmHealth() float64   { return g.farmHealth }
func (g *Game) FarmValue() float64    { return g.farmValue }
func (g *Game) Day() int              { return g.day }
func (g *Game) Season() int           { return g.season }
func (g *Game) Year() int             { return g.year }
func (g *Game) Climate() Climate      { return g.climate }
func (g *Game) Rows() int             { return len(g.grid) }

func (g *Game) Cols() int {
	if len(g.grid) == 0 {
		return 0
	}
	return len(g.grid[0])
}

// Crops returns the injected crop catalog.
func (g *Game) Crops() *catalog.CropCatalog { return g.crops }

// Technologies returns the game's own technology copies.
func (g *Game) Technologies() []*catalog.Technology { return g.techs }

// ResearchedTechnologies returns the ids of researched technologies.
func (g *Game) ResearchedTechnologies() []string { return g.techSet.Researched() }

// MarketFactor returns the current price multiplier for a crop, 1.0 for
// unknown ids.
func (g *Game) MarketFactor(cropID string) float64 {
	if f, ok := g.market[cropID]; ok {
		return f
	}
	return 1.0
}

// MarketFactors returns a copy of the whole price table.
func (g *Game) MarketFactors() map[string]float64 {
	out := make(map[string]float64, len(g.market))
	for id, f := range g.market {
		out[id] = f
	}
	return out
}

// PlotAt returns the plot at (row, col), or nil when out of bounds.
// Callers treat the result as read-only; mutations go through the action
// API.
func (g *Game) PlotAt(row, col int) *farm.Plot {
	if !g.validCoord(row, col) {
		return nil
	}
	return g.grid[row][col]
}

// PendingEvents returns a copy of the scheduled event queue.
func (g *Game) PendingEvents() []PendingEvent {
	out := make([]PendingEvent, len(g.pending))
	for i, ev := range g.pending {
		out[i] = *ev
	}
	return out
}

// Notifications returns the most recent news feed entries, oldest first.
func (g *Game) Notifications() []Notification {
	return append([]Notification(nil), g.notifications...)
}

func (g *Game) validCoord(row, col int) bool {
	return row >= 0 && row < len(g.grid) && col >= 0 && col < len(g.grid[row])
}

func (g *Game) notify(category, message string, alert bool) {
	g.notifications = append(g.notifications, Notification{
		Day:      g.day,
		Category: category,
		Message:  message,
		Alert:    alert,
	})
	if len(g.notifications) > notificationCap {
		g.notifications = g.notifications[len(g.notifications)-notificationCap:]
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
