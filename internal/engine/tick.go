package engine

import (
	"fmt"
	"log/slog"
	"math"
)

// Tick advances the simulation by one day. The phase order is fixed:
// overhead, plot updates, season/year boundaries, event application,
// aggregate recompute, random event generation, strategy hook. Plot updates
// always run before same-day events so event damage lands on the day's
// final state.
func (g *Game) Tick() {
	// 1. Daily overhead.
	g.balance -= dailyOverhead
	if g.balance < lowBalanceWarning {
		slog.Warn("balance critically low", "day", g.day, "balance", g.balance)
		g.notify("economy", fmt.Sprintf("Balance critically low: %.0f", g.balance), true)
	}

	// 2. Advance the calendar and every plot, row-major.
	g.day++
	var readyPlots []string
	for r, row := range g.grid {
		for c, plot := range row {
			wasReady := plot.HarvestReady
			plot.ResetDailyFlags()
			plot.Update(g.waterReserve, g.techSet, g.rng)
			if plot.HarvestReady && !wasReady {
				readyPlots = append(readyPlots, fmt.Sprintf("(%d,%d)", r, c))
			}
		}
	}
	for _, coord := range readyPlots {
		g.notify("harvest", fmt.Sprintf("Plot %s is ready to harvest", coord), false)
	}

	// 3. Season boundary.
	if g.day%DaysPerSeason == 0 {
		g.advanceSeason()
	}

	// 4. Year boundary.
	if g.day%DaysPerYear == 0 {
		g.closeYear()
	}

	// 5. Apply everything scheduled for today.
	g.processEvents()

	// 6. Farm health from soil and reserve.
	g.farmHealth = g.computeFarmHealth()
	g.farmValue = g.computeFarmValue()

	// 7. Occasional new random event.
	if g.rng.Float() < eventGenerationChance {
		g.generateRandomEvent()
	}

	// 8. External strategy, inside its own failure boundary.
	g.runStrategy()
}

// advanceSeason rotates the season and applies seasonal water recovery and
// season-typical event scheduling.
func (g *Game) advanceSeason() {
	g.season = (g.season + 1) % 4

	var recovery float64
	switch g.season {
	case SeasonSpring:
		recovery = 10 + g.rng.Float()*15
	case SeasonSummer:
		recovery = 2 + g.rng.Float()*5
	case SeasonFall:
		recovery = 8 + g.rng.Float()*10
	case SeasonWinter:
		recovery = 12 + g.rng.Float()*18
	}
	g.waterReserve = clampf(g.waterReserve+recovery, 0, 100)

	slog.Info("season change",
		"day", g.day,
		"season", SeasonName(g.season),
		"year", g.year,
		"water_reserve", fmt.Sprintf("%.1f", g.waterReserve),
	)
	g.notify("season", fmt.Sprintf("%s begins", SeasonName(g.season)), false)

	g.scheduleSeasonalEvents()
}

// scheduleSeasonalEvents rolls for the events each season is known for.
func (g *Game) scheduleSeasonalEvents() {
	switch g.season {
	case SeasonSummer:
		if g.rng.Float() < g.climate.DroughtProbability {
			g.scheduleEvent(g.newDroughtEvent())
		}
		if g.rng.Float() < g.climate.HeatwaveProbability {
			g.scheduleEvent(g.newHeatwaveEvent())
		}
	case SeasonWinter:
		if g.rng.Float() < 0.30 {
			g.scheduleEvent(g.newFrostEvent())
		}
	case SeasonSpring, SeasonFall:
		if g.rng.Float() < 0.40 {
			g.scheduleEvent(g.newRainEvent())
		}
	}
}

// closeYear applies interest, recomputes the yearly aggregates, drifts the
// climate, and pays the sustainability subsidy.
func (g *Game) closeYear() {
	g.year++

	// Interest on savings, steeper rate on debt.
	if g.balance > 0 {
		g.balance += g.balance * interestRate
	} else if g.balance < 0 {
		g.balance += g.balance * debtRate
	}
	g.balance = math.Round(g.balance*100) / 100

	g.farmValue = g.computeFarmValue()
	g.sustainability = g.ComputeSustainability()

	// Climate drift: never down, hard caps.
	g.climate.DroughtProbability = math.Min(droughtProbCap, g.climate.DroughtProbability+droughtDriftPerYear)
	g.climate.HeatwaveProbability = math.Min(heatwaveProbCap, g.climate.HeatwaveProbability+heatwaveDriftPerYear)

	subsidy := subsidyFor(g.sustainability.Score)
	if subsidy > 0 {
		g.balance += subsidy
		g.notify("economy", fmt.Sprintf("Sustainability subsidy received: %.0f", subsidy), false)
	}

	slog.Info("year closed",
		"year", g.year,
		"balance", fmt.Sprintf("%.0f", g.balance),
		"farm_value", fmt.Sprintf("%.0f", g.farmValue),
		"sustainability", g.sustainability.Score,
		"drought_prob", fmt.Sprintf("%.2f", g.climate.DroughtProbability),
		"heatwave_prob", fmt.Sprintf("%.2f", g.climate.HeatwaveProbability),
	)
}

// subsidyFor returns the tiered year-end subsidy for a sustainability score.
func subsidyFor(score int) float64 {
	switch {
	case score >= 70:
		return 500
	case score >= 50:
		return 300
	case score >= 30:
		return 100
	default:
		return 0
	}
}
