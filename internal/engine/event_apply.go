package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/farm-world/internal/farm"
)

// Balance-aware cost scaling: richer farms pay more for the same shock,
// poorer farms pay less, inside hard bounds.
const (
	costScaleReference = 1000.0
	costScaleSpread    = 2000.0
	costScaleMin       = 0.6
	costScaleMax       = 1.6
)

// scaledCost applies the cost-scaling heuristic to a base cost.
func (g *Game) scaledCost(base, minCost, maxCost float64) float64 {
	scale := clampf(1+(g.balance-costScaleReference)/costScaleSpread, costScaleMin, costScaleMax)
	return clampf(base*scale, minCost, maxCost)
}

// applyEvent mutates farm state for one due event and reports whether a
// multi-day event continues tomorrow.
func (g *Game) applyEvent(ev *PendingEvent) applyResult {
	switch ev.Type {
	case EventRain:
		return g.applyRain(ev)
	case EventDrought:
		return g.applyDrought(ev)
	case EventHeatwave:
		return g.applyHeatwave(ev)
	case EventFrost:
		return g.applyFrost(ev)
	case EventMarket:
		return g.applyMarket(ev)
	case EventPolicy:
		return g.applyPolicy(ev)
	case EventTechnology:
		return g.applyTechnology(ev)
	default:
		slog.Error("unknown event type, skipping", "type", ev.Type, "day", ev.Day)
		return applyResult{}
	}
}

func (g *Game) applyRain(ev *PendingEvent) applyResult {
	boost := (15 + g.rng.Float()*20) * ev.Severity
	g.waterReserve = clampf(g.waterReserve+boost, 0, 100)
	for _, row := range g.grid {
		for _, p := range row {
			p.ApplyEnvironmentalEffect(farm.WaterIncrease, boost*0.6, 1)
		}
	}
	g.notify("weather", ev.Message, ev.IsAlert)
	return applyResult{}
}

// applyDrought runs one day of an ongoing drought. Drought-adapted seeds
// reduce the per-plot damage.
func (g *Game) applyDrought(ev *PendingEvent) applyResult {
	g.waterReserve = math.Max(0, g.waterReserve-(5+ev.Severity*3))

	protection := 1.0
	if dr := g.techSet.Effect("droughtResistance", 1.0); dr > 1 {
		protection = 1 / dr
	}
	for _, row := range g.grid {
		for _, p := range row {
			p.ApplyEnvironmentalEffect(farm.WaterDecrease, 4*ev.Severity, protection)
			p.ApplyEnvironmentalEffect(farm.YieldDamage, 0.8*ev.Severity, protection)
		}
	}

	if ev.Phase == PhaseScheduled {
		g.notify("weather", ev.Message, true)
	}
	if ev.Duration > 1 {
		return applyResult{Continue: true, NextDuration: ev.Duration - 1}
	}
	return applyResult{}
}

func (g *Game) applyHeatwave(ev *PendingEvent) applyResult {
	g.waterReserve = math.Max(0, g.waterReserve-3*ev.Severity)

	protection := g.techSet.Effect("heatProtection", 1.0)
	for _, row := range g.grid {
		for _, p := range row {
			if p.Empty() {
				continue
			}
			damage := 2 * ev.Severity * p.Crop.HeatSensitivity
			p.ApplyEnvironmentalEffect(farm.YieldDamage, damage, protection)
			p.ApplyEnvironmentalEffect(farm.WaterDecrease, 2*ev.Severity, protection)
		}
	}

	if ev.Phase == PhaseScheduled {
		g.notify("weather", ev.Message, true)
	}
	if ev.Duration > 1 {
		return applyResult{Continue: true, NextDuration: ev.Duration - 1}
	}
	return applyResult{}
}

func (g *Game) applyFrost(ev *PendingEvent) applyResult {
	protection := g.techSet.Effect("frostProtection", 1.0)
	for _, row := range g.grid {
		for _, p := range row {
			if p.Empty() {
				continue
			}
			// Young crops take the worst of a frost.
			damage := 6 * ev.Severity
			if p.GrowthProgress < 30 {
				damage *= 1.5
			}
			p.ApplyEnvironmentalEffect(farm.YieldDamage, damage, protection)
		}
	}
	g.notify("weather", ev.Message, true)
	return applyResult{}
}

func (g *Game) applyMarket(ev *PendingEvent) applyResult {
	factor, ok := g.market[ev.CropID]
	if !ok {
		slog.Error("market event for unknown crop, skipping", "crop", ev.CropID)
		return applyResult{}
	}

	ceiling := marketCeiling
	if ev.PolicyType == "opportunity" {
		ceiling = opportunityCeil
	}
	factor *= 1 + ev.ChangePercent/100
	g.market[ev.CropID] = clampf(factor, marketFloor, ceiling)

	g.notify("market", ev.Message, ev.IsAlert)
	return applyResult{}
}

func (g *Game) applyPolicy(ev *PendingEvent) applyResult {
	switch ev.PolicyType {
	case "water_restriction":
		cost := g.scaledCost(ev.BaseCost, 50, 300)
		g.balance -= cost
		g.waterReserve = math.Max(0, g.waterReserve-10)
		g.notify("policy", fmt.Sprintf("%s (cost %.0f)", ev.Message, cost), ev.IsAlert)
	case "environmental_fine":
		cost := g.scaledCost(ev.BaseCost, 80, 500)
		// Well-kept soil halves the fine.
		if g.averageSoilHealth() >= 70 {
			cost *= 0.5
		}
		g.balance -= cost
		g.notify("policy", fmt.Sprintf("%s (fine %.0f)", ev.Message, cost), ev.IsAlert)
	case "green_subsidy":
		grant := 200.0
		g.balance += grant
		g.notify("policy", fmt.Sprintf("%s (+%.0f)", ev.Message, grant), false)
	default:
		slog.Error("unknown policy type, skipping", "policy", ev.PolicyType)
	}
	return applyResult{}
}

func (g *Game) applyTechnology(ev *PendingEvent) applyResult {
	switch ev.PolicyType {
	case "equipment_failure":
		cost := g.scaledCost(ev.BaseCost, 60, 400)
		g.balance -= cost
		g.notify("technology", fmt.Sprintf("%s (repairs %.0f)", ev.Message, cost), true)
	case "breakthrough":
		// Discount a random unresearched technology by 25%.
		var open []int
		for i, t := range g.techs {
			if !t.Researched {
				open = append(open, i)
			}
		}
		if len(open) == 0 {
			return applyResult{}
		}
		t := g.techs[open[g.rng.IntN(len(open))]]
		t.Cost = math.Round(t.Cost * 0.75)
		g.notify("technology", fmt.Sprintf("%s: %s now costs %.0f", ev.Message, t.Name, t.Cost), false)
	default:
		slog.Error("unknown technology event, skipping", "kind", ev.PolicyType)
	}
	return applyResult{}
}
