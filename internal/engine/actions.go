package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/farm"
)

// Reason classifies why an action was refused. Business-rule violations are
// never errors; callers branch on the reason instead.
type Reason string

const (
	ReasonOK                  Reason = "ok"
	ReasonInvalidCoordinate   Reason = "invalid_coordinate"
	ReasonInvalidCropID       Reason = "invalid_crop_id"
	ReasonInsufficientFunds   Reason = "insufficient_funds"
	ReasonPlotOccupied        Reason = "plot_occupied"
	ReasonPlotNotReady        Reason = "plot_not_ready"
	ReasonAlreadyDone         Reason = "already_done"
	ReasonUnknownTechnology   Reason = "unknown_technology"
	ReasonAlreadyResearched   Reason = "already_researched"
	ReasonPrerequisitesNotMet Reason = "prerequisites_not_met"
)

// Plant puts a crop on a fallow plot, paying the seed cost.
func (g *Game) Plant(row, col int, cropID string) bool {
	ok, _ := g.PlantReason(row, col, cropID)
	return ok
}

// PlantReason is Plant with the refusal reason exposed.
func (g *Game) PlantReason(row, col int, cropID string) (bool, Reason) {
	if !g.validCoord(row, col) {
		return false, ReasonInvalidCoordinate
	}
	crop := g.crops.Get(cropID)
	if crop.IsEmpty() {
		return false, ReasonInvalidCropID
	}
	plot := g.grid[row][col]
	if !plot.Empty() {
		return false, ReasonPlotOccupied
	}

	cost := math.Round(crop.BasePrice * plantingCostFactor)
	if g.balance < cost {
		return false, ReasonInsufficientFunds
	}
	if !plot.Plant(crop) {
		return false, ReasonPlotOccupied
	}
	g.balance -= cost
	slog.Debug("planted", "row", row, "col", col, "crop", cropID, "cost", cost)
	return true, ReasonOK
}

// Irrigate waters a plot once per day, drawing from the farm reserve.
func (g *Game) Irrigate(row, col int) bool {
	ok, _ := g.IrrigateReason(row, col)
	return ok
}

// IrrigateReason is Irrigate with the refusal reason exposed.
func (g *Game) IrrigateReason(row, col int) (bool, Reason) {
	if !g.validCoord(row, col) {
		return false, ReasonInvalidCoordinate
	}
	plot := g.grid[row][col]
	if plot.Empty() {
		return false, ReasonPlotNotReady
	}
	if !plot.Irrigate(g.techSet.Effect("waterEfficiency", 1.0)) {
		return false, ReasonAlreadyDone
	}
	g.waterReserve = math.Max(0, g.waterReserve-irrigationDraw)
	return true, ReasonOK
}

// Fertilize feeds a plot once per cycle, for a flat cost.
func (g *Game) Fertilize(row, col int) bool {
	ok, _ := g.FertilizeReason(row, col)
	return ok
}

// FertilizeReason is Fertilize with the refusal reason exposed.
func (g *Game) FertilizeReason(row, col int) (bool, Reason) {
	if !g.validCoord(row, col) {
		return false, ReasonInvalidCoordinate
	}
	plot := g.grid[row][col]
	if plot.Empty() {
		return false, ReasonPlotNotReady
	}
	if g.balance < fertilizeCost {
		return false, ReasonInsufficientFunds
	}
	if !plot.Fertilize(g.techSet.Effect("fertilizerEfficiency", 1.0)) {
		return false, ReasonAlreadyDone
	}
	g.balance -= fertilizeCost
	return true, ReasonOK
}

// Harvest takes the crop off a ready plot and credits the income at the
// crop's current market factor.
func (g *Game) Harvest(row, col int) farm.HarvestResult {
	if !g.validCoord(row, col) {
		return farm.HarvestResult{}
	}
	plot := g.grid[row][col]
	if plot.Empty() || !plot.HarvestReady {
		return farm.HarvestResult{}
	}

	factor := g.MarketFactor(plot.Crop.ID)
	res := plot.Harvest(factor, g.crops.Empty())
	if res.Success {
		g.balance += res.Income
		g.notify("harvest", fmt.Sprintf("Harvested %s for %.0f (%.0f%% yield)", res.CropName, res.Income, res.YieldPercentage), false)
	}
	return res
}

// ResearchTechnology unlocks a technology when its prerequisites are met
// and the balance covers the cost.
func (g *Game) ResearchTechnology(techID string) bool {
	ok, _ := g.ResearchReason(techID)
	return ok
}

// ResearchReason is ResearchTechnology with the refusal reason exposed.
func (g *Game) ResearchReason(techID string) (bool, Reason) {
	var tech *catalog.Technology
	for _, t := range g.techs {
		if t.ID == techID {
			tech = t
			break
		}
	}
	if tech == nil {
		return false, ReasonUnknownTechnology
	}
	if tech.Researched {
		return false, ReasonAlreadyResearched
	}
	for _, pre := range tech.Prerequisites {
		if !g.techSet.IsResearched(pre) {
			return false, ReasonPrerequisitesNotMet
		}
	}
	if g.balance < tech.Cost {
		return false, ReasonInsufficientFunds
	}

	g.balance -= tech.Cost
	tech.Researched = true
	g.notify("technology", fmt.Sprintf("Researched %s", tech.Name), false)
	slog.Info("technology researched", "tech", techID, "cost", tech.Cost, "balance", g.balance)
	return true, ReasonOK
}
