package farm

import (
	"math"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/entropy"
)

// Hard bounds on plot state. Soil never degrades past its floor, pest
// pressure saturates well below total loss.
const (
	SoilFloor   = 10.0
	SoilCap     = 100.0
	WaterCap    = 100.0
	PestCap     = 80.0
	YieldCap    = 150.0
	historyMax  = 10
	growthEps   = 1e-9
)

// CropRecord is one entry in a plot's rotation history.
type CropRecord struct {
	CropID string `json:"crop_id"`
	Days   int    `json:"days"`
}

// Plot is one grid cell with independent soil, water, crop, and pest state.
// States: empty (sentinel crop), growing, harvest-ready.
type Plot struct {
	Crop                 *catalog.Crop
	WaterLevel           float64 // [0, 100]
	SoilHealth           float64 // [10, 100]
	GrowthProgress       float64 // [0, 100]
	DaysSincePlanting    int
	Fertilized           bool // once per cycle
	Irrigated            bool // once per day
	HarvestReady         bool
	ExpectedYield        float64 // percent, soft range [0, 150]
	ConsecutivePlantings int
	PestPressure         float64 // [0, 80]
	CropHistory          []CropRecord // last 10 completed cycles

	// Last completed cycle, consumed by the next Plant for rotation
	// bookkeeping.
	lastCropID   string
	lastCropDays int
}

// NewPlot returns a fallow plot on fresh ground.
func NewPlot(empty *catalog.Crop) *Plot {
	return &Plot{
		Crop:       empty,
		WaterLevel: 50,
		SoilHealth: 100,
	}
}

// Empty reports whether the plot is fallow.
func (p *Plot) Empty() bool {
	return p.Crop.IsEmpty()
}

// Plant puts a crop in the ground. Replanting the same crop as the last
// cycle counts as monocropping: pest pressure climbs with each consecutive
// planting, while switching crops knocks it back down.
func (p *Plot) Plant(crop *catalog.Crop) bool {
	if crop.IsEmpty() || !p.Empty() {
		return false
	}

	if p.lastCropID == crop.ID {
		p.ConsecutivePlantings++
		p.PestPressure = math.Min(PestCap, p.PestPressure+15*float64(p.ConsecutivePlantings))
	} else {
		p.ConsecutivePlantings = 0
		p.PestPressure = math.Max(0, p.PestPressure-40)
	}

	if p.lastCropID != "" {
		p.CropHistory = append(p.CropHistory, CropRecord{CropID: p.lastCropID, Days: p.lastCropDays})
		if len(p.CropHistory) > historyMax {
			p.CropHistory = p.CropHistory[len(p.CropHistory)-historyMax:]
		}
	}

	p.Crop = crop
	p.DaysSincePlanting = 0
	p.GrowthProgress = 0
	p.HarvestReady = false
	p.Fertilized = false
	p.Irrigated = false
	p.ExpectedYield = math.Max(30, 100-4*float64(p.ConsecutivePlantings)-p.PestPressure/2.5)
	return true
}

// Irrigate adds water once per day. waterEfficiency comes from the
// technology resolver (1.0 with nothing researched).
func (p *Plot) Irrigate(waterEfficiency float64) bool {
	if p.Empty() || p.Irrigated {
		return false
	}
	p.WaterLevel = math.Min(WaterCap, p.WaterLevel+30*waterEfficiency)
	p.Irrigated = true
	return true
}

// Fertilize boosts soil and expected yield once per cycle. Healthy soil
// absorbs fertilizer better; pests blunt the yield gain.
func (p *Plot) Fertilize(fertilizerEfficiency float64) bool {
	if p.Empty() || p.Fertilized {
		return false
	}
	soilFactor := 0.5 + p.SoilHealth/200
	p.SoilHealth = math.Min(SoilCap, p.SoilHealth+10*fertilizerEfficiency*soilFactor)
	p.ExpectedYield = math.Min(YieldCap, p.ExpectedYield+15*fertilizerEfficiency*soilFactor*(1-p.PestPressure/150))
	p.Fertilized = true
	return true
}

// Update advances the plot one simulated day.
func (p *Plot) Update(waterReserve float64, techs *TechSet, rng entropy.Source) {
	if p.Empty() {
		p.updateFallow(techs)
		return
	}

	p.DaysSincePlanting++

	rate := p.growthRate(waterReserve, techs)
	if !p.HarvestReady {
		p.GrowthProgress = math.Min(100, p.GrowthProgress+rate)
		if p.GrowthProgress+growthEps >= 100 {
			p.GrowthProgress = 100
			p.HarvestReady = true
		}
	} else {
		// Unharvested crops slowly spoil in the field.
		p.ExpectedYield = math.Max(0, p.ExpectedYield-0.5)
	}

	// Daily water draw, trimmed by precision AI and drought-adapted seeds.
	use := p.Crop.WaterUse * techs.Effect("waterReduction", 1.0)
	if dr := techs.Effect("droughtResistance", 1.0); dr > 0 {
		use /= dr
	}
	p.WaterLevel = math.Max(0, p.WaterLevel-use)

	// Water stress below 30% eats into the expected yield.
	if p.WaterLevel < 30 {
		stress := (30 - p.WaterLevel) * 0.12 * p.Crop.WaterSensitivity
		if dr := techs.Effect("droughtResistance", 1.0); dr > 0 {
			stress /= dr
		}
		p.ExpectedYield = math.Max(0, p.ExpectedYield-stress)
	}

	// Soil wears down with the crop's footprint, monocropping, and pests.
	deg := math.Abs(p.Crop.SoilImpact) * 0.08
	deg *= 1 + 0.2*float64(p.ConsecutivePlantings)
	deg *= 1 + p.PestPressure/200
	deg *= techs.Effect("tillageReduction", 1.0)
	p.SoilHealth -= deg
	p.SoilHealth += techs.Effect("soilRegen", 0)
	p.SoilHealth = clamp(p.SoilHealth, SoilFloor, SoilCap)

	// Weak soil invites pests; otherwise low pressure slowly bleeds off
	// unless fresh fertilizer is feeding them.
	if p.SoilHealth < 40 && rng.Float() < 0.12 {
		raise := (2 + rng.Float()*3) * techs.Effect("pestReduction", 1.0)
		p.PestPressure = math.Min(PestCap, p.PestPressure+raise)
	} else if p.PestPressure > 0 && p.PestPressure < 25 && !p.Fertilized {
		p.PestPressure = math.Max(0, p.PestPressure-0.15)
	}
}

// updateFallow applies passive resting-ground dynamics.
func (p *Plot) updateFallow(techs *TechSet) {
	if p.WaterLevel >= 20 && p.WaterLevel <= 85 {
		p.SoilHealth += 0.08 + techs.Effect("soilRegen", 0)
	} else {
		// Parched or waterlogged ground keeps degrading.
		p.SoilHealth -= 0.05
	}
	p.SoilHealth = clamp(p.SoilHealth, SoilFloor, SoilCap)
	p.PestPressure = math.Max(0, p.PestPressure-0.3)
	p.WaterLevel = math.Max(0, p.WaterLevel-0.4)
}

// growthRate is the daily growth increment for the current crop.
func (p *Plot) growthRate(waterReserve float64, techs *TechSet) float64 {
	baseRate := 100 / float64(p.Crop.GrowthTime)

	// Cell moisture dominates, the farm reserve backstops it.
	combined := 0.8*p.WaterLevel/100 + 0.2*waterReserve/100
	waterMult := math.Pow(combined, p.Crop.WaterSensitivity)
	if techs.Effect("droughtResistance", 1.0) > 1 && waterMult < 0.5 {
		waterMult = 0.5
	}

	soilMult := 0.3 + 0.7*math.Pow(p.SoilHealth/100, 0.8)
	soilMult += techs.Effect("growthBoost", 0)

	fertMult := 1.0
	if p.Fertilized {
		fertMult = 1.2
	}

	pestMult := 1 - p.PestPressure/250

	rate := baseRate * waterMult * soilMult * fertMult * pestMult
	if rate < 0 {
		return 0
	}
	return rate
}

// HarvestResult reports the outcome of a harvest attempt.
type HarvestResult struct {
	Success         bool    `json:"success"`
	Income          float64 `json:"income"`
	CropName        string  `json:"crop_name"`
	YieldPercentage float64 `json:"yield_percentage"`
}

// Harvest takes the crop off a ready plot. The one-time soil impact scales
// with the crop's footprint and the monocropping streak; rotation counters
// survive into the next cycle.
func (p *Plot) Harvest(marketFactor float64, empty *catalog.Crop) HarvestResult {
	if p.Empty() || !p.HarvestReady {
		return HarvestResult{}
	}

	yield := clamp(p.ExpectedYield, 0, YieldCap)
	income := math.Round(p.Crop.HarvestValue * yield / 100 * marketFactor)

	penalty := (4 + math.Abs(p.Crop.SoilImpact)) * (1 + 0.15*float64(p.ConsecutivePlantings))
	p.SoilHealth = math.Max(SoilFloor, p.SoilHealth-penalty)

	result := HarvestResult{
		Success:         true,
		Income:          income,
		CropName:        p.Crop.Name,
		YieldPercentage: yield,
	}

	p.lastCropID = p.Crop.ID
	p.lastCropDays = p.DaysSincePlanting

	p.Crop = empty
	p.GrowthProgress = 0
	p.DaysSincePlanting = 0
	p.HarvestReady = false
	p.Fertilized = false
	p.Irrigated = false
	p.ExpectedYield = 0
	return result
}

// EffectKind tags an environmental effect applied by the event engine.
type EffectKind int

const (
	WaterIncrease EffectKind = iota
	WaterDecrease
	SoilDamage
	SoilImprove
	YieldDamage
	GrowthBoost
	PestIncrease
	PestDecrease
)

// ApplyEnvironmentalEffect mutates the plot for one event. protection is in
// [0, 1] and scales down adverse effects only; beneficial effects land at
// full strength regardless of protection.
func (p *Plot) ApplyEnvironmentalEffect(kind EffectKind, magnitude, protection float64) {
	protection = clamp(protection, 0, 1)
	switch kind {
	case WaterIncrease:
		p.WaterLevel = math.Min(WaterCap, p.WaterLevel+magnitude)
	case WaterDecrease:
		p.WaterLevel = math.Max(0, p.WaterLevel-magnitude*protection)
	case SoilDamage:
		p.SoilHealth = math.Max(SoilFloor, p.SoilHealth-magnitude*protection)
	case SoilImprove:
		p.SoilHealth = math.Min(SoilCap, p.SoilHealth+magnitude)
	case YieldDamage:
		if !p.Empty() {
			p.ExpectedYield = math.Max(0, p.ExpectedYield-magnitude*protection)
		}
	case GrowthBoost:
		if !p.Empty() && !p.HarvestReady {
			p.GrowthProgress = math.Min(100, p.GrowthProgress+magnitude)
			if p.GrowthProgress+growthEps >= 100 {
				p.GrowthProgress = 100
				p.HarvestReady = true
			}
		}
	case PestIncrease:
		p.PestPressure = math.Min(PestCap, p.PestPressure+magnitude*protection)
	case PestDecrease:
		p.PestPressure = math.Max(0, p.PestPressure-magnitude)
	}
}

// ResetDailyFlags clears the once-per-day action flags.
func (p *Plot) ResetDailyFlags() {
	p.Irrigated = false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
