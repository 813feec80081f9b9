package engine

import (
	"math"

	"github.com/talgya/farm-world/internal/catalog"
)

// Sustainability is the composite 0-100 score and its sub-scores.
type Sustainability struct {
	Score          int     `json:"score"`
	SoilScore      float64 `json:"soil_score"`
	DiversityScore float64 `json:"diversity_score"`
	TechScore      float64 `json:"tech_score"`
}

// ComputeSustainability derives the current composite score:
// 0.4*soil + 0.3*diversity + 0.3*tech, rounded.
func (g *Game) ComputeSustainability() Sustainability {
	soil := g.averageSoilHealth()
	diversity := g.diversityScore()
	tech := g.techScore()

	return Sustainability{
		Score:          int(math.Round(0.4*soil + 0.3*diversity + 0.3*tech)),
		SoilScore:      soil,
		DiversityScore: diversity,
		TechScore:      tech,
	}
}

// Sustainability returns the score as of the last year boundary (or game
// start).
func (g *Game) Sustainability() Sustainability {
	return g.sustainability
}

func (g *Game) averageSoilHealth() float64 {
	total := 0.0
	count := 0
	for _, row := range g.grid {
		for _, p := range row {
			total += p.SoilHealth
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// diversityScore rewards spreading plantings across crops. A single crop
// holding more than half the planted plots is penalized, as is an
// accumulated monocropping streak.
func (g *Game) diversityScore() float64 {
	counts := map[string]int{}
	planted := 0
	monocropStreaks := 0
	for _, row := range g.grid {
		for _, p := range row {
			monocropStreaks += p.ConsecutivePlantings
			if p.Empty() {
				continue
			}
			counts[p.Crop.ID]++
			planted++
		}
	}
	if planted == 0 {
		return 0
	}

	score := 100 * float64(len(counts)) / float64(planted)

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if float64(maxCount)/float64(planted) > 0.5 {
		score -= 20
	}
	score -= 2 * float64(monocropStreaks)

	return clampf(score, 0, 100)
}

// techScore is researched sustainability points over the total possible.
func (g *Game) techScore() float64 {
	earned := 0
	for _, t := range g.techs {
		if t.Researched {
			earned += catalog.SustainabilityPoints[t.ID]
		}
	}
	total := catalog.TotalSustainabilityPoints()
	if total == 0 {
		return 0
	}
	return 100 * float64(earned) / float64(total)
}

// computeFarmHealth blends average soil health with the water reserve.
func (g *Game) computeFarmHealth() float64 {
	return 0.7*g.averageSoilHealth() + 0.3*g.waterReserve
}

// computeFarmValue totals cash, land quality, standing crops, and half of
// the capital sunk into research.
func (g *Game) computeFarmValue() float64 {
	value := g.balance
	for _, row := range g.grid {
		for _, p := range row {
			value += 50 * p.SoilHealth / 100
			if p.Empty() {
				continue
			}
			yield := clampf(p.ExpectedYield, 0, 150)
			value += p.Crop.HarvestValue * p.GrowthProgress / 100 * yield / 100 * g.MarketFactor(p.Crop.ID)
		}
	}
	for _, t := range g.techs {
		if t.Researched {
			value += t.Cost * 0.5
		}
	}
	return math.Round(value)
}
