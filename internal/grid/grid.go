// Package grid builds the farm's plot grid. Generated farms get mild
// soil and moisture heterogeneity from smooth noise so neighboring plots
// feel like the same field; uniform grids are for tests and benchmarks.
package grid

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/farm"
)

// Noise tuning: low frequency gives broad fertility bands across the field
// rather than per-plot speckle.
const (
	noiseFrequency = 0.18
	soilBase       = 70.0
	soilSpread     = 25.0 // soil in [70, 95]
	waterBase      = 40.0
	waterSpread    = 20.0 // water in [40, 60]
)

// Generate builds a rows x cols grid with noise-derived initial soil and
// moisture. Deterministic for a given seed.
func Generate(rows, cols int, seed int64, empty *catalog.Crop) [][]*farm.Plot {
	soilNoise := opensimplex.NewNormalized(seed)
	waterNoise := opensimplex.NewNormalized(seed + 1)

	plots := make([][]*farm.Plot, rows)
	for r := 0; r < rows; r++ {
		plots[r] = make([]*farm.Plot, cols)
		for c := 0; c < cols; c++ {
			p := farm.NewPlot(empty)
			p.SoilHealth = soilBase + soilSpread*soilNoise.Eval2(float64(r)*noiseFrequency, float64(c)*noiseFrequency)
			p.WaterLevel = waterBase + waterSpread*waterNoise.Eval2(float64(r)*noiseFrequency, float64(c)*noiseFrequency)
			plots[r][c] = p
		}
	}
	return plots
}

// Uniform builds a rows x cols grid of identical fresh plots.
func Uniform(rows, cols int, empty *catalog.Crop) [][]*farm.Plot {
	plots := make([][]*farm.Plot, rows)
	for r := 0; r < rows; r++ {
		plots[r] = make([]*farm.Plot, cols)
		for c := 0; c < cols; c++ {
			plots[r][c] = farm.NewPlot(empty)
		}
	}
	return plots
}
