package grid

import (
	"testing"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/farm"
)

func TestGenerateDeterministicAndBounded(t *testing.T) {
	empty := catalog.DefaultCrops().Empty()

	a := Generate(10, 10, 42, empty)
	b := Generate(10, 10, 42, empty)

	for r := range a {
		for c := range a[r] {
			p := a[r][c]
			if p.SoilHealth != b[r][c].SoilHealth || p.WaterLevel != b[r][c].WaterLevel {
				t.Fatalf("same seed produced different plots at (%d,%d)", r, c)
			}
			if p.SoilHealth < farm.SoilFloor || p.SoilHealth > farm.SoilCap {
				t.Fatalf("soil %v out of range at (%d,%d)", p.SoilHealth, r, c)
			}
			if p.WaterLevel < 0 || p.WaterLevel > farm.WaterCap {
				t.Fatalf("water %v out of range at (%d,%d)", p.WaterLevel, r, c)
			}
			if !p.Empty() {
				t.Fatalf("generated plot not fallow at (%d,%d)", r, c)
			}
		}
	}

	c := Generate(10, 10, 7, empty)
	same := true
	for r := range a {
		for col := range a[r] {
			if a[r][col].SoilHealth != c[r][col].SoilHealth {
				same = false
			}
		}
	}
	if same {
		t.Fatal("different seeds produced identical grids")
	}
}

func TestUniformGrid(t *testing.T) {
	empty := catalog.DefaultCrops().Empty()
	g := Uniform(3, 4, empty)
	if len(g) != 3 || len(g[0]) != 4 {
		t.Fatalf("grid dims = %dx%d", len(g), len(g[0]))
	}
	for _, row := range g {
		for _, p := range row {
			if p.SoilHealth != 100 || p.WaterLevel != 50 {
				t.Fatalf("uniform plot not fresh: %+v", p)
			}
		}
	}
}
