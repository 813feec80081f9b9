package farm

import (
	"math"
	"testing"

	"github.com/talgya/farm-world/internal/catalog"
	"github.com/talgya/farm-world/internal/entropy"
)

func testCatalog() *catalog.CropCatalog {
	return catalog.DefaultCrops()
}

func noTechs() *TechSet {
	return NewTechSet(catalog.DefaultTechnologies())
}

func researched(t *testing.T, ids ...string) *TechSet {
	t.Helper()
	defs := catalog.CloneTechnologies(catalog.DefaultTechnologies())
	for _, id := range ids {
		found := false
		for _, d := range defs {
			if d.ID == id {
				d.Researched = true
				found = true
			}
		}
		if !found {
			t.Fatalf("unknown tech %q", id)
		}
	}
	return NewTechSet(defs)
}

func TestPlantRejectsSentinel(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	if p.Plant(cc.Empty()) {
		t.Fatal("planted the empty sentinel")
	}
	if !p.Plant(cc.Get("wheat")) {
		t.Fatal("failed to plant wheat on a fallow plot")
	}
	if p.Plant(cc.Get("corn")) {
		t.Fatal("planted over an occupied plot")
	}
}

func TestIrrigateOncePerDay(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.Plant(cc.Get("wheat"))
	p.WaterLevel = 40

	if !p.Irrigate(1.0) {
		t.Fatal("first irrigation refused")
	}
	if p.WaterLevel != 70 {
		t.Fatalf("water after irrigation = %v, want 70", p.WaterLevel)
	}
	if p.Irrigate(1.0) {
		t.Fatal("second irrigation on the same day accepted")
	}
	if p.WaterLevel != 70 {
		t.Fatalf("water changed by refused irrigation: %v", p.WaterLevel)
	}

	p.ResetDailyFlags()
	if !p.Irrigate(1.0) {
		t.Fatal("irrigation refused on a new day")
	}
	if p.WaterLevel != 100 {
		t.Fatalf("water should cap at 100, got %v", p.WaterLevel)
	}
}

func TestIrrigateEmptyPlotNoOp(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	if p.Irrigate(1.0) {
		t.Fatal("irrigated an empty plot")
	}
}

func TestFertilizeOncePerCycle(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.Plant(cc.Get("corn"))
	p.SoilHealth = 80
	p.ExpectedYield = 100
	p.PestPressure = 0

	if !p.Fertilize(1.0) {
		t.Fatal("first fertilization refused")
	}
	// soilFactor = 0.5 + 80/200 = 0.9
	if math.Abs(p.SoilHealth-89) > 1e-9 {
		t.Fatalf("soil after fertilizing = %v, want 89", p.SoilHealth)
	}
	if math.Abs(p.ExpectedYield-113.5) > 1e-9 {
		t.Fatalf("yield after fertilizing = %v, want 113.5", p.ExpectedYield)
	}
	if p.Fertilize(1.0) {
		t.Fatal("second fertilization in the same cycle accepted")
	}
}

// Scenario: a crop with basePrice 75 and growthTime 90 on fresh ground
// reaches maturity after exactly 90 daily updates with an 80% reserve and
// nothing researched.
func TestGrowthReachesMaturityOnSchedule(t *testing.T) {
	cc := catalog.NewCropCatalog([]*catalog.Crop{
		{ID: "test", Name: "Test", GrowthTime: 90, HarvestValue: 100, BasePrice: 75},
	})
	p := NewPlot(cc.Empty())
	if !p.Plant(cc.Get("test")) {
		t.Fatal("plant failed")
	}

	techs := noTechs()
	rng := entropy.NewSeeded(1)
	for day := 0; day < 90; day++ {
		if p.HarvestReady {
			t.Fatalf("ready early on day %d", day)
		}
		p.Update(80, techs, rng)
		p.ResetDailyFlags()
	}

	if p.GrowthProgress < 100-1e-6 {
		t.Fatalf("progress after 90 days = %v, want 100", p.GrowthProgress)
	}
	if !p.HarvestReady {
		t.Fatal("plot not harvest-ready after full growth time")
	}
}

// Scenario: replanting the same crop three times in a row after the initial
// cycle drives consecutivePlantings to 3 and pest pressure up by
// 15*1 + 15*2 + 15*3, saturating at the cap.
func TestMonocroppingRaisesPestPressure(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	wheat := cc.Get("wheat")

	forceCycle := func() {
		p.GrowthProgress = 100
		p.HarvestReady = true
		p.Harvest(1.0, cc.Empty())
	}

	p.Plant(wheat)
	forceCycle()

	wantPest := []float64{15, 45, 80} // +15, +30, then +45 capped at 80
	for i, want := range wantPest {
		if !p.Plant(wheat) {
			t.Fatalf("replant %d failed", i+1)
		}
		if p.ConsecutivePlantings != i+1 {
			t.Fatalf("consecutivePlantings = %d after replant %d, want %d", p.ConsecutivePlantings, i+1, i+1)
		}
		if p.PestPressure != want {
			t.Fatalf("pest pressure = %v after replant %d, want %v", p.PestPressure, i+1, want)
		}
		forceCycle()
	}
}

func TestRotationReducesPestPressure(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.Plant(cc.Get("wheat"))
	p.GrowthProgress = 100
	p.HarvestReady = true
	p.Harvest(1.0, cc.Empty())
	p.PestPressure = 60

	p.Plant(cc.Get("soybean"))
	if p.PestPressure != 20 {
		t.Fatalf("pest pressure after rotation = %v, want 20", p.PestPressure)
	}
	if p.ConsecutivePlantings != 0 {
		t.Fatalf("consecutivePlantings = %d after rotation, want 0", p.ConsecutivePlantings)
	}
}

func TestCropHistoryBounded(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	crops := []string{"wheat", "corn", "potato", "tomato", "soybean", "cotton"}
	for i := 0; i < 24; i++ {
		p.Plant(cc.Get(crops[i%len(crops)]))
		p.GrowthProgress = 100
		p.HarvestReady = true
		p.Harvest(1.0, cc.Empty())
	}
	if len(p.CropHistory) != 10 {
		t.Fatalf("history length = %d, want 10", len(p.CropHistory))
	}
	// Oldest entries dropped: the newest entry is the second-to-last plant.
	last := p.CropHistory[len(p.CropHistory)-1]
	if last.CropID != crops[22%len(crops)] {
		t.Fatalf("newest history entry = %s", last.CropID)
	}
}

func TestHarvestRoundTrip(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	wheat := cc.Get("wheat")
	p.Plant(wheat)
	p.GrowthProgress = 100
	p.HarvestReady = true
	p.ExpectedYield = 110
	p.Fertilized = true
	p.Irrigated = true
	p.PestPressure = 12
	soilBefore := p.SoilHealth

	res := p.Harvest(1.25, cc.Empty())
	if !res.Success {
		t.Fatal("harvest on ready plot failed")
	}
	// round(110 * 110/100 * 1.25) = round(151.25) = 151
	want := math.Round(wheat.HarvestValue * 110 / 100 * 1.25)
	if res.Income != want {
		t.Fatalf("income = %v, want %v", res.Income, want)
	}
	if res.CropName != "Wheat" || res.YieldPercentage != 110 {
		t.Fatalf("result = %+v", res)
	}

	if !p.Empty() || p.GrowthProgress != 0 || p.HarvestReady || p.Fertilized || p.Irrigated {
		t.Fatalf("plot not reset after harvest: %+v", p)
	}
	if p.ExpectedYield != 0 || p.DaysSincePlanting != 0 {
		t.Fatalf("per-cycle fields survived harvest: %+v", p)
	}
	if p.PestPressure != 12 {
		t.Fatalf("pest pressure changed by reset: %v", p.PestPressure)
	}
	// Post-harvest soil penalty: (4 + 1.5) * 1.0
	if math.Abs((soilBefore-p.SoilHealth)-5.5) > 1e-9 {
		t.Fatalf("soil penalty = %v, want 5.5", soilBefore-p.SoilHealth)
	}
}

func TestHarvestNotReady(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	if res := p.Harvest(1.0, cc.Empty()); res.Success {
		t.Fatal("harvested an empty plot")
	}
	p.Plant(cc.Get("wheat"))
	if res := p.Harvest(1.0, cc.Empty()); res.Success {
		t.Fatal("harvested an unready plot")
	}
}

func TestYieldClampAtHarvest(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.Plant(cc.Get("wheat"))
	p.GrowthProgress = 100
	p.HarvestReady = true
	p.ExpectedYield = 149

	// Yield is clamped to [0, 150] at harvest even if state drifted above.
	p.ExpectedYield = 200
	res := p.Harvest(1.0, cc.Empty())
	if res.YieldPercentage != 150 {
		t.Fatalf("yield = %v, want clamp at 150", res.YieldPercentage)
	}
}

func TestInvariantsUnderStress(t *testing.T) {
	cc := testCatalog()
	techs := noTechs()
	rng := entropy.NewSeeded(7)

	p := NewPlot(cc.Empty())
	p.SoilHealth = 15
	p.WaterLevel = 2
	p.Plant(cc.Get("cotton"))

	for day := 0; day < 400; day++ {
		p.Update(5, techs, rng)
		p.ResetDailyFlags()
		if p.SoilHealth < SoilFloor || p.SoilHealth > SoilCap {
			t.Fatalf("day %d: soil %v out of range", day, p.SoilHealth)
		}
		if p.WaterLevel < 0 || p.WaterLevel > WaterCap {
			t.Fatalf("day %d: water %v out of range", day, p.WaterLevel)
		}
		if p.GrowthProgress < 0 || p.GrowthProgress > 100 {
			t.Fatalf("day %d: growth %v out of range", day, p.GrowthProgress)
		}
		if p.PestPressure < 0 || p.PestPressure > PestCap {
			t.Fatalf("day %d: pests %v out of range", day, p.PestPressure)
		}
	}
}

func TestHarvestReadyYieldDecay(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.Plant(cc.Get("wheat"))
	p.GrowthProgress = 100
	p.HarvestReady = true
	p.ExpectedYield = 100
	p.WaterLevel = 90

	p.Update(80, noTechs(), entropy.NewSeeded(1))
	if p.ExpectedYield >= 100 {
		t.Fatalf("yield did not decay while unharvested: %v", p.ExpectedYield)
	}
	if p.GrowthProgress != 100 {
		t.Fatalf("growth moved past maturity: %v", p.GrowthProgress)
	}
}

func TestFallowSoilRegeneration(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.SoilHealth = 60
	p.WaterLevel = 50
	p.PestPressure = 10

	p.Update(50, noTechs(), entropy.NewSeeded(1))
	if p.SoilHealth <= 60 {
		t.Fatalf("fallow soil did not regenerate: %v", p.SoilHealth)
	}
	if p.PestPressure >= 10 {
		t.Fatalf("fallow pests did not decay: %v", p.PestPressure)
	}

	// Parched fallow ground degrades instead.
	p.WaterLevel = 5
	soil := p.SoilHealth
	p.Update(50, noTechs(), entropy.NewSeeded(1))
	if p.SoilHealth >= soil {
		t.Fatalf("parched fallow soil regenerated: %v", p.SoilHealth)
	}
}

func TestEnvironmentalEffectProtection(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.Plant(cc.Get("wheat"))
	p.WaterLevel = 50
	p.ExpectedYield = 100

	// Adverse effects scale with protection.
	p.ApplyEnvironmentalEffect(WaterDecrease, 20, 0.5)
	if p.WaterLevel != 40 {
		t.Fatalf("protected water loss = %v, want 10", 50-p.WaterLevel)
	}
	p.ApplyEnvironmentalEffect(YieldDamage, 10, 0)
	if p.ExpectedYield != 100 {
		t.Fatalf("full protection still damaged yield: %v", p.ExpectedYield)
	}

	// Beneficial effects ignore protection.
	p.ApplyEnvironmentalEffect(WaterIncrease, 30, 0)
	if p.WaterLevel != 70 {
		t.Fatalf("rain attenuated by protection: %v", p.WaterLevel)
	}
	p.PestPressure = 50
	p.ApplyEnvironmentalEffect(PestDecrease, 20, 0)
	if p.PestPressure != 30 {
		t.Fatalf("pest relief attenuated by protection: %v", p.PestPressure)
	}
}

func TestGrowthBoostCanFinishCrop(t *testing.T) {
	cc := testCatalog()
	p := NewPlot(cc.Empty())
	p.Plant(cc.Get("wheat"))
	p.GrowthProgress = 95

	p.ApplyEnvironmentalEffect(GrowthBoost, 10, 1)
	if p.GrowthProgress != 100 || !p.HarvestReady {
		t.Fatalf("growth boost did not finish crop: %v ready=%v", p.GrowthProgress, p.HarvestReady)
	}
}

func TestDroughtResistanceSoftensStress(t *testing.T) {
	cc := testCatalog()
	rng := entropy.NewSeeded(3)

	run := func(techs *TechSet) float64 {
		p := NewPlot(cc.Empty())
		p.Plant(cc.Get("corn"))
		p.WaterLevel = 10
		for i := 0; i < 10; i++ {
			p.Update(10, techs, rng)
			p.ResetDailyFlags()
		}
		return p.ExpectedYield
	}

	plain := run(noTechs())
	adapted := run(researched(t, "soil_sensors", "drought_seeds"))
	if adapted <= plain {
		t.Fatalf("drought seeds did not soften stress: plain=%v adapted=%v", plain, adapted)
	}
}
