package catalog

// Technology describes one researchable upgrade. The catalog entries are
// templates; each game instance works on a deep copy so the Researched flag
// never leaks between games.
type Technology struct {
	ID            string            `yaml:"id" json:"id"`
	Name          string            `yaml:"name" json:"name"`
	Cost          float64           `yaml:"cost" json:"cost"`
	Prerequisites []string          `yaml:"prerequisites" json:"prerequisites"`
	Effects       map[string]Effect `yaml:"effects" json:"effects"`
	Researched    bool              `yaml:"-" json:"researched"`
}

// Clone returns an independent copy of the definition.
func (t *Technology) Clone() *Technology {
	cp := *t
	cp.Prerequisites = append([]string(nil), t.Prerequisites...)
	cp.Effects = make(map[string]Effect, len(t.Effects))
	for name, eff := range t.Effects {
		cp.Effects[name] = eff
	}
	return &cp
}

// CloneTechnologies deep-copies a technology list for one game instance.
func CloneTechnologies(techs []*Technology) []*Technology {
	out := make([]*Technology, len(techs))
	for i, t := range techs {
		out[i] = t.Clone()
	}
	return out
}

// SustainabilityPoints maps technology ids to their weight in the tech
// sub-score. Two flagship techs at 20, four mid-value at 15, the rest at 10.
var SustainabilityPoints = map[string]int{
	"silvopasture":         20,
	"precision_ai":         20,
	"no_till":              15,
	"drought_seeds":        15,
	"cover_crops":          15,
	"ipm":                  15,
	"drip_irrigation":      10,
	"soil_sensors":         10,
	"fertilizer_optimizer": 10,
	"greenhouse":           10,
}

// TotalSustainabilityPoints is the denominator of the tech sub-score.
func TotalSustainabilityPoints() int {
	total := 0
	for _, pts := range SustainabilityPoints {
		total += pts
	}
	return total
}

// DefaultTechnologies returns the built-in technology tree.
func DefaultTechnologies() []*Technology {
	return []*Technology{
		{
			ID: "drip_irrigation", Name: "Drip Irrigation", Cost: 300,
			Effects: map[string]Effect{
				"waterEfficiency": {Kind: Multiplicative, Value: 1.5},
			},
		},
		{
			ID: "soil_sensors", Name: "Soil Moisture Sensors", Cost: 250,
			Effects: map[string]Effect{
				"waterEfficiency": {Kind: Multiplicative, Value: 1.1},
				"sensorInfo":      {Kind: BooleanFlag, Flag: true},
			},
		},
		{
			ID: "drought_seeds", Name: "Drought-Resistant Seeds", Cost: 400,
			Prerequisites: []string{"soil_sensors"},
			Effects: map[string]Effect{
				"droughtResistance": {Kind: Multiplicative, Value: 1.4},
			},
		},
		{
			ID: "no_till", Name: "No-Till Farming", Cost: 350,
			Effects: map[string]Effect{
				"tillageReduction": {Kind: Multiplicative, Value: 0.6},
				"soilRegen":        {Kind: AdditiveBonus, Value: 0.05},
			},
		},
		{
			ID: "precision_ai", Name: "Precision Agriculture AI", Cost: 800,
			Prerequisites: []string{"drip_irrigation", "soil_sensors"},
			Effects: map[string]Effect{
				"waterReduction": {Kind: Multiplicative, Value: 0.7},
				"growthBoost":    {Kind: AdditiveBonus, Value: 0.05},
			},
		},
		{
			ID: "fertilizer_optimizer", Name: "Fertilizer Optimizer", Cost: 450,
			Effects: map[string]Effect{
				"fertilizerEfficiency": {Kind: Multiplicative, Value: 1.4},
			},
		},
		{
			ID: "silvopasture", Name: "Silvopasture", Cost: 600,
			Prerequisites: []string{"no_till"},
			Effects: map[string]Effect{
				"soilRegen":      {Kind: AdditiveBonus, Value: 0.08},
				"heatProtection": {Kind: Multiplicative, Value: 0.8},
			},
		},
		{
			ID: "cover_crops", Name: "Cover Crops", Cost: 200,
			Effects: map[string]Effect{
				"soilRegen":     {Kind: AdditiveBonus, Value: 0.04},
				"pestReduction": {Kind: Multiplicative, Value: 0.85},
			},
		},
		{
			ID: "ipm", Name: "Integrated Pest Management", Cost: 500,
			Prerequisites: []string{"cover_crops"},
			Effects: map[string]Effect{
				"pestReduction": {Kind: Multiplicative, Value: 0.7},
			},
		},
		{
			ID: "greenhouse", Name: "Greenhouse Rows", Cost: 1000,
			Effects: map[string]Effect{
				"frostProtection": {Kind: Multiplicative, Value: 0.5},
				"heatProtection":  {Kind: Multiplicative, Value: 0.7},
			},
		},
	}
}
