// Package catalog holds the immutable reference data for the simulation:
// crop definitions and technology definitions. Catalogs are injected into
// the engine at construction, never read through package globals.
package catalog

// EmptyCropID is the sentinel id for a fallow plot.
const EmptyCropID = "empty"

// Crop describes one plantable crop. All fields are per-day or per-cycle
// tuning values; the sentinel crop has every field zero.
type Crop struct {
	ID               string  `yaml:"id" json:"id"`
	Name             string  `yaml:"name" json:"name"`
	WaterUse         float64 `yaml:"water_use" json:"water_use"`                 // water units consumed per day
	GrowthTime       int     `yaml:"growth_time" json:"growth_time"`             // days to 100% progress
	HarvestValue     float64 `yaml:"harvest_value" json:"harvest_value"`         // base income at 100% yield
	BasePrice        float64 `yaml:"base_price" json:"base_price"`               // seed price, drives planting cost
	SoilImpact       float64 `yaml:"soil_impact" json:"soil_impact"`             // negative depletes, positive restores
	FertilizerNeed   float64 `yaml:"fertilizer_need" json:"fertilizer_need"`
	WaterSensitivity float64 `yaml:"water_sensitivity" json:"water_sensitivity"` // exponent on the water factor
	HeatSensitivity  float64 `yaml:"heat_sensitivity" json:"heat_sensitivity"`
}

// IsEmpty reports whether this is the fallow sentinel.
func (c *Crop) IsEmpty() bool {
	return c == nil || c.ID == EmptyCropID
}

// CropCatalog is an ordered, immutable set of crop definitions.
// The empty sentinel is always at index 0.
type CropCatalog struct {
	crops []*Crop
	byID  map[string]*Crop
}

// NewCropCatalog builds a catalog from definitions. The sentinel is
// prepended if the caller did not include it.
func NewCropCatalog(crops []*Crop) *CropCatalog {
	all := crops
	if len(all) == 0 || all[0].ID != EmptyCropID {
		all = append([]*Crop{{ID: EmptyCropID, Name: "Empty"}}, all...)
	}
	byID := make(map[string]*Crop, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	return &CropCatalog{crops: all, byID: byID}
}

// Get returns the crop with the given id, or nil.
func (cc *CropCatalog) Get(id string) *Crop {
	return cc.byID[id]
}

// Empty returns the fallow sentinel.
func (cc *CropCatalog) Empty() *Crop {
	return cc.crops[0]
}

// All returns the ordered crop list, sentinel first.
func (cc *CropCatalog) All() []*Crop {
	return cc.crops
}

// Plantable returns every crop except the sentinel.
func (cc *CropCatalog) Plantable() []*Crop {
	return cc.crops[1:]
}

// DefaultCrops returns the built-in crop set.
func DefaultCrops() *CropCatalog {
	return NewCropCatalog([]*Crop{
		{ID: "wheat", Name: "Wheat", WaterUse: 1.2, GrowthTime: 70, HarvestValue: 110, BasePrice: 75, SoilImpact: -1.5, FertilizerNeed: 0.8, WaterSensitivity: 0.8, HeatSensitivity: 0.6},
		{ID: "corn", Name: "Corn", WaterUse: 2.0, GrowthTime: 80, HarvestValue: 160, BasePrice: 95, SoilImpact: -2.5, FertilizerNeed: 1.2, WaterSensitivity: 1.1, HeatSensitivity: 0.8},
		{ID: "potato", Name: "Potato", WaterUse: 1.5, GrowthTime: 55, HarvestValue: 90, BasePrice: 60, SoilImpact: -1.8, FertilizerNeed: 1.0, WaterSensitivity: 0.9, HeatSensitivity: 0.5},
		{ID: "tomato", Name: "Tomato", WaterUse: 2.4, GrowthTime: 65, HarvestValue: 150, BasePrice: 85, SoilImpact: -1.2, FertilizerNeed: 1.4, WaterSensitivity: 1.3, HeatSensitivity: 1.2},
		{ID: "soybean", Name: "Soybean", WaterUse: 1.0, GrowthTime: 60, HarvestValue: 85, BasePrice: 55, SoilImpact: 0.8, FertilizerNeed: 0.4, WaterSensitivity: 0.7, HeatSensitivity: 0.7},
		{ID: "cotton", Name: "Cotton", WaterUse: 2.8, GrowthTime: 95, HarvestValue: 210, BasePrice: 120, SoilImpact: -3.0, FertilizerNeed: 1.5, WaterSensitivity: 1.2, HeatSensitivity: 0.9},
	})
}
