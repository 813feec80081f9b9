package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileCatalog is the on-disk override format. Both sections are optional;
// an omitted section falls back to the built-in defaults.
type fileCatalog struct {
	Crops        []*Crop       `yaml:"crops"`
	Technologies []*Technology `yaml:"technologies"`
}

// Load reads a YAML catalog override from path. Crops listed without the
// sentinel get it prepended. An empty path returns the defaults.
func Load(path string) (*CropCatalog, []*Technology, error) {
	if path == "" {
		return DefaultCrops(), DefaultTechnologies(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}

	var fc fileCatalog
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, nil, fmt.Errorf("catalog yaml: %w", err)
	}

	crops := DefaultCrops()
	if len(fc.Crops) > 0 {
		crops = NewCropCatalog(fc.Crops)
	}

	techs := DefaultTechnologies()
	if len(fc.Technologies) > 0 {
		techs = fc.Technologies
		for _, t := range techs {
			if t.Effects == nil {
				t.Effects = map[string]Effect{}
			}
		}
	}

	if err := validate(crops, techs); err != nil {
		return nil, nil, err
	}
	return crops, techs, nil
}

// validate checks cross-references inside a loaded catalog.
func validate(crops *CropCatalog, techs []*Technology) error {
	seen := make(map[string]bool, len(techs))
	for _, t := range techs {
		if t.ID == "" {
			return fmt.Errorf("technology with empty id")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate technology id %q", t.ID)
		}
		seen[t.ID] = true
	}
	for _, t := range techs {
		for _, pre := range t.Prerequisites {
			if !seen[pre] {
				return fmt.Errorf("technology %q requires unknown prerequisite %q", t.ID, pre)
			}
		}
	}
	for _, c := range crops.Plantable() {
		if c.GrowthTime <= 0 {
			return fmt.Errorf("crop %q has non-positive growth time", c.ID)
		}
	}
	return nil
}
