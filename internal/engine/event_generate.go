package engine

import "fmt"

// generateRandomEvent makes one weighted draw across all event categories
// and schedules whatever comes up. Weights are normalized into a cumulative
// distribution so a single uniform sample picks the category.
func (g *Game) generateRandomEvent() {
	type candidate struct {
		weight float64
		gen    func() *PendingEvent
	}

	droughtWeight := g.climate.DroughtProbability * 30
	if g.droughtEndedDay >= 0 && g.day-g.droughtEndedDay < weatherEndCooldown {
		droughtWeight = 0
	}
	heatwaveWeight := g.climate.HeatwaveProbability * 30
	if g.heatwaveEndedDay >= 0 && g.day-g.heatwaveEndedDay < weatherEndCooldown {
		heatwaveWeight = 0
	}

	candidates := []candidate{
		{14, g.newRainEvent},
		{droughtWeight, g.newDroughtEvent},
		{heatwaveWeight, g.newHeatwaveEvent},
		{8, g.newFrostEvent},
		{18, g.newMarketEvent},
		{12, g.newPolicyEvent},
		{10, g.newTechnologyEvent},
	}

	total := 0.0
	for _, c := range candidates {
		total += c.weight
	}
	if total <= 0 {
		return
	}

	roll := g.rng.Float() * total
	cum := 0.0
	for _, c := range candidates {
		cum += c.weight
		if roll < cum {
			g.scheduleEvent(c.gen())
			return
		}
	}
}

func (g *Game) newRainEvent() *PendingEvent {
	severity := 0.8 + g.rng.Float()*1.2
	return &PendingEvent{
		Type:     EventRain,
		Day:      g.day + 5 + g.rng.IntN(16), // 5-20 days out
		Severity: severity,
		Message:  "Heavy rains sweep across the farm",
	}
}

func (g *Game) newDroughtEvent() *PendingEvent {
	return &PendingEvent{
		Type:     EventDrought,
		Day:      g.day + 10 + g.rng.IntN(21), // 10-30 days out
		Duration: 4 + g.rng.IntN(5),
		Severity: 1 + g.rng.Float(),
		Message:  "A drought settles over the region",
		IsAlert:  true,
	}
}

func (g *Game) newHeatwaveEvent() *PendingEvent {
	return &PendingEvent{
		Type:     EventHeatwave,
		Day:      g.day + 10 + g.rng.IntN(21),
		Duration: 3 + g.rng.IntN(4),
		Severity: 1 + g.rng.Float(),
		Message:  "A heatwave bears down on the fields",
		IsAlert:  true,
	}
}

func (g *Game) newFrostEvent() *PendingEvent {
	return &PendingEvent{
		Type:     EventFrost,
		Day:      g.day + 5 + g.rng.IntN(16),
		Severity: 0.8 + g.rng.Float(),
		Message:  "An overnight frost hits the crops",
		IsAlert:  true,
	}
}

// newMarketEvent moves one crop's price. A small share are "opportunity"
// spikes that may push the factor up to the opportunity ceiling.
func (g *Game) newMarketEvent() *PendingEvent {
	plantable := g.crops.Plantable()
	if len(plantable) == 0 {
		return nil
	}
	crop := plantable[g.rng.IntN(len(plantable))]

	if g.rng.Float() < 0.15 {
		change := 40 + g.rng.Float()*60
		return &PendingEvent{
			Type:          EventMarket,
			Day:           g.day + 5 + g.rng.IntN(11), // 5-15 days out
			CropID:        crop.ID,
			ChangePercent: change,
			PolicyType:    "opportunity",
			Message:       fmt.Sprintf("Export opportunity: %s demand surges", crop.Name),
			IsAlert:       true,
		}
	}

	change := 10 + g.rng.Float()*30
	if g.rng.Float() < 0.5 {
		change = -change
	}
	direction := "rises"
	if change < 0 {
		direction = "falls"
	}
	return &PendingEvent{
		Type:          EventMarket,
		Day:           g.day + 5 + g.rng.IntN(11),
		CropID:        crop.ID,
		ChangePercent: change,
		Message:       fmt.Sprintf("Market shift: %s price %s", crop.Name, direction),
	}
}

func (g *Game) newPolicyEvent() *PendingEvent {
	policies := []struct {
		kind     string
		baseCost float64
		message  string
		alert    bool
	}{
		{"water_restriction", 120, "New water restrictions announced", true},
		{"environmental_fine", 200, "Environmental inspection finds violations", true},
		{"green_subsidy", -200, "A green farming grant is announced", false},
	}
	p := policies[g.rng.IntN(len(policies))]
	return &PendingEvent{
		Type:       EventPolicy,
		Day:        g.day + 10 + g.rng.IntN(16), // 10-25 days out
		PolicyType: p.kind,
		BaseCost:   p.baseCost,
		Message:    p.message,
		IsAlert:    p.alert,
	}
}

func (g *Game) newTechnologyEvent() *PendingEvent {
	if g.rng.Float() < 0.5 {
		return &PendingEvent{
			Type:       EventTechnology,
			Day:        g.day + 15 + g.rng.IntN(16), // 15-30 days out
			PolicyType: "equipment_failure",
			BaseCost:   150,
			Message:    "Farm equipment breaks down",
			IsAlert:    true,
		}
	}
	return &PendingEvent{
		Type:       EventTechnology,
		Day:        g.day + 15 + g.rng.IntN(16),
		PolicyType: "breakthrough",
		Message:    "A research breakthrough cuts technology costs",
	}
}
