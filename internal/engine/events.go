package engine

import (
	"fmt"
	"log/slog"
)

// Event scheduling tuning.
const (
	eventGenerationChance = 0.18
	dedupWindowDays       = 5
	maxEventHorizon       = 360
	weatherEndCooldown    = 15
)

// EventType identifies a scheduled occurrence.
type EventType string

const (
	EventRain       EventType = "rain"
	EventDrought    EventType = "drought"
	EventHeatwave   EventType = "heatwave"
	EventFrost      EventType = "frost"
	EventMarket     EventType = "market"
	EventPolicy     EventType = "policy"
	EventTechnology EventType = "technology"
)

// EventPhase tracks a pending event through its lifecycle. Multi-day events
// move Scheduled -> Active -> Ended via a pure transition in processEvents;
// single-day events jump straight to Ended.
type EventPhase int

const (
	PhaseScheduled EventPhase = iota
	PhaseActive
	PhaseEnded
)

// PendingEvent is one scheduled weather/market/policy/technology occurrence.
type PendingEvent struct {
	Type     EventType  `json:"type"`
	Day      int        `json:"day"` // absolute simulated day
	Duration int        `json:"duration,omitempty"`
	Severity float64    `json:"severity,omitempty"`
	Message  string     `json:"message"`
	IsAlert  bool       `json:"is_alert"`
	Phase    EventPhase `json:"phase"`

	// Market payload.
	CropID        string  `json:"crop_id,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`

	// Policy / technology payload.
	PolicyType string  `json:"policy_type,omitempty"`
	BaseCost   float64 `json:"base_cost,omitempty"`
}

// applyResult is returned by the per-event apply functions. Continue means
// the event stays active and is re-enqueued for tomorrow with NextDuration.
type applyResult struct {
	Continue     bool
	NextDuration int
}

// scheduleEvent queues an event, enforcing the dedup window and the horizon
// clamp. Returns false when the event was discarded as a duplicate.
func (g *Game) scheduleEvent(ev *PendingEvent) bool {
	if ev == nil {
		return false
	}

	// Days scheduled more than a year out are remapped near the present.
	if ev.Day > g.day+maxEventHorizon {
		ev.Day = g.day + 1 + g.rng.IntN(5)
	}
	if ev.Day <= g.day {
		ev.Day = g.day + 1
	}

	// Drop the event if the same type is already pending within +-5 days.
	for _, existing := range g.pending {
		if existing.Type == ev.Type && abs(existing.Day-ev.Day) <= dedupWindowDays {
			slog.Debug("event discarded as duplicate", "type", ev.Type, "day", ev.Day)
			return false
		}
	}

	ev.Phase = PhaseScheduled
	g.pending = append(g.pending, ev)

	// Weather gets a forecast the moment it is scheduled.
	switch ev.Type {
	case EventRain, EventDrought, EventHeatwave, EventFrost:
		g.notify("forecast", fmt.Sprintf("Forecast: %s expected around day %d", ev.Type, ev.Day), ev.IsAlert)
	}
	return true
}

// processEvents applies every pending event due today, in queue order.
// Failures are isolated per event; a malformed event is logged and skipped
// without aborting the tick.
func (g *Game) processEvents() {
	var due []*PendingEvent
	var rest []*PendingEvent
	for _, ev := range g.pending {
		if ev.Day == g.day {
			due = append(due, ev)
		} else {
			rest = append(rest, ev)
		}
	}
	g.pending = rest

	for _, ev := range due {
		res := g.applyEventSafe(ev)
		if res.Continue {
			next := *ev
			next.Day = g.day + 1
			next.Duration = res.NextDuration
			next.Phase = PhaseActive
			g.pending = append(g.pending, &next)
			continue
		}

		ev.Phase = PhaseEnded
		switch ev.Type {
		case EventDrought:
			g.droughtEndedDay = g.day
			g.notify("weather", "The drought has ended", false)
		case EventHeatwave:
			g.heatwaveEndedDay = g.day
			g.notify("weather", "The heatwave has broken", false)
		}
	}
}

// applyEventSafe applies one event inside a panic boundary so a bad event
// record cannot take down the tick.
func (g *Game) applyEventSafe(ev *PendingEvent) (res applyResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event application failed", "type", ev.Type, "day", ev.Day, "panic", r)
			res = applyResult{}
		}
	}()
	return g.applyEvent(ev)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
