// Package farm owns the per-plot state machine and the technology effect
// resolver that modifies it.
package farm

import "github.com/talgya/farm-world/internal/catalog"

// TechSet resolves named effects over the set of researched technologies.
// It wraps the game's mutable technology copies, so flipping a Researched
// flag is immediately visible to every plot.
type TechSet struct {
	defs []*catalog.Technology
}

// NewTechSet wraps a game's technology list.
func NewTechSet(defs []*catalog.Technology) *TechSet {
	return &TechSet{defs: defs}
}

// Defs returns the wrapped technology list.
func (ts *TechSet) Defs() []*catalog.Technology {
	return ts.defs
}

// Researched returns the ids of all researched technologies.
func (ts *TechSet) Researched() []string {
	var ids []string
	for _, t := range ts.defs {
		if t.Researched {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// IsResearched reports whether the technology with the given id is researched.
func (ts *TechSet) IsResearched(id string) bool {
	for _, t := range ts.defs {
		if t.ID == id {
			return t.Researched
		}
	}
	return false
}

// Effect combines the named numeric effect across all researched
// technologies. Multiplicative contributions fold into the default first;
// additive bonuses are summed on top. Unknown effects return the default.
// The result is floored at zero.
func (ts *TechSet) Effect(name string, def float64) float64 {
	result := def
	bonus := 0.0
	for _, t := range ts.defs {
		if !t.Researched {
			continue
		}
		eff, ok := t.Effects[name]
		if !ok {
			continue
		}
		switch eff.Kind {
		case catalog.Multiplicative:
			result *= eff.Value
		case catalog.AdditiveBonus:
			bonus += eff.Value
		}
	}
	result += bonus
	if result < 0 {
		return 0
	}
	return result
}

// Flag ORs the named boolean effect across researched technologies.
func (ts *TechSet) Flag(name string) bool {
	for _, t := range ts.defs {
		if !t.Researched {
			continue
		}
		if eff, ok := t.Effects[name]; ok && eff.Kind == catalog.BooleanFlag && eff.Flag {
			return true
		}
	}
	return false
}
