package catalog

import "strings"

// EffectKind says how a technology effect combines with others of the same
// name when several researched technologies expose it.
type EffectKind int

const (
	// Multiplicative effects multiply into the running result.
	Multiplicative EffectKind = iota
	// AdditiveBonus effects are summed and applied after all multiplicative
	// contributions.
	AdditiveBonus
	// BooleanFlag effects combine by logical OR.
	BooleanFlag
)

func (k EffectKind) String() string {
	switch k {
	case Multiplicative:
		return "multiplicative"
	case AdditiveBonus:
		return "additive"
	case BooleanFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Effect is one named contribution from a technology. The kind is explicit
// at definition time; nothing in the engine infers it from the name.
type Effect struct {
	Kind  EffectKind `yaml:"kind" json:"kind"`
	Value float64    `yaml:"value" json:"value"`
	Flag  bool       `yaml:"flag" json:"flag"`
}

// InferEffectKind guesses a combination kind from the effect name's textual
// pattern. This is the legacy convention the explicit kinds replaced; it is
// retained only so tests can assert the shipped catalog agrees with it.
func InferEffectKind(name string, isFlag bool) EffectKind {
	if isFlag {
		return BooleanFlag
	}
	for _, suffix := range []string{"Efficiency", "Retention", "Health", "Factor", "Resistance", "Protection", "Reduction"} {
		if strings.Contains(name, suffix) {
			return Multiplicative
		}
	}
	for _, suffix := range []string{"Regen", "Boost"} {
		if strings.Contains(name, suffix) {
			return AdditiveBonus
		}
	}
	return Multiplicative
}
