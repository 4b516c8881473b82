package powerup

// Kind identifies a power-up.
type Kind string

const (
	KindPointSteal   Kind = "pointSteal"
	KindFreeze       Kind = "freeze"
	KindTimePressure Kind = "timePressure"
	KindLifeDrain    Kind = "lifeDrain"
	KindScramble     Kind = "scramble"
)

// Kinds returns all power-up kinds in display order.
func Kinds() []Kind {
	return []Kind{KindPointSteal, KindFreeze, KindTimePressure, KindLifeDrain, KindScramble}
}

// Valid reports whether k is a known power-up kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPointSteal, KindFreeze, KindTimePressure, KindLifeDrain, KindScramble:
		return true
	}
	return false
}

// Instant reports whether a power-up applies immediately to its target
// instead of adding a lasting effect. Point steal and life drain resolve at
// the moment of use; everything else lives in the active-effect list.
func (k Kind) Instant() bool {
	return k == KindPointSteal || k == KindLifeDrain
}

// Info describes a power-up for UI consumption.
type Info struct {
	Kind        Kind   `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog returns the static power-up definitions.
func Catalog() map[Kind]Info {
	return map[Kind]Info{
		KindPointSteal: {
			Kind:        KindPointSteal,
			Name:        "Point Steal",
			Description: "Steal 15% of points from the opponent team",
		},
		KindFreeze: {
			Kind:        KindFreeze,
			Name:        "Freeze",
			Description: "Disable the combo multiplier for 2 questions",
		},
		KindTimePressure: {
			Kind:        KindTimePressure,
			Name:        "Time Pressure",
			Description: "Cut the answer time limit in half for the next questions",
		},
		KindLifeDrain: {
			Kind:        KindLifeDrain,
			Name:        "Life Drain",
			Description: "Remove 1 life from the opponent team",
		},
		KindScramble: {
			Kind:        KindScramble,
			Name:        "Scramble",
			Description: "Shuffle the displayed answer order for the next questions",
		},
	}
}
