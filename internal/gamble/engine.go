package gamble

import (
	"math/rand"
)

// Kind selects a payout tier.
type Kind string

const (
	KindDouble Kind = "double"
	KindTriple Kind = "triple"
	KindAllIn  Kind = "allin"
)

// Valid reports whether k is a known gamble kind.
func (k Kind) Valid() bool {
	return k == KindDouble || k == KindTriple || k == KindAllIn
}

// Fixed win thresholds over a uniform [0,100) roll.
const (
	doubleThreshold = 50
	tripleThreshold = 33
	allInThreshold  = 45
)

// Fixed payout multipliers per tier.
const (
	doubleMultiplier = 2
	tripleMultiplier = 4
	allInMultiplier  = 6
)

// Result of a single gamble roll.
type Result struct {
	Kind       Kind `json:"kind"`
	Won        bool `json:"won"`
	Roll       int  `json:"roll"`
	Threshold  int  `json:"threshold"`
	Multiplier int  `json:"multiplier"`
}

// Payout returns the points awarded for wagering points on this result.
// Losing always pays zero.
func (r Result) Payout(points int) int {
	if !r.Won {
		return 0
	}
	return points * r.Multiplier
}

// Multiplier returns the payout multiplier for a kind.
func Multiplier(kind Kind) int {
	switch kind {
	case KindDouble:
		return doubleMultiplier
	case KindTriple:
		return tripleMultiplier
	case KindAllIn:
		return allInMultiplier
	}
	return 0
}

// Threshold returns the win threshold for a kind.
func Threshold(kind Kind) int {
	switch kind {
	case KindDouble:
		return doubleThreshold
	case KindTriple:
		return tripleThreshold
	case KindAllIn:
		return allInThreshold
	}
	return 0
}

// Engine rolls gambles from an injectable random source so outcomes are
// reproducible under test.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine backed by rng.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Roll draws a uniform integer in [0,100) and compares it against the
// kind's fixed threshold.
func (e *Engine) Roll(kind Kind) Result {
	roll := e.rng.Intn(100)
	threshold := Threshold(kind)
	return Result{
		Kind:       kind,
		Won:        roll < threshold,
		Roll:       roll,
		Threshold:  threshold,
		Multiplier: Multiplier(kind),
	}
}

// Sample runs trials rolls of kind and returns win/loss counts, for
// distribution checks.
func (e *Engine) Sample(kind Kind, trials int) (wins, losses int) {
	for i := 0; i < trials; i++ {
		if e.Roll(kind).Won {
			wins++
		} else {
			losses++
		}
	}
	return wins, losses
}
