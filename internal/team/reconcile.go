package team

import "github.com/blazearena/trivia-arena/internal/powerup"

// StreakMilestone is the rising streak value that triggers an alert.
const StreakMilestone = 5

// DeltaKind classifies one observed change between two replicated records.
type DeltaKind string

const (
	DeltaLivesLost       DeltaKind = "livesLost"
	DeltaScoreGained     DeltaKind = "scoreGained"
	DeltaScoreLost       DeltaKind = "scoreLost"
	DeltaStreakMilestone DeltaKind = "streakMilestone"
	DeltaEffectApplied   DeltaKind = "effectApplied"
)

// Delta is one change derived from comparing record versions. Amount is set
// for lives and score deltas, Effect for applied effects.
type Delta struct {
	Kind   DeltaKind
	Amount int
	Effect powerup.Effect
}

// Diff computes the deltas between the previously seen record and the next
// one. Remote changes are applied as deltas over local state, never as
// absolute overwrites, so concurrent local mutations are not lost.
func Diff(prev, next Record) []Delta {
	var deltas []Delta

	if next.Lives < prev.Lives {
		deltas = append(deltas, Delta{Kind: DeltaLivesLost, Amount: prev.Lives - next.Lives})
	}
	if next.Score > prev.Score {
		deltas = append(deltas, Delta{Kind: DeltaScoreGained, Amount: next.Score - prev.Score})
	}
	if next.Score < prev.Score {
		deltas = append(deltas, Delta{Kind: DeltaScoreLost, Amount: prev.Score - next.Score})
	}
	if next.Streak >= StreakMilestone && prev.Streak < StreakMilestone {
		deltas = append(deltas, Delta{Kind: DeltaStreakMilestone, Amount: next.Streak})
	}

	for _, eff := range effectsAdded(prev.ActiveEffects, next.ActiveEffects) {
		deltas = append(deltas, Delta{Kind: DeltaEffectApplied, Effect: eff})
	}
	return deltas
}

// effectsAdded returns effects present in next but not in prev, matched by
// type and application time.
func effectsAdded(prev, next EffectsField) []powerup.Effect {
	seen := make(map[effectKey]int, len(prev))
	for _, eff := range prev {
		seen[effectKey{eff.Kind, eff.AppliedAt}]++
	}

	var added []powerup.Effect
	for _, eff := range next {
		key := effectKey{eff.Kind, eff.AppliedAt}
		if seen[key] > 0 {
			seen[key]--
			continue
		}
		added = append(added, eff)
	}
	return added
}

type effectKey struct {
	kind      powerup.Kind
	appliedAt int64
}
