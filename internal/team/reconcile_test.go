package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazearena/trivia-arena/internal/powerup"
)

func TestDiffLivesLost(t *testing.T) {
	prev := Record{Lives: 5}
	next := Record{Lives: 3}

	deltas := Diff(prev, next)
	require.Len(t, deltas, 1)
	assert.Equal(t, DeltaLivesLost, deltas[0].Kind)
	assert.Equal(t, 2, deltas[0].Amount)
}

func TestDiffScoreChanges(t *testing.T) {
	deltas := Diff(Record{Score: 1000}, Record{Score: 850})
	require.Len(t, deltas, 1)
	assert.Equal(t, DeltaScoreLost, deltas[0].Kind)
	assert.Equal(t, 150, deltas[0].Amount)

	deltas = Diff(Record{Score: 850}, Record{Score: 1000})
	require.Len(t, deltas, 1)
	assert.Equal(t, DeltaScoreGained, deltas[0].Kind)
	assert.Equal(t, 150, deltas[0].Amount)
}

func TestDiffStreakMilestoneRisingOnly(t *testing.T) {
	deltas := Diff(Record{Streak: 4}, Record{Streak: 5})
	require.Len(t, deltas, 1)
	assert.Equal(t, DeltaStreakMilestone, deltas[0].Kind)
	assert.Equal(t, 5, deltas[0].Amount)

	// Already past the milestone: no new alert.
	assert.Empty(t, Diff(Record{Streak: 5}, Record{Streak: 6}))
	// Falling back below does not alert either.
	assert.Empty(t, Diff(Record{Streak: 6}, Record{Streak: 0}))
}

func TestDiffEffectsAdded(t *testing.T) {
	freeze := powerup.Effect{Kind: powerup.KindFreeze, Duration: 2, AppliedAt: 100}
	scramble := powerup.Effect{Kind: powerup.KindScramble, Duration: 2, AppliedAt: 200}

	prev := Record{ActiveEffects: EffectsField{freeze}}
	next := Record{ActiveEffects: EffectsField{freeze, scramble}}

	deltas := Diff(prev, next)
	require.Len(t, deltas, 1)
	assert.Equal(t, DeltaEffectApplied, deltas[0].Kind)
	assert.Equal(t, powerup.KindScramble, deltas[0].Effect.Kind)
}

func TestDiffDuplicateEffectsCountSeparately(t *testing.T) {
	first := powerup.Effect{Kind: powerup.KindFreeze, Duration: 2, AppliedAt: 100}
	second := powerup.Effect{Kind: powerup.KindFreeze, Duration: 2, AppliedAt: 300}

	deltas := Diff(
		Record{ActiveEffects: EffectsField{first}},
		Record{ActiveEffects: EffectsField{first, second}},
	)
	require.Len(t, deltas, 1)
	assert.Equal(t, int64(300), deltas[0].Effect.AppliedAt)
}

func TestDiffNoChanges(t *testing.T) {
	rec := Record{Score: 500, Streak: 2, Lives: 4}
	assert.Empty(t, Diff(rec, rec))
}
