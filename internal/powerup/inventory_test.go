package powerup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseWithEmptyInventoryFails(t *testing.T) {
	inv := NewInventory()

	for _, kind := range Kinds() {
		ok := inv.Use(kind)
		assert.False(t, ok, "use of %s with zero count must fail", kind)
		assert.Equal(t, 0, inv.Count(kind), "failed use must not mutate inventory")
	}
}

func TestEarnThenUseIsNetZero(t *testing.T) {
	inv := NewInventory()
	inv.Earn(KindFreeze)
	inv.Earn(KindFreeze)
	before := inv.Count(KindFreeze)

	inv.Earn(KindFreeze)
	ok := inv.Use(KindFreeze)

	assert.True(t, ok)
	assert.Equal(t, before, inv.Count(KindFreeze))
}

func TestLastEarnedTracking(t *testing.T) {
	inv := NewInventory()

	_, ok := inv.LastEarned()
	assert.False(t, ok)

	inv.Earn(KindScramble)
	last, ok := inv.LastEarned()
	assert.True(t, ok)
	assert.Equal(t, KindScramble, last)

	inv.ClearLastEarned()
	_, ok = inv.LastEarned()
	assert.False(t, ok)
}

func TestInvalidKindIsIgnored(t *testing.T) {
	inv := NewInventory()
	inv.Earn(Kind("unknown"))
	assert.Equal(t, 0, inv.Count(Kind("unknown")))
}

func TestEffectDurationCountdown(t *testing.T) {
	list := NewEffectList()
	list.Add(NewEffect(KindFreeze, ""))

	assert.True(t, list.Has(KindFreeze))

	list.DecrementDurations()
	assert.True(t, list.Has(KindFreeze), "freeze lasts two questions")

	list.DecrementDurations()
	assert.False(t, list.Has(KindFreeze), "expired effects are pruned")
	assert.Empty(t, list.Snapshot())
}

func TestDuplicateEffectsAreNotCoalesced(t *testing.T) {
	list := NewEffectList()
	list.Add(NewEffect(KindScramble, ""))
	list.Add(NewEffect(KindScramble, ""))

	assert.Len(t, list.Snapshot(), 2)

	list.Remove(KindScramble)
	assert.False(t, list.Has(KindScramble))
}

func TestInstantKinds(t *testing.T) {
	assert.True(t, KindPointSteal.Instant())
	assert.True(t, KindLifeDrain.Instant())
	assert.False(t, KindFreeze.Instant())
	assert.False(t, KindTimePressure.Instant())
	assert.False(t, KindScramble.Instant())
}
