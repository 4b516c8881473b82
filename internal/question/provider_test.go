package question

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderToggleSwitchesPools(t *testing.T) {
	p := NewProvider(rand.New(rand.NewSource(1)))
	require.Equal(t, ModeStandard, p.Mode())

	assert.Equal(t, ModeAlternate, p.TogglePool())
	assert.Equal(t, ModeStandard, p.TogglePool())
}

func TestProviderServesWholePoolOnce(t *testing.T) {
	p := NewProvider(rand.New(rand.NewSource(1)))

	seen := make(map[int]bool)
	for i := 0; i < p.Count(); i++ {
		q, err := p.At(i)
		require.NoError(t, err)
		assert.False(t, seen[q.ID], "question %d served twice", q.ID)
		seen[q.ID] = true
	}
	assert.Len(t, seen, p.Count())

	_, err := p.At(p.Count())
	assert.Error(t, err)
}

func TestProviderPoolsAreDisjoint(t *testing.T) {
	standard := StandardPool()
	alternate := AlternatePool()

	ids := make(map[int]bool)
	for _, q := range standard {
		ids[q.ID] = true
	}
	for _, q := range alternate {
		assert.False(t, ids[q.ID], "id %d in both pools", q.ID)
	}
}

func TestPoolAnswersInRange(t *testing.T) {
	for _, pool := range []Pool{StandardPool(), AlternatePool()} {
		for _, q := range pool {
			assert.GreaterOrEqual(t, q.Answer, 0)
			assert.Less(t, q.Answer, len(q.Options), "question %d", q.ID)
		}
	}
}

func TestScrambleKeepsAnswerText(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, q := range StandardPool() {
		scrambled := Scramble(q, rng)
		assert.ElementsMatch(t, q.Options, scrambled.Options)
		assert.Equal(t, q.Options[q.Answer], scrambled.Options[scrambled.Answer])
	}
}
