package team

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazearena/trivia-arena/internal/powerup"
)

func TestEffectsFieldDecodesArray(t *testing.T) {
	raw := `[{"type":"freeze","duration":2,"appliedAt":100},{"type":"scramble","duration":1,"appliedAt":200}]`

	var f EffectsField
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	require.Len(t, f, 2)
	assert.Equal(t, powerup.KindFreeze, f[0].Kind)
	assert.Equal(t, powerup.KindScramble, f[1].Kind)
}

func TestEffectsFieldDecodesSparseObject(t *testing.T) {
	raw := `{"0":{"type":"freeze","duration":2,"appliedAt":100},"2":{"type":"timePressure","duration":2,"appliedAt":300}}`

	var f EffectsField
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	require.Len(t, f, 2)
	assert.Equal(t, powerup.KindFreeze, f[0].Kind)
	assert.Equal(t, powerup.KindTimePressure, f[1].Kind)
}

func TestEffectsFieldEncodesDenseArray(t *testing.T) {
	var empty EffectsField
	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	f := EffectsField{powerup.Effect{Kind: powerup.KindFreeze, Duration: 2, AppliedAt: 100}}
	out, err = json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"freeze","duration":2,"appliedAt":100}]`, string(out))
}

func TestRecordRoundTrip(t *testing.T) {
	rec := Record{
		TeamID:    "t1",
		Name:      "Alpha",
		Score:     440,
		Streak:    3,
		MaxStreak: 3,
		Lives:     5,
		Phase:     "playing",
		PowerUps:  map[string]int{"freeze": 1},
		ActiveEffects: EffectsField{
			powerup.Effect{Kind: powerup.KindScramble, Duration: 2, AppliedAt: 100},
		},
	}
	rec.Touch()

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, rec.Score, back.Score)
	assert.Equal(t, rec.PowerUps, back.PowerUps)
	require.Len(t, back.ActiveEffects, 1)
	assert.Equal(t, powerup.KindScramble, back.ActiveEffects[0].Kind)
}
