package game

import "time"

// Rules holds configurable gameplay constants (defaults match requirements).
type Rules struct {
	InitialLives int

	BasePoints          int
	StreakBonusPerLevel int

	VeryFastThreshold float64 // seconds
	VeryFastPoints    int
	FastThreshold     float64
	FastPoints        int

	ComboLevel2Threshold  int
	ComboLevel2Multiplier int
	ComboLevel3Threshold  int
	ComboLevel3Multiplier int
	ComboLevel4Threshold  int
	ComboLevel4Multiplier int

	PowerUpUnlockStreak int
	LifeDrainDropChance float64

	CategoryPerfectBonus int

	CorrectToGamble    time.Duration
	WrongToNext        time.Duration
	GambleResultToNext time.Duration

	BaseTimeLimit int // seconds
	MinTimeLimit  int
}

// DefaultRules returns production defaults.
func DefaultRules() Rules {
	return Rules{
		InitialLives:          5,
		BasePoints:            100,
		StreakBonusPerLevel:   10,
		VeryFastThreshold:     3,
		VeryFastPoints:        100,
		FastThreshold:         5,
		FastPoints:            50,
		ComboLevel2Threshold:  2,
		ComboLevel2Multiplier: 2,
		ComboLevel3Threshold:  3,
		ComboLevel3Multiplier: 3,
		ComboLevel4Threshold:  5,
		ComboLevel4Multiplier: 4,
		PowerUpUnlockStreak:   3,
		LifeDrainDropChance:   0.1,
		CategoryPerfectBonus:  200,
		CorrectToGamble:       time.Second,
		WrongToNext:           1500 * time.Millisecond,
		GambleResultToNext:    500 * time.Millisecond,
		BaseTimeLimit:         15,
		MinTimeLimit:          3,
	}
}

// ComboMultiplier is a pure step function of the combo count.
func (r Rules) ComboMultiplier(comboCount int) int {
	switch {
	case comboCount >= r.ComboLevel4Threshold:
		return r.ComboLevel4Multiplier
	case comboCount >= r.ComboLevel3Threshold:
		return r.ComboLevel3Multiplier
	case comboCount >= r.ComboLevel2Threshold:
		return r.ComboLevel2Multiplier
	}
	return 1
}

// SpeedBonus returns the bonus points for an answer time in seconds.
func (r Rules) SpeedBonus(answerTime float64) int {
	switch {
	case answerTime < r.VeryFastThreshold:
		return r.VeryFastPoints
	case answerTime < r.FastThreshold:
		return r.FastPoints
	}
	return 0
}

// TimeLimit returns the per-question time limit in seconds for the given
// streak, halved (floored, with a minimum) while time pressure is active.
func (r Rules) TimeLimit(streak int, pressureActive bool) int {
	limit := r.BaseTimeLimit
	switch {
	case streak >= 10:
		limit = 8
	case streak >= 7:
		limit = 10
	case streak >= 4:
		limit = 12
	}
	if pressureActive {
		limit /= 2
		if limit < r.MinTimeLimit {
			limit = r.MinTimeLimit
		}
	}
	return limit
}
