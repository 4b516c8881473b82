package team

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/blazearena/trivia-arena/internal/powerup"
)

// Team statuses stored on the session status record.
const (
	StatusWaiting = "waiting"
	StatusReady   = "ready"
	StatusPlaying = "playing"
	StatusDone    = "done"
)

// Record is a team's replicated state as written to the store. Field names
// match the wire format other replicas expect.
type Record struct {
	TeamID        string       `json:"teamId"`
	Name          string       `json:"name"`
	Members       []string     `json:"members"`
	Ready         bool         `json:"ready"`
	Score         int          `json:"score"`
	Streak        int          `json:"streak"`
	MaxStreak     int          `json:"maxStreak"`
	Lives         int          `json:"lives"`
	Phase         string       `json:"gamePhase"`
	QuestionIndex int          `json:"questionIndex"`
	PowerUps      map[string]int `json:"powerUps"`
	ActiveEffects EffectsField `json:"activeEffects"`
	UpdatedAt     int64        `json:"updatedAt"`
}

// Touch stamps the record with the current wall clock in milliseconds.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UnixMilli()
}

// EffectsField is the activeEffects list. Some replicas write it as a dense
// JSON array, others as a sparse object keyed by index, so decoding accepts
// both. Encoding always emits a dense array.
type EffectsField []powerup.Effect

func (f EffectsField) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]powerup.Effect(f))
}

func (f *EffectsField) UnmarshalJSON(data []byte) error {
	var list []powerup.Effect
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var sparse map[string]powerup.Effect
	if err := json.Unmarshal(data, &sparse); err != nil {
		return fmt.Errorf("decode active effects: %w", err)
	}
	keys := make([]string, 0, len(sparse))
	for k := range sparse {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list = make([]powerup.Effect, 0, len(keys))
	for _, k := range keys {
		list = append(list, sparse[k])
	}
	*f = list
	return nil
}

// SessionStatus is the shared per-session coordination record.
type SessionStatus struct {
	SessionID string            `json:"sessionId"`
	Mode      string            `json:"mode"`
	Active    bool              `json:"active"`
	Teams     map[string]string `json:"teams"`
	CreatedAt int64             `json:"createdAt"`
}

// Notification is a transient cross-team event record.
type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	From      string `json:"from"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
}

// Notification types.
const (
	NotifyStreakAlert   = "streak_alert"
	NotifyPowerUpUsed   = "power_up_used"
	NotifyAnswerCorrect = "answer_correct"
	NotifyAnswerWrong   = "answer_wrong"
	NotifyPointsStolen  = "points_stolen"
)
