package powerup

import (
	"sync"
	"time"
)

// DefaultEffectDuration is how many questions a non-instant effect lasts.
const DefaultEffectDuration = 2

// Inventory holds per-player power-up counts. Counts only move through Earn
// and Use; Use refuses when the count is zero and leaves state untouched.
type Inventory struct {
	mu         sync.Mutex
	counts     map[Kind]int
	lastEarned Kind
	hasLast    bool
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{counts: make(map[Kind]int)}
}

// Earn adds one of kind and records it as last earned.
func (inv *Inventory) Earn(kind Kind) {
	if !kind.Valid() {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.counts[kind]++
	inv.lastEarned = kind
	inv.hasLast = true
}

// Use consumes one of kind. Returns false without mutation when none are held.
func (inv *Inventory) Use(kind Kind) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.counts[kind] <= 0 {
		return false
	}
	inv.counts[kind]--
	return true
}

// Count returns how many of kind are held.
func (inv *Inventory) Count(kind Kind) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.counts[kind]
}

// Counts returns a copy of all counts, including zero entries for every kind.
func (inv *Inventory) Counts() map[Kind]int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make(map[Kind]int, len(inv.counts))
	for _, k := range Kinds() {
		out[k] = inv.counts[k]
	}
	return out
}

// LastEarned reports the most recently earned kind, if any. UI highlight only.
func (inv *Inventory) LastEarned() (Kind, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.lastEarned, inv.hasLast
}

// ClearLastEarned resets the last-earned marker.
func (inv *Inventory) ClearLastEarned() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.hasLast = false
}

// Reset empties the inventory.
func (inv *Inventory) Reset() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.counts = make(map[Kind]int)
	inv.hasLast = false
}

// Effect is an applied power-up modifier with a countdown measured in
// questions. JSON tags match the replicated wire format.
type Effect struct {
	Kind      Kind   `json:"type"`
	TargetID  string `json:"targetId,omitempty"`
	Duration  int    `json:"duration"`
	AppliedAt int64  `json:"appliedAt"`
}

// NewEffect builds an effect of kind with the default duration, stamped now.
func NewEffect(kind Kind, targetID string) Effect {
	return Effect{
		Kind:      kind,
		TargetID:  targetID,
		Duration:  DefaultEffectDuration,
		AppliedAt: time.Now().UnixMilli(),
	}
}

// EffectList is the ordered set of active effects. Duplicates of a kind are
// kept as-is; a kind counts as active while any entry for it has duration > 0.
type EffectList struct {
	mu      sync.Mutex
	effects []Effect
}

// NewEffectList returns an empty effect list.
func NewEffectList() *EffectList {
	return &EffectList{}
}

// Add appends an effect.
func (l *EffectList) Add(e Effect) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.effects = append(l.effects, e)
}

// Remove drops every effect of kind.
func (l *EffectList) Remove(kind Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.effects[:0]
	for _, e := range l.effects {
		if e.Kind != kind {
			kept = append(kept, e)
		}
	}
	l.effects = kept
}

// DecrementDurations ticks every effect down by one question and prunes
// entries at or below zero. Called once per correctly answered question.
func (l *EffectList) DecrementDurations() {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.effects[:0]
	for _, e := range l.effects {
		e.Duration--
		if e.Duration > 0 {
			kept = append(kept, e)
		}
	}
	l.effects = kept
}

// Has reports whether any effect of kind is active.
func (l *EffectList) Has(kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.effects {
		if e.Kind == kind && e.Duration > 0 {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the active effects.
func (l *EffectList) Snapshot() []Effect {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Effect, len(l.effects))
	copy(out, l.effects)
	return out
}

// Reset clears the list.
func (l *EffectList) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.effects = nil
}
