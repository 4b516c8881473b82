package question

import (
	"fmt"
	"math/rand"
	"sync"
)

// Provider serves questions from the active pool in a per-game shuffled
// order. The pool can only be toggled between games.
type Provider struct {
	mu    sync.Mutex
	pools map[string]Pool
	mode  string
	order []int
	rng   *rand.Rand
}

// NewProvider starts on the standard pool.
func NewProvider(rng *rand.Rand) *Provider {
	p := &Provider{
		pools: map[string]Pool{
			ModeStandard:  StandardPool(),
			ModeAlternate: AlternatePool(),
		},
		mode: ModeStandard,
		rng:  rng,
	}
	p.shuffleLocked()
	return p
}

// Mode returns the active pool name.
func (p *Provider) Mode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// TogglePool switches between the standard and alternate pools and
// reshuffles. Returns the new mode.
func (p *Provider) TogglePool() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == ModeStandard {
		p.mode = ModeAlternate
	} else {
		p.mode = ModeStandard
	}
	p.shuffleLocked()
	return p.mode
}

// Shuffle rebuilds the serving order for a new game.
func (p *Provider) Shuffle() {
	p.mu.Lock()
	p.shuffleLocked()
	p.mu.Unlock()
}

func (p *Provider) shuffleLocked() {
	pool := p.pools[p.mode]
	p.order = p.rng.Perm(len(pool))
}

// Count returns the size of the active pool.
func (p *Provider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools[p.mode])
}

// At returns the question at the given position in the shuffled order.
func (p *Provider) At(index int) (Question, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.order) {
		return Question{}, fmt.Errorf("question index %d out of range [0,%d)", index, len(p.order))
	}
	return p.pools[p.mode][p.order[index]], nil
}

// Scramble returns a copy of q with its options permuted and the answer
// index remapped. Used when a scramble effect is active on the player.
func Scramble(q Question, rng *rand.Rand) Question {
	perm := rng.Perm(len(q.Options))
	options := make([]string, len(q.Options))
	answer := q.Answer
	for to, from := range perm {
		options[to] = q.Options[from]
		if from == q.Answer {
			answer = to
		}
	}
	q.Options = options
	q.Answer = answer
	return q
}
