package duel

import (
	"sync"

	"github.com/rs/zerolog"
)

// Duel lifecycle states.
const (
	StateIdle      = "idle"
	StateSelecting = "selecting"
	StateActive    = "active"
	StateCompleted = "completed"
)

// CooldownThreshold is how many questions must elapse between duels.
const CooldownThreshold = 5

// WinnerAward is the fixed point prize for winning a duel.
const WinnerAward = 150

// CountdownSeconds is the on-screen countdown before a duel starts. The
// client renders the per-second ticks itself.
const CountdownSeconds = 3

// Winner side of a completed duel.
type Winner string

const (
	WinnerPlayer   Winner = "player"
	WinnerOpponent Winner = "opponent"
)

// Opponent is a fixed snapshot taken at selection time. The opponent's live
// state is not tracked afterwards.
type Opponent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Result of a completed duel.
type Result struct {
	Winner       Winner  `json:"winner"`
	PlayerTime   float64 `json:"playerTime"`
	OpponentTime float64 `json:"opponentTime"`
	PointsStolen int     `json:"pointsStolen"`
	LifeLost     bool    `json:"lifeLost"`
}

// Stats accumulated across duels in one session.
type Stats struct {
	Won          int `json:"won"`
	Lost         int `json:"lost"`
	PointsStolen int `json:"pointsStolen"`
}

type side struct {
	answered bool
	correct  bool
	elapsed  float64
}

// Machine is the duel sub-state-machine: idle -> selecting -> active ->
// completed -> idle, gated by a question cooldown.
type Machine struct {
	mu     sync.Mutex
	logger zerolog.Logger

	state              string
	opponent           *Opponent
	questionsSinceLast int

	player   side
	rival    side
	result   *Result
	stats    Stats
}

// NewMachine returns a machine in idle state with the cooldown already
// satisfied, so the first duel is available immediately.
func NewMachine(logger zerolog.Logger) *Machine {
	return &Machine{
		logger:             logger.With().Str("component", "duel").Logger(),
		state:              StateIdle,
		questionsSinceLast: CooldownThreshold,
	}
}

// State returns the current lifecycle state.
func (m *Machine) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CanChallenge reports whether a new duel may be initiated.
func (m *Machine) CanChallenge() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateIdle && m.questionsSinceLast >= CooldownThreshold
}

// QuestionsUntilDuel returns how many more questions must pass before a
// duel is available.
func (m *Machine) QuestionsUntilDuel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rem := CooldownThreshold - m.questionsSinceLast; rem > 0 {
		return rem
	}
	return 0
}

// StartSelection moves idle -> selecting. No-op (false) under cooldown.
func (m *Machine) StartSelection() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.questionsSinceLast < CooldownThreshold {
		m.logger.Warn().
			Int("questions_remaining", CooldownThreshold-m.questionsSinceLast).
			Msg("duel cooldown active")
		return false
	}
	if m.state != StateIdle {
		return false
	}
	m.state = StateSelecting
	return true
}

// SelectOpponent records a fixed snapshot of the chosen opponent.
func (m *Machine) SelectOpponent(opp Opponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opponent = &opp
	m.logger.Info().Str("opponent", opp.Name).Msg("opponent selected")
}

// Opponent returns the selected opponent snapshot, if any.
func (m *Machine) Opponent() (Opponent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opponent == nil {
		return Opponent{}, false
	}
	return *m.opponent, true
}

// Cancel aborts an unstarted duel. Only valid while selecting.
func (m *Machine) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateSelecting {
		return false
	}
	m.state = StateIdle
	m.opponent = nil
	m.player = side{}
	m.rival = side{}
	m.result = nil
	return true
}

// Start moves selecting -> active, clearing per-side answers and any prior
// result.
func (m *Machine) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateActive
	m.player = side{}
	m.rival = side{}
	m.result = nil
}

// RecordPlayerAnswer stores the player side's single answer. Later calls
// for an already-answered side are ignored.
func (m *Machine) RecordPlayerAnswer(correct bool, elapsed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player.answered {
		return
	}
	m.player = side{answered: true, correct: correct, elapsed: elapsed}
}

// RecordOpponentAnswer stores the opponent side's single answer.
func (m *Machine) RecordOpponentAnswer(correct bool, elapsed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rival.answered {
		return
	}
	m.rival = side{answered: true, correct: correct, elapsed: elapsed}
}

// BothAnswered reports whether the duel is ready to complete.
func (m *Machine) BothAnswered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.player.answered && m.rival.answered
}

// Complete determines the winner and applies duel bookkeeping. Returns nil
// without changing state unless both sides have answered.
//
// Winner rules: one side correct wins outright; both correct, faster wins;
// both wrong, the SLOWER side wins. The inverted both-wrong tie-break is a
// confirmed product rule, reproduced as-is.
func (m *Machine) Complete() *Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.player.answered || !m.rival.answered {
		m.logger.Warn().Msg("cannot complete duel: waiting for answers")
		return nil
	}

	var winner Winner
	switch {
	case m.player.correct && !m.rival.correct:
		winner = WinnerPlayer
	case !m.player.correct && m.rival.correct:
		winner = WinnerOpponent
	case m.player.correct && m.rival.correct:
		if m.player.elapsed < m.rival.elapsed {
			winner = WinnerPlayer
		} else {
			winner = WinnerOpponent
		}
	default:
		if m.player.elapsed > m.rival.elapsed {
			winner = WinnerPlayer
		} else {
			winner = WinnerOpponent
		}
	}

	result := &Result{
		Winner:       winner,
		PlayerTime:   m.player.elapsed,
		OpponentTime: m.rival.elapsed,
	}
	if winner == WinnerPlayer {
		result.PointsStolen = WinnerAward
		m.stats.Won++
		m.stats.PointsStolen += WinnerAward
	} else {
		result.LifeLost = true
		m.stats.Lost++
	}

	m.state = StateCompleted
	m.result = result
	m.questionsSinceLast = 0

	m.logger.Info().
		Str("winner", string(winner)).
		Int("points_stolen", result.PointsStolen).
		Msg("duel completed")

	return result
}

// Result returns the outcome of the last completed duel, if any.
func (m *Machine) Result() (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Stats returns accumulated duel statistics.
func (m *Machine) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// TickQuestion counts an elapsed question toward the cooldown, capped at
// the threshold.
func (m *Machine) TickQuestion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.questionsSinceLast < CooldownThreshold {
		m.questionsSinceLast++
	}
}

// Reset fully clears the machine to idle with the cooldown restored to
// ready. Stats are cleared too.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIdle
	m.opponent = nil
	m.player = side{}
	m.rival = side{}
	m.result = nil
	m.stats = Stats{}
	m.questionsSinceLast = CooldownThreshold
}

// FinishRound moves completed -> idle keeping stats and the spent cooldown,
// for the continue path after a duel.
func (m *Machine) FinishRound() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateCompleted {
		return
	}
	m.state = StateIdle
	m.opponent = nil
	m.player = side{}
	m.rival = side{}
	m.result = nil
}
