package game

import (
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blazearena/trivia-arena/internal/gamble"
	"github.com/blazearena/trivia-arena/internal/powerup"
)

// Phase of the session state machine.
type Phase string

const (
	PhaseMenu     Phase = "menu"
	PhasePlaying  Phase = "playing"
	PhaseGamble   Phase = "gamble"
	PhaseDuel     Phase = "duel"
	PhaseGameOver Phase = "gameOver"
)

// TransitionHint tells the caller which delayed transition was scheduled.
type TransitionHint string

const (
	HintGamble  TransitionHint = "gamble"
	HintAdvance TransitionHint = "advance"
)

// TimedOutAnswer is the sentinel answer index for a depleted timer.
const TimedOutAnswer = -1

// QuestionMeta is the slice of question data the scoring engine needs.
type QuestionMeta struct {
	ID       int
	Category string
}

// HistoryEntry is one per-question outcome record. The session history is
// append-only.
type HistoryEntry struct {
	Correct    bool    `json:"correct"`
	Points     int     `json:"points"`
	QuestionID int     `json:"questionId"`
	Category   string  `json:"category"`
	AnswerTime float64 `json:"answerTime"`
}

// CategoryStat counts per-category answers.
type CategoryStat struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// AnswerResult reports what SubmitAnswer did.
type AnswerResult struct {
	Correct    bool
	Points     int
	SpeedBonus int
	Frozen     bool
	Earned     []powerup.Kind
	GameOver   bool
	Hint       TransitionHint
}

// Snapshot is a copy of the observable session state.
type Snapshot struct {
	Score           int                     `json:"score"`
	Streak          int                     `json:"streak"`
	MaxStreak       int                     `json:"maxStreak"`
	Lives           int                     `json:"lives"`
	ComboCount      int                     `json:"comboCount"`
	ComboMultiplier int                     `json:"comboMultiplier"`
	QuestionIndex   int                     `json:"questionIndex"`
	Phase           Phase                   `json:"phase"`
	FastestAnswer   float64                 `json:"fastestAnswer"`
	GamblesWon      int                     `json:"gamblesWon"`
	GamblesLost     int                     `json:"gamblesLost"`
	AllInWins       int                     `json:"allInWins"`
	SpeedBonusCount int                     `json:"speedBonusCount"`
	TotalGameTime   float64                 `json:"totalGameTime"`
	History         []HistoryEntry          `json:"history"`
	CategoryStats   map[string]CategoryStat `json:"categoryStats"`
}

// Session owns one player's game state: score, streak, combo, lives, phase
// machine and per-question history. All user-driven mutations are applied
// synchronously under one lock; delayed phase transitions go through a
// single-slot cancellable scheduler.
type Session struct {
	mu        sync.Mutex
	rules     Rules
	rng       *rand.Rand
	logger    zerolog.Logger
	scheduler *Scheduler

	inventory *powerup.Inventory
	effects   *powerup.EffectList

	score           int
	streak          int
	maxStreak       int
	lives           int
	comboCount      int
	comboMultiplier int
	questionIndex   int
	questionCount   int
	phase           Phase

	history       []HistoryEntry
	categoryStats map[string]CategoryStat

	fastestAnswer    float64
	totalGameTime    float64
	gamblesWon       int
	gamblesLost      int
	allInWins        int
	speedBonusCount  int
	lastAnswerPoints int
	bonusApplied     bool

	onPhase   func(Phase)
	onAdvance func(int)
}

// NewSession creates a session in the menu phase. The inventory and effect
// list are injected so the transport layer and the team sync layer share
// them with the scoring engine.
func NewSession(rules Rules, inv *powerup.Inventory, effects *powerup.EffectList, rng *rand.Rand, logger zerolog.Logger) *Session {
	s := &Session{
		rules:     rules,
		rng:       rng,
		logger:    logger.With().Str("component", "session").Logger(),
		scheduler: NewScheduler(),
		inventory: inv,
		effects:   effects,
	}
	s.resetLocked()
	s.phase = PhaseMenu
	return s
}

// SetPhaseListener registers a callback invoked on every phase change.
// The callback runs outside the session lock.
func (s *Session) SetPhaseListener(fn func(Phase)) {
	s.mu.Lock()
	s.onPhase = fn
	s.mu.Unlock()
}

// SetAdvanceListener registers a callback invoked with the question index
// whenever a new question should be presented, including question zero at
// game start. The callback runs outside the session lock.
func (s *Session) SetAdvanceListener(fn func(int)) {
	s.mu.Lock()
	s.onAdvance = fn
	s.mu.Unlock()
}

func (s *Session) fireAdvance(index int) {
	s.mu.Lock()
	fn := s.onAdvance
	s.mu.Unlock()
	if fn != nil {
		fn(index)
	}
}

// resetLocked restores all per-game state to initial values.
func (s *Session) resetLocked() {
	s.score = 0
	s.streak = 0
	s.maxStreak = 0
	s.lives = s.rules.InitialLives
	s.comboCount = 0
	s.comboMultiplier = 1
	s.questionIndex = 0
	s.history = nil
	s.categoryStats = make(map[string]CategoryStat)
	s.fastestAnswer = math.Inf(1)
	s.totalGameTime = 0
	s.gamblesWon = 0
	s.gamblesLost = 0
	s.allInWins = 0
	s.speedBonusCount = 0
	s.lastAnswerPoints = 0
	s.bonusApplied = false
	if s.inventory != nil {
		s.inventory.Reset()
	}
	if s.effects != nil {
		s.effects.Reset()
	}
}

// Start begins a new game over a sequence of questionCount questions:
// menu -> playing with everything reset.
func (s *Session) Start(questionCount int) {
	s.scheduler.Cancel()
	s.mu.Lock()
	s.resetLocked()
	s.questionCount = questionCount
	s.mu.Unlock()
	s.setPhase(PhasePlaying)
	s.fireAdvance(0)
}

// Restart returns to the menu with all state reset and any pending
// transition invalidated. Also the error-recovery reset.
func (s *Session) Restart() {
	s.scheduler.Cancel()
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.setPhase(PhaseMenu)
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	if s.phase == p {
		s.mu.Unlock()
		return
	}
	from := s.phase
	s.phase = p
	fn := s.onPhase
	s.mu.Unlock()

	s.logger.Info().Str("from", string(from)).Str("to", string(p)).Msg("phase change")
	if fn != nil {
		fn(p)
	}
}

// SubmitAnswer scores one answer and schedules the resulting phase
// transition. answerIndex is TimedOutAnswer when the timer ran out; a
// timeout follows the incorrect path with the full time limit as the
// response time.
func (s *Session) SubmitAnswer(answerIndex int, correct bool, responseTime float64, meta QuestionMeta) AnswerResult {
	s.mu.Lock()

	if s.phase != PhasePlaying {
		s.mu.Unlock()
		return AnswerResult{}
	}

	s.totalGameTime += responseTime

	if correct {
		res := s.scoreCorrectLocked(responseTime, meta)
		s.mu.Unlock()
		s.scheduler.Schedule(s.rules.CorrectToGamble, func() {
			s.setPhase(PhaseGamble)
		})
		return res
	}

	res := s.scoreIncorrectLocked(answerIndex, responseTime, meta)
	gameOver := res.GameOver
	s.mu.Unlock()
	if gameOver {
		s.setPhase(PhaseGameOver)
	} else {
		s.scheduler.Schedule(s.rules.WrongToNext, s.advanceOrFinish)
	}
	return res
}

// SubmitTimeout handles a depleted timer: identical to an incorrect answer
// with response time equal to the full time limit.
func (s *Session) SubmitTimeout(timeLimit float64, meta QuestionMeta) AnswerResult {
	return s.SubmitAnswer(TimedOutAnswer, false, timeLimit, meta)
}

func (s *Session) scoreCorrectLocked(responseTime float64, meta QuestionMeta) AnswerResult {
	streakEntering := s.streak
	multiplier := s.comboMultiplier
	frozen := s.effects != nil && s.effects.Has(powerup.KindFreeze)

	s.streak++
	if s.streak > s.maxStreak {
		s.maxStreak = s.streak
	}
	if !frozen {
		s.comboCount++
		s.comboMultiplier = s.rules.ComboMultiplier(s.comboCount)
	}
	if s.effects != nil {
		s.effects.DecrementDurations()
	}

	stat := s.categoryStats[meta.Category]
	stat.Correct++
	stat.Total++
	s.categoryStats[meta.Category] = stat

	if responseTime < s.fastestAnswer {
		s.fastestAnswer = responseTime
	}

	var earned []powerup.Kind
	speedBonus := s.rules.SpeedBonus(responseTime)
	if speedBonus > 0 {
		s.speedBonusCount++
	}
	if responseTime < s.rules.VeryFastThreshold {
		earned = append(earned, powerup.KindTimePressure)
	}
	if s.streak == s.rules.PowerUpUnlockStreak {
		earned = append(earned,
			powerup.KindPointSteal, powerup.KindFreeze,
			powerup.KindScramble, powerup.KindLifeDrain)
	}
	if s.rng.Float64() < s.rules.LifeDrainDropChance {
		earned = append(earned, powerup.KindLifeDrain)
	}
	if s.inventory != nil {
		for _, kind := range earned {
			s.inventory.Earn(kind)
		}
	}

	base := s.rules.BasePoints + streakEntering*s.rules.StreakBonusPerLevel
	if frozen {
		multiplier = 1
	}
	points := (base + speedBonus) * multiplier

	s.score += points
	s.lastAnswerPoints = points
	s.history = append(s.history, HistoryEntry{
		Correct:    true,
		Points:     points,
		QuestionID: meta.ID,
		Category:   meta.Category,
		AnswerTime: responseTime,
	})

	s.logger.Info().
		Int("points", points).
		Int("streak", s.streak).
		Int("multiplier", multiplier).
		Bool("frozen", frozen).
		Msg("correct answer")

	return AnswerResult{
		Correct:    true,
		Points:     points,
		SpeedBonus: speedBonus,
		Frozen:     frozen,
		Earned:     earned,
		Hint:       HintGamble,
	}
}

func (s *Session) scoreIncorrectLocked(answerIndex int, responseTime float64, meta QuestionMeta) AnswerResult {
	s.streak = 0
	s.comboCount = 0
	s.comboMultiplier = 1

	stat := s.categoryStats[meta.Category]
	stat.Total++
	s.categoryStats[meta.Category] = stat

	s.lives--
	s.lastAnswerPoints = 0
	s.history = append(s.history, HistoryEntry{
		Correct:    false,
		Points:     0,
		QuestionID: meta.ID,
		Category:   meta.Category,
		AnswerTime: responseTime,
	})

	s.logger.Info().
		Int("lives", s.lives).
		Bool("timed_out", answerIndex == TimedOutAnswer).
		Msg("wrong answer")

	res := AnswerResult{Hint: HintAdvance}
	if s.lives <= 0 {
		s.lives = 0
		s.finishLocked()
		res.GameOver = true
	}
	return res
}

// finishLocked applies the end-of-game bookkeeping; the caller transitions
// the phase afterwards.
func (s *Session) finishLocked() {
	if !s.bonusApplied {
		bonus := 0
		for _, stat := range s.categoryStats {
			if stat.Total > 0 && stat.Correct == stat.Total {
				bonus += s.rules.CategoryPerfectBonus
			}
		}
		s.score += bonus
		s.bonusApplied = true
		if bonus > 0 {
			s.logger.Info().Int("bonus", bonus).Msg("perfect category bonus")
		}
	}
	s.scheduler.Cancel()
}

// advanceOrFinish moves to the next question, or ends the game when no
// lives or questions remain.
func (s *Session) advanceOrFinish() {
	s.mu.Lock()
	if s.phase == PhaseGameOver || s.phase == PhaseMenu {
		s.mu.Unlock()
		return
	}
	if s.lives > 0 && s.questionIndex+1 < s.questionCount {
		s.questionIndex++
		next := s.questionIndex
		s.mu.Unlock()
		s.setPhase(PhasePlaying)
		s.fireAdvance(next)
		return
	}
	s.finishLocked()
	s.mu.Unlock()
	s.setPhase(PhaseGameOver)
}

// Bank locks in current points from the gamble phase and advances
// immediately.
func (s *Session) Bank() bool {
	s.mu.Lock()
	if s.phase != PhaseGamble {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()
	s.scheduler.Cancel()
	s.advanceOrFinish()
	return true
}

// ApplyGamble resolves a risk outcome against the points earned on the
// last question and schedules the delayed advance. Returns the payout
// added to the score (zero on a loss).
func (s *Session) ApplyGamble(res gamble.Result) (int, bool) {
	s.mu.Lock()
	if s.phase != PhaseGamble {
		s.mu.Unlock()
		return 0, false
	}

	payout := res.Payout(s.lastAnswerPoints)
	if res.Won {
		s.score += payout
		s.gamblesWon++
		if res.Kind == gamble.KindAllIn {
			s.allInWins++
		}
	} else {
		s.gamblesLost++
		s.streak = 0
		s.comboCount = 0
		s.comboMultiplier = 1
	}
	s.mu.Unlock()

	s.logger.Info().
		Str("kind", string(res.Kind)).
		Bool("won", res.Won).
		Int("payout", payout).
		Msg("gamble resolved")

	s.scheduler.Schedule(s.rules.GambleResultToNext, s.advanceOrFinish)
	return payout, true
}

// EnterDuel moves playing -> duel. The countdown is owned by the transport.
func (s *Session) EnterDuel() bool {
	s.mu.Lock()
	if s.phase != PhasePlaying {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()
	s.scheduler.Cancel()
	s.setPhase(PhaseDuel)
	return true
}

// ExitDuel returns duel -> playing on the next question (or game over when
// none remain).
func (s *Session) ExitDuel() bool {
	s.mu.Lock()
	if s.phase != PhaseDuel {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()
	s.advanceOrFinish()
	return true
}

// AddPoints adjusts the score by delta, clamped at zero. Used for duel
// awards and for reconciling replicated deltas (delta may be negative).
func (s *Session) AddPoints(delta int) {
	s.mu.Lock()
	s.score += delta
	if s.score < 0 {
		s.score = 0
	}
	s.mu.Unlock()
}

// ConsumeLife removes one life. Reaching zero forces game over on this same
// update; returns true when that happened.
func (s *Session) ConsumeLife() bool {
	s.mu.Lock()
	if s.phase == PhaseGameOver || s.phase == PhaseMenu {
		s.mu.Unlock()
		return false
	}
	s.lives--
	if s.lives > 0 {
		s.mu.Unlock()
		return false
	}
	s.lives = 0
	s.finishLocked()
	s.mu.Unlock()
	s.setPhase(PhaseGameOver)
	return true
}

// TimeLimit returns the current question's time limit in seconds, adjusted
// for streak pressure and an active time-pressure effect.
func (s *Session) TimeLimit() int {
	s.mu.Lock()
	streak := s.streak
	s.mu.Unlock()
	pressure := s.effects != nil && s.effects.Has(powerup.KindTimePressure)
	return s.rules.TimeLimit(streak, pressure)
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Teardown cancels any pending scheduled transition. Called when the owning
// connection goes away.
func (s *Session) Teardown() {
	s.scheduler.Cancel()
}

// PendingTransition reports whether a delayed transition is scheduled.
func (s *Session) PendingTransition() bool {
	return s.scheduler.Pending()
}

// Accuracy returns the fraction of answered questions that were correct.
func (s *Session) Accuracy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return 0
	}
	correct := 0
	for _, h := range s.history {
		if h.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(s.history))
}

// Snapshot copies the observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]HistoryEntry, len(s.history))
	copy(history, s.history)
	stats := make(map[string]CategoryStat, len(s.categoryStats))
	for k, v := range s.categoryStats {
		stats[k] = v
	}

	// unset sentinel would not survive JSON encoding
	fastest := s.fastestAnswer
	if math.IsInf(fastest, 1) {
		fastest = 0
	}

	return Snapshot{
		Score:           s.score,
		Streak:          s.streak,
		MaxStreak:       s.maxStreak,
		Lives:           s.lives,
		ComboCount:      s.comboCount,
		ComboMultiplier: s.comboMultiplier,
		QuestionIndex:   s.questionIndex,
		Phase:           s.phase,
		FastestAnswer:   fastest,
		GamblesWon:      s.gamblesWon,
		GamblesLost:     s.gamblesLost,
		AllInWins:       s.allInWins,
		SpeedBonusCount: s.speedBonusCount,
		TotalGameTime:   s.totalGameTime,
		History:         history,
		CategoryStats:   stats,
	}
}
