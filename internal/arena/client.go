package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blazearena/trivia-arena/internal/duel"
	"github.com/blazearena/trivia-arena/internal/gamble"
	"github.com/blazearena/trivia-arena/internal/game"
	"github.com/blazearena/trivia-arena/internal/leaderboard"
	"github.com/blazearena/trivia-arena/internal/powerup"
	"github.com/blazearena/trivia-arena/internal/question"
	"github.com/blazearena/trivia-arena/internal/team"
	ws "github.com/blazearena/trivia-arena/pkg/http/ws"
)

// Client drives one player's game over a message stream. All state it
// mutates belongs to this player only.
type Client struct {
	id      uuid.UUID
	boards  *leaderboard.Service
	store   team.Store
	metrics *Metrics
	rules   game.Rules
	logger  zerolog.Logger

	session   *game.Session
	machine   *duel.Machine
	inventory *powerup.Inventory
	effects   *powerup.EffectList
	provider  *question.Provider
	gambler   *gamble.Engine
	rng       *rand.Rand

	mu          sync.Mutex
	name        string
	syncer      *team.Syncer
	send        func(ws.Message)
	served      question.Question
	servedIndex int
	watched     map[string]bool

	joinGroup      func(sessionID string)
	leaveGroup     func(sessionID string)
	broadcastGroup func(sessionID string, msg ws.Message)
}

func NewClient(id uuid.UUID, boards *leaderboard.Service, store team.Store, metrics *Metrics, rules game.Rules, logger zerolog.Logger) *Client {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	inv := powerup.NewInventory()
	effects := powerup.NewEffectList()

	c := &Client{
		id:          id,
		boards:      boards,
		store:       store,
		metrics:     metrics,
		rules:       rules,
		logger:      logger,
		inventory:   inv,
		effects:     effects,
		provider:    question.NewProvider(rng),
		gambler:     gamble.NewEngine(rng),
		machine:     duel.NewMachine(logger),
		rng:         rng,
		send:        func(ws.Message) {},
		servedIndex: -1,

		joinGroup:      func(string) {},
		leaveGroup:     func(string) {},
		broadcastGroup: func(string, ws.Message) {},
	}
	c.session = game.NewSession(rules, inv, effects, rng, logger)
	c.session.SetPhaseListener(c.onPhaseChange)
	c.session.SetAdvanceListener(func(int) { c.serveQuestion() })
	return c
}

// SetSessionHooks installs the hub session-group callbacks, invoked when
// the client joins or leaves a team session and when it fans a message out
// to everyone attached to that session.
func (c *Client) SetSessionHooks(join, leave func(sessionID string), broadcast func(sessionID string, msg ws.Message)) {
	c.mu.Lock()
	c.joinGroup = join
	c.leaveGroup = leave
	c.broadcastGroup = broadcast
	c.mu.Unlock()
}

// SetSender installs the outgoing message sink.
func (c *Client) SetSender(send func(ws.Message)) {
	c.mu.Lock()
	c.send = send
	c.mu.Unlock()
}

func (c *Client) emit(msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("type", msgType).Msg("payload marshal failed")
		return
	}
	c.mu.Lock()
	send := c.send
	c.mu.Unlock()
	send(ws.Message{Type: msgType, Payload: raw})
}

func (c *Client) emitError(code, message string) {
	c.emit(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
}

// Handle dispatches one incoming message. A panic in any branch resets the
// game to the menu instead of killing the connection.
func (c *Client) Handle(msg ws.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("type", msg.Type).Msg("handler panic, resetting game")
			c.session.Restart()
			c.machine.Reset()
			c.emitError("internal_error", "game was reset after an internal error")
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	switch msg.Type {
	case ws.TypeStartGame:
		return c.handleStartGame(msg.Payload)
	case ws.TypeSubmitAnswer:
		return c.handleSubmitAnswer(msg.Payload)
	case ws.TypeBankPoints:
		return c.handleBankPoints()
	case ws.TypePlaceGamble:
		return c.handlePlaceGamble(msg.Payload)
	case ws.TypeChallengeDuel:
		return c.handleChallengeDuel()
	case ws.TypeSelectOpponent:
		return c.handleSelectOpponent(msg.Payload)
	case ws.TypeCancelDuel:
		return c.handleCancelDuel()
	case ws.TypeDuelAnswer:
		return c.handleDuelAnswer(msg.Payload)
	case ws.TypeDuelContinue:
		return c.handleDuelContinue()
	case ws.TypeUsePowerUp:
		return c.handleUsePowerUp(msg.Payload)
	case ws.TypeJoinTeam:
		return c.handleJoinTeam(msg.Payload)
	case ws.TypeSetReady:
		return c.handleSetReady(msg.Payload)
	case ws.TypeTogglePool:
		return c.handleTogglePool()
	case ws.TypeRestartGame:
		return c.handleRestart()
	case ws.TypePing:
		c.emit(ws.TypePong, struct{}{})
		return nil
	default:
		c.emitError("unknown_type", fmt.Sprintf("unknown message type %q", msg.Type))
		return nil
	}
}

func (c *Client) onPhaseChange(phase game.Phase) {
	c.emit(ws.TypePhaseChange, ws.PhaseChangePayload{Phase: string(phase)})

	if phase == game.PhaseGameOver {
		c.finishGame()
	}
	c.syncTeam()
}

func (c *Client) serveQuestion() {
	snap := c.session.Snapshot()
	q, err := c.provider.At(snap.QuestionIndex)
	if err != nil {
		c.logger.Error().Err(err).Int("index", snap.QuestionIndex).Msg("question lookup failed")
		return
	}

	scrambled := c.effects.Has(powerup.KindScramble)
	if scrambled {
		q = question.Scramble(q, c.rng)
	}

	// Answers are judged against the order the client saw.
	c.mu.Lock()
	c.served = q
	c.servedIndex = snap.QuestionIndex
	c.mu.Unlock()

	c.emit(ws.TypeQuestion, ws.QuestionPayload{
		Index:            snap.QuestionIndex,
		ID:               q.ID,
		Prompt:           q.Prompt,
		Options:          q.Options,
		Category:         q.Category,
		TimeLimitSeconds: c.session.TimeLimit(),
		Scrambled:        scrambled,
	})
}

// servedQuestion returns the question as it was sent to the client for the
// given index, falling back to the provider order when nothing was served.
func (c *Client) servedQuestion(index int) (question.Question, bool) {
	c.mu.Lock()
	served, servedIndex := c.served, c.servedIndex
	c.mu.Unlock()
	if servedIndex == index {
		return served, true
	}
	q, err := c.provider.At(index)
	if err != nil {
		return question.Question{}, false
	}
	return q, true
}

func (c *Client) handleStartGame(raw json.RawMessage) error {
	var payload ws.StartGamePayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			c.emitError("bad_payload", "malformed start_game payload")
			return nil
		}
	}
	if payload.PlayerName != "" {
		c.mu.Lock()
		c.name = payload.PlayerName
		c.mu.Unlock()
	}

	c.provider.Shuffle()
	c.machine.Reset()
	c.session.Start(c.provider.Count())
	return nil
}

func (c *Client) handleSubmitAnswer(raw json.RawMessage) error {
	var payload ws.SubmitAnswerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError("bad_payload", "malformed submit_answer payload")
		return nil
	}

	snap := c.session.Snapshot()
	q, ok := c.servedQuestion(snap.QuestionIndex)
	if !ok {
		c.emitError("no_question", "no active question")
		return nil
	}

	var res game.AnswerResult
	if payload.AnswerIndex == game.TimedOutAnswer {
		limit := float64(c.session.TimeLimit())
		res = c.session.SubmitTimeout(limit, game.QuestionMeta{ID: q.ID, Category: q.Category})
	} else {
		correct := payload.AnswerIndex == q.Answer
		res = c.session.SubmitAnswer(payload.AnswerIndex, correct, payload.ResponseSeconds, game.QuestionMeta{ID: q.ID, Category: q.Category})
	}

	c.machine.TickQuestion()
	c.metrics.Answers.WithLabelValues(answerLabel(res.Correct)).Inc()

	after := c.session.Snapshot()
	catalog := powerup.Catalog()
	earned := make([]string, 0, len(res.Earned))
	for _, kind := range res.Earned {
		earned = append(earned, string(kind))
		info := catalog[kind]
		c.emit(ws.TypePowerUpEarned, ws.PowerUpEarnedPayload{
			Kind:        string(kind),
			Name:        info.Name,
			Description: info.Description,
			Count:       c.inventory.Count(kind),
		})
	}

	c.emit(ws.TypeAnswerResult, ws.AnswerResultPayload{
		Correct:    res.Correct,
		Points:     res.Points,
		SpeedBonus: res.SpeedBonus,
		Frozen:     res.Frozen,
		Earned:     earned,
		Score:      after.Score,
		Streak:     after.Streak,
		Lives:      after.Lives,
		Multiplier: after.ComboMultiplier,
	})

	c.syncTeam()
	c.notifyAnswer(res.Correct, after.Streak)
	return nil
}

func (c *Client) handleBankPoints() error {
	if !c.session.Bank() {
		c.emitError("wrong_phase", "nothing to bank")
	}
	return nil
}

func (c *Client) handlePlaceGamble(raw json.RawMessage) error {
	var payload ws.PlaceGamblePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError("bad_payload", "malformed place_gamble payload")
		return nil
	}

	kind := gamble.Kind(payload.Kind)
	if !kind.Valid() {
		c.emitError("bad_gamble", fmt.Sprintf("unknown gamble kind %q", payload.Kind))
		return nil
	}

	result := c.gambler.Roll(kind)
	payout, ok := c.session.ApplyGamble(result)
	if !ok {
		c.emitError("wrong_phase", "no points at risk")
		return nil
	}

	c.metrics.Gambles.WithLabelValues(string(kind), gambleLabel(result.Won)).Inc()
	c.emit(ws.TypeGambleResult, ws.GambleResultPayload{
		Kind:   string(kind),
		Won:    result.Won,
		Payout: payout,
		Score:  c.session.Snapshot().Score,
	})
	c.syncTeam()
	return nil
}

func (c *Client) handleChallengeDuel() error {
	if !c.machine.StartSelection() {
		c.emitError("duel_cooldown", fmt.Sprintf("duel ready in %d questions", c.machine.QuestionsUntilDuel()))
		return nil
	}
	c.emitDuelUpdate()
	return nil
}

func (c *Client) handleSelectOpponent(raw json.RawMessage) error {
	var payload ws.SelectOpponentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError("bad_payload", "malformed select_opponent payload")
		return nil
	}
	if c.machine.State() != duel.StateSelecting {
		c.emitError("wrong_phase", "no opponent selection in progress")
		return nil
	}

	opp := duel.Opponent{ID: payload.OpponentID, Name: payload.OpponentID}
	c.fillOpponentFromStore(&opp)
	c.machine.SelectOpponent(opp)
	c.machine.Start()
	c.session.EnterDuel()
	c.emitDuelUpdate()
	return nil
}

// fillOpponentFromStore snapshots the opponent's replicated record when a
// team session is active. Best effort only.
func (c *Client) fillOpponentFromStore(opp *duel.Opponent) {
	c.mu.Lock()
	syncer := c.syncer
	c.mu.Unlock()
	if syncer == nil || c.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var rec team.Record
	path := team.TeamPath(c.teamMode(), syncer.SessionID(), opp.ID)
	if err := c.store.Read(ctx, path, &rec); err != nil {
		c.logger.Debug().Err(err).Str("opponent", opp.ID).Msg("opponent record unavailable")
		return
	}
	if rec.Name != "" {
		opp.Name = rec.Name
	}
	opp.Score = rec.Score
}

func (c *Client) handleCancelDuel() error {
	if !c.machine.Cancel() {
		c.emitError("wrong_phase", "no duel to cancel")
		return nil
	}
	c.emitDuelUpdate()
	return nil
}

func (c *Client) handleDuelAnswer(raw json.RawMessage) error {
	var payload ws.DuelAnswerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError("bad_payload", "malformed duel_answer payload")
		return nil
	}

	switch payload.Side {
	case "player":
		c.machine.RecordPlayerAnswer(payload.Correct, payload.ElapsedSeconds)
	case "opponent":
		c.machine.RecordOpponentAnswer(payload.Correct, payload.ElapsedSeconds)
	default:
		c.emitError("bad_payload", fmt.Sprintf("unknown duel side %q", payload.Side))
		return nil
	}

	if !c.machine.BothAnswered() {
		return nil
	}

	result := c.machine.Complete()
	if result == nil {
		return nil
	}

	if result.Winner == duel.WinnerPlayer {
		c.session.AddPoints(result.PointsStolen)
	} else if result.LifeLost {
		c.session.ConsumeLife()
	}

	c.metrics.Duels.WithLabelValues(string(result.Winner)).Inc()
	c.emit(ws.TypeDuelResult, ws.DuelResultPayload{
		Winner:       string(result.Winner),
		PlayerTime:   result.PlayerTime,
		OpponentTime: result.OpponentTime,
		PointsWon:    result.PointsStolen,
		LifeLost:     result.LifeLost,
	})
	c.syncTeam()
	return nil
}

func (c *Client) handleDuelContinue() error {
	if c.machine.State() != duel.StateCompleted {
		c.emitError("wrong_phase", "no finished duel")
		return nil
	}
	c.machine.FinishRound()
	c.session.ExitDuel()
	return nil
}

func (c *Client) handleUsePowerUp(raw json.RawMessage) error {
	var payload ws.UsePowerUpPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError("bad_payload", "malformed use_power_up payload")
		return nil
	}

	kind := powerup.Kind(payload.Kind)
	if !kind.Valid() {
		c.emitError("bad_power_up", fmt.Sprintf("unknown power-up %q", payload.Kind))
		return nil
	}

	c.mu.Lock()
	syncer := c.syncer
	c.mu.Unlock()

	// Solo play: the unit is consumed and non-instant kinds apply to this
	// player's own run. Instant attack kinds have no target and fizzle.
	if syncer == nil {
		if !c.inventory.Use(kind) {
			c.emitError("power_up_failed", fmt.Sprintf("none of %s held", kind))
			return nil
		}
		if !kind.Instant() {
			c.effects.Add(powerup.NewEffect(kind, c.id.String()))
		}
		c.metrics.PowerUps.WithLabelValues(string(kind)).Inc()
		c.emit(ws.TypeEffectApplied, ws.EffectAppliedPayload{
			Kind:      string(kind),
			Duration:  powerup.DefaultEffectDuration,
			AppliedAt: time.Now().UnixMilli(),
		})
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := syncer.UsePowerUp(ctx, kind, payload.TargetID); err != nil {
		c.emitError("power_up_failed", err.Error())
		return nil
	}

	c.metrics.PowerUps.WithLabelValues(string(kind)).Inc()
	c.emit(ws.TypeEffectApplied, ws.EffectAppliedPayload{
		Kind:      string(kind),
		Duration:  powerup.DefaultEffectDuration,
		AppliedAt: time.Now().UnixMilli(),
	})
	c.syncTeam()
	return nil
}

func (c *Client) handleJoinTeam(raw json.RawMessage) error {
	var payload ws.JoinTeamPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError("bad_payload", "malformed join_team payload")
		return nil
	}
	if c.store == nil {
		c.emitError("no_store", "team sessions are not enabled")
		return nil
	}
	mode := payload.Mode
	if mode != question.ModeStandard && mode != question.ModeAlternate {
		c.emitError("bad_mode", fmt.Sprintf("unknown mode %q", payload.Mode))
		return nil
	}

	name := payload.TeamName
	if name == "" {
		name = c.id.String()
	}
	syncer := team.NewSyncer(c.store, c.session, c.inventory, c.effects, mode, c.id.String(), name, c.logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := syncer.GetOrCreateActiveSession(ctx, payload.SessionID); err != nil {
		c.emitError("join_failed", err.Error())
		return nil
	}
	if err := syncer.JoinSession(ctx); err != nil {
		c.emitError("join_failed", err.Error())
		return nil
	}
	if _, err := syncer.ListenToMyTeam(context.Background(), c.onOwnDeltas); err != nil {
		c.emitError("join_failed", err.Error())
		return nil
	}
	if _, err := syncer.ListenToNotifications(context.Background(), func(n team.Notification) {
		c.emit(ws.TypeNotification, ws.NotificationPayload{
			Type:    n.Type,
			From:    n.From,
			Message: n.Message,
		})
	}); err != nil {
		c.logger.Warn().Err(err).Msg("notification subscription failed")
	}

	c.mu.Lock()
	old := c.syncer
	c.syncer = syncer
	c.name = name
	join, leave := c.joinGroup, c.leaveGroup
	c.mu.Unlock()
	if old != nil {
		leave(old.SessionID())
		old.Close()
	}
	join(syncer.SessionID())

	c.watchOpponents(syncer)
	c.emit(ws.TypeTeamUpdate, ws.TeamUpdatePayload{
		TeamID: c.id.String(),
		Name:   name,
		Score:  0,
		Lives:  c.rules.InitialLives,
		Phase:  string(c.session.Phase()),
	})
	return nil
}

// onOwnDeltas surfaces attacks the sync layer already applied to this run.
func (c *Client) onOwnDeltas(rec team.Record, deltas []team.Delta) {
	for _, d := range deltas {
		switch d.Kind {
		case team.DeltaLivesLost:
			c.emit(ws.TypeNotification, ws.NotificationPayload{
				Type:    team.NotifyPowerUpUsed,
				Message: fmt.Sprintf("a life was drained (%d lost)", d.Amount),
			})
		case team.DeltaScoreLost:
			c.emit(ws.TypeNotification, ws.NotificationPayload{
				Type:    team.NotifyPointsStolen,
				Message: fmt.Sprintf("%d points were stolen", d.Amount),
			})
		case team.DeltaEffectApplied:
			c.emit(ws.TypeEffectApplied, ws.EffectAppliedPayload{
				Kind:      string(d.Effect.Kind),
				Duration:  d.Effect.Duration,
				AppliedAt: d.Effect.AppliedAt,
			})
		}
	}
}

// watchOpponents subscribes to every other team on the session status
// record and keeps following the status so late joiners are picked up.
func (c *Client) watchOpponents(syncer *team.Syncer) {
	c.mu.Lock()
	c.watched = map[string]bool{c.id.String(): true}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var status team.SessionStatus
	if err := c.store.Read(ctx, team.StatusPath(c.teamMode(), syncer.SessionID()), &status); err != nil {
		c.logger.Debug().Err(err).Msg("session status unavailable")
	} else {
		c.watchTeams(syncer, status)
	}

	if _, err := syncer.ListenToStatus(context.Background(), func(status team.SessionStatus) {
		c.watchTeams(syncer, status)
	}); err != nil {
		c.logger.Warn().Err(err).Msg("status subscription failed")
	}
}

func (c *Client) watchTeams(syncer *team.Syncer, status team.SessionStatus) {
	for teamID := range status.Teams {
		c.mu.Lock()
		seen := c.watched[teamID]
		if !seen {
			c.watched[teamID] = true
		}
		c.mu.Unlock()
		if seen {
			continue
		}

		_, err := syncer.ListenToOpponent(context.Background(), teamID, func(rec team.Record, deltas []team.Delta) {
			c.emit(ws.TypeTeamUpdate, ws.TeamUpdatePayload{
				TeamID: rec.TeamID,
				Name:   rec.Name,
				Score:  rec.Score,
				Streak: rec.Streak,
				Lives:  rec.Lives,
				Phase:  rec.Phase,
			})
			for _, d := range deltas {
				switch d.Kind {
				case team.DeltaStreakMilestone:
					c.emit(ws.TypeNotification, ws.NotificationPayload{
						Type:    team.NotifyStreakAlert,
						From:    rec.TeamID,
						Message: fmt.Sprintf("%s is on a %d streak", rec.Name, d.Amount),
					})
				case team.DeltaScoreGained:
					c.emit(ws.TypeNotification, ws.NotificationPayload{
						Type:    team.NotifyAnswerCorrect,
						From:    rec.TeamID,
						Message: fmt.Sprintf("%s answered correctly", rec.Name),
					})
				}
			}
		})
		if err != nil {
			c.logger.Warn().Err(err).Str("opponent", teamID).Msg("opponent subscription failed")
		}
	}
}

func (c *Client) handleSetReady(raw json.RawMessage) error {
	var payload ws.SetReadyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError("bad_payload", "malformed set_ready payload")
		return nil
	}

	c.mu.Lock()
	syncer := c.syncer
	c.mu.Unlock()
	if syncer == nil {
		c.emitError("no_team", "join a team session first")
		return nil
	}

	status := team.StatusWaiting
	if payload.Ready {
		status = team.StatusReady
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := syncer.SetStatus(ctx, status); err != nil {
		c.emitError("set_ready_failed", err.Error())
		return nil
	}

	if payload.Ready {
		if both, err := syncer.BothTeamsReady(ctx); err == nil && both {
			c.emit(ws.TypeNotification, ws.NotificationPayload{
				Type:    team.NotifyStreakAlert,
				Message: "both teams ready",
			})
		}
	}
	return nil
}

func (c *Client) handleTogglePool() error {
	if c.session.Phase() != game.PhaseMenu {
		c.emitError("wrong_phase", "pool can only change from the menu")
		return nil
	}
	mode := c.provider.TogglePool()
	c.emit(ws.TypePoolToggled, ws.PoolToggledPayload{Mode: mode})
	return nil
}

func (c *Client) handleRestart() error {
	c.machine.Reset()
	c.session.Restart()
	return nil
}

func (c *Client) finishGame() {
	snap := c.session.Snapshot()
	c.metrics.GamesOver.Inc()

	highScore := false
	if c.boards != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		mode := c.teamMode()
		if high, err := c.boards.IsHighScore(ctx, mode, snap.Score); err == nil && high {
			highScore = true
			entry := leaderboard.Entry{
				ID:        c.id.String(),
				Name:      c.displayName(),
				Score:     snap.Score,
				MaxStreak: snap.MaxStreak,
				Accuracy:  c.session.Accuracy(),
			}
			if err := c.boards.Record(ctx, mode, entry); err != nil {
				c.logger.Warn().Err(err).Msg("leaderboard record failed")
			}
		}
	}

	perfect := false
	for _, stat := range snap.CategoryStats {
		if stat.Total > 0 && stat.Correct == stat.Total {
			perfect = true
			break
		}
	}

	c.emit(ws.TypeGameOver, ws.GameOverPayload{
		Score:         snap.Score,
		MaxStreak:     snap.MaxStreak,
		Accuracy:      c.session.Accuracy(),
		GamblesWon:    snap.GamblesWon,
		FastestAnswer: snap.FastestAnswer,
		TotalGameTime: snap.TotalGameTime,
		HighScore:     highScore,
		CategoryBonus: perfect,
	})
}

func (c *Client) emitDuelUpdate() {
	update := ws.DuelUpdatePayload{
		State:              c.machine.State(),
		QuestionsUntilDuel: c.machine.QuestionsUntilDuel(),
	}
	if update.State == duel.StateActive {
		update.CountdownSeconds = duel.CountdownSeconds
	}
	if opp, ok := c.machine.Opponent(); ok {
		update.OpponentID = opp.ID
		update.OpponentName = opp.Name
	}
	c.emit(ws.TypeDuelUpdate, update)
}

// syncTeam pushes the current state to the replicated record, when a team
// session is active.
func (c *Client) syncTeam() {
	c.mu.Lock()
	syncer := c.syncer
	c.mu.Unlock()
	if syncer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := syncer.SyncMyTeamData(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("team sync failed")
	}
}

func (c *Client) notifyAnswer(correct bool, streak int) {
	c.mu.Lock()
	syncer := c.syncer
	broadcast := c.broadcastGroup
	c.mu.Unlock()
	if syncer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	notifType := team.NotifyAnswerWrong
	if correct {
		notifType = team.NotifyAnswerCorrect
	}
	msg := fmt.Sprintf("%s answered", c.displayName())
	if err := syncer.SendNotification(ctx, notifType, msg); err != nil {
		c.logger.Debug().Err(err).Msg("answer notification dropped")
	}

	if correct && streak == team.StreakMilestone {
		msg := fmt.Sprintf("%s reached a %d streak", c.displayName(), streak)
		if err := syncer.SendNotification(ctx, team.NotifyStreakAlert, msg); err != nil {
			c.logger.Debug().Err(err).Msg("streak notification dropped")
		}
		raw, err := json.Marshal(ws.NotificationPayload{
			Type:    team.NotifyStreakAlert,
			From:    c.id.String(),
			Message: msg,
		})
		if err == nil {
			broadcast(syncer.SessionID(), ws.Message{Type: ws.TypeNotification, Payload: raw})
		}
	}
}

func (c *Client) displayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.name != "" {
		return c.name
	}
	return c.id.String()
}

func (c *Client) teamMode() string {
	c.mu.Lock()
	syncer := c.syncer
	c.mu.Unlock()
	if syncer != nil {
		return syncer.Mode()
	}
	return c.provider.Mode()
}

// Teardown cancels pending timers and subscriptions when the connection
// goes away.
func (c *Client) Teardown() {
	c.session.Teardown()
	c.mu.Lock()
	syncer := c.syncer
	c.syncer = nil
	leave := c.leaveGroup
	c.mu.Unlock()
	if syncer != nil {
		leave(syncer.SessionID())
		syncer.Close()
	}
}

func answerLabel(correct bool) string {
	if correct {
		return "correct"
	}
	return "incorrect"
}

func gambleLabel(won bool) string {
	if won {
		return "won"
	}
	return "lost"
}
