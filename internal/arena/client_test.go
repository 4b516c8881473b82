package arena

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazearena/trivia-arena/internal/duel"
	"github.com/blazearena/trivia-arena/internal/game"
	"github.com/blazearena/trivia-arena/internal/powerup"
	"github.com/blazearena/trivia-arena/internal/team"
	ws "github.com/blazearena/trivia-arena/pkg/http/ws"
)

type capture struct {
	mu   sync.Mutex
	msgs []ws.Message
}

func (c *capture) add(msg ws.Message) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *capture) ofType(msgType string) []ws.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ws.Message
	for _, m := range c.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (c *capture) waitFor(t *testing.T, msgType string) ws.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := c.ofType(msgType); len(msgs) > 0 {
			return msgs[len(msgs)-1]
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no %s message received", msgType)
	return ws.Message{}
}

func newTestClient(t *testing.T) (*Client, *capture) {
	t.Helper()
	rules := game.DefaultRules()
	rules.LifeDrainDropChance = 0
	rules.CorrectToGamble = 5 * time.Millisecond
	rules.WrongToNext = 5 * time.Millisecond
	rules.GambleResultToNext = 5 * time.Millisecond

	metrics := NewMetrics(prometheus.NewRegistry())
	client := NewClient(uuid.New(), nil, nil, metrics, rules, zerolog.Nop())
	t.Cleanup(client.Teardown)

	cap := &capture{}
	client.SetSender(cap.add)
	return client, cap
}

func dispatch(t *testing.T, c *Client, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, c.Handle(ws.Message{Type: msgType, Payload: raw}))
}

func currentQuestion(t *testing.T, cap *capture) ws.QuestionPayload {
	t.Helper()
	msg := cap.waitFor(t, ws.TypeQuestion)
	var q ws.QuestionPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &q))
	return q
}

// correctIndex recovers the right answer for a served question from the
// client's own provider.
func correctIndex(t *testing.T, c *Client, q ws.QuestionPayload) int {
	t.Helper()
	actual, err := c.provider.At(q.Index)
	require.NoError(t, err)
	for i, opt := range q.Options {
		if opt == actual.Options[actual.Answer] {
			return i
		}
	}
	t.Fatal("answer option not present")
	return -1
}

func TestClientStartGameServesQuestion(t *testing.T) {
	client, cap := newTestClient(t)

	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{PlayerName: "Ada"})

	msg := cap.waitFor(t, ws.TypePhaseChange)
	var phase ws.PhaseChangePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &phase))
	assert.Equal(t, "playing", phase.Phase)

	q := currentQuestion(t, cap)
	assert.NotEmpty(t, q.Prompt)
	assert.Len(t, q.Options, 4)
	assert.Equal(t, 15, q.TimeLimitSeconds)
}

func TestClientCorrectAnswerFlow(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})

	q := currentQuestion(t, cap)
	dispatch(t, client, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{
		QuestionID:      q.ID,
		AnswerIndex:     correctIndex(t, client, q),
		ResponseSeconds: 2.0,
	})

	msg := cap.waitFor(t, ws.TypeAnswerResult)
	var res ws.AnswerResultPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &res))
	assert.True(t, res.Correct)
	// Base 100 plus the fast-answer bonus.
	assert.Equal(t, 200, res.Points)
	assert.Equal(t, 1, res.Streak)

	// Very fast answers earn the time pressure power-up.
	earned := cap.waitFor(t, ws.TypePowerUpEarned)
	var p ws.PowerUpEarnedPayload
	require.NoError(t, json.Unmarshal(earned.Payload, &p))
	assert.Equal(t, "timePressure", p.Kind)

	// The gamble phase follows after the delay.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if client.session.Phase() == game.PhaseGamble {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, game.PhaseGamble, client.session.Phase())
}

func TestClientWrongAnswerCostsLife(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})

	q := currentQuestion(t, cap)
	wrong := (correctIndex(t, client, q) + 1) % len(q.Options)
	dispatch(t, client, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{
		QuestionID:      q.ID,
		AnswerIndex:     wrong,
		ResponseSeconds: 4.0,
	})

	msg := cap.waitFor(t, ws.TypeAnswerResult)
	var res ws.AnswerResultPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &res))
	assert.False(t, res.Correct)
	assert.Equal(t, 4, res.Lives)
	assert.Equal(t, 0, res.Points)
}

func TestClientGambleFromWrongPhase(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})

	dispatch(t, client, ws.TypePlaceGamble, ws.PlaceGamblePayload{Kind: "double"})
	msg := cap.waitFor(t, ws.TypeError)
	var errPayload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.Equal(t, "wrong_phase", errPayload.Code)
}

func TestClientGambleRoundTrip(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})

	q := currentQuestion(t, cap)
	dispatch(t, client, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{
		QuestionID:      q.ID,
		AnswerIndex:     correctIndex(t, client, q),
		ResponseSeconds: 6.0,
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && client.session.Phase() != game.PhaseGamble {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, game.PhaseGamble, client.session.Phase())

	dispatch(t, client, ws.TypePlaceGamble, ws.PlaceGamblePayload{Kind: "double"})
	msg := cap.waitFor(t, ws.TypeGambleResult)
	var res ws.GambleResultPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &res))
	assert.Equal(t, "double", res.Kind)
	if res.Won {
		assert.Equal(t, 200, res.Payout)
	} else {
		assert.Zero(t, res.Payout)
	}
}

func TestClientDuelRoundTrip(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})
	currentQuestion(t, cap)

	dispatch(t, client, ws.TypeChallengeDuel, struct{}{})
	msg := cap.waitFor(t, ws.TypeDuelUpdate)
	var update ws.DuelUpdatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &update))
	assert.Equal(t, duel.StateSelecting, update.State)

	dispatch(t, client, ws.TypeSelectOpponent, ws.SelectOpponentPayload{OpponentID: "rival"})
	require.Equal(t, game.PhaseDuel, client.session.Phase())

	msg = cap.waitFor(t, ws.TypeDuelUpdate)
	require.NoError(t, json.Unmarshal(msg.Payload, &update))
	assert.Equal(t, duel.StateActive, update.State)
	assert.Equal(t, duel.CountdownSeconds, update.CountdownSeconds)

	dispatch(t, client, ws.TypeDuelAnswer, ws.DuelAnswerPayload{Side: "player", Correct: true, ElapsedSeconds: 1.2})
	dispatch(t, client, ws.TypeDuelAnswer, ws.DuelAnswerPayload{Side: "opponent", Correct: false, ElapsedSeconds: 2.0})

	res := cap.waitFor(t, ws.TypeDuelResult)
	var result ws.DuelResultPayload
	require.NoError(t, json.Unmarshal(res.Payload, &result))
	assert.Equal(t, "player", result.Winner)
	assert.Equal(t, duel.WinnerAward, result.PointsWon)
	assert.Equal(t, duel.WinnerAward, client.session.Snapshot().Score)

	dispatch(t, client, ws.TypeDuelContinue, struct{}{})
	assert.Equal(t, game.PhasePlaying, client.session.Phase())
}

func TestClientDuelCooldownAfterDuel(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})
	currentQuestion(t, cap)

	dispatch(t, client, ws.TypeChallengeDuel, struct{}{})
	dispatch(t, client, ws.TypeSelectOpponent, ws.SelectOpponentPayload{OpponentID: "rival"})
	dispatch(t, client, ws.TypeDuelAnswer, ws.DuelAnswerPayload{Side: "player", Correct: true, ElapsedSeconds: 1.0})
	dispatch(t, client, ws.TypeDuelAnswer, ws.DuelAnswerPayload{Side: "opponent", Correct: false, ElapsedSeconds: 2.0})
	dispatch(t, client, ws.TypeDuelContinue, struct{}{})

	dispatch(t, client, ws.TypeChallengeDuel, struct{}{})
	msg := cap.waitFor(t, ws.TypeError)
	var errPayload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.Equal(t, "duel_cooldown", errPayload.Code)
}

func TestClientTogglePoolOnlyFromMenu(t *testing.T) {
	client, cap := newTestClient(t)

	dispatch(t, client, ws.TypeTogglePool, struct{}{})
	msg := cap.waitFor(t, ws.TypePoolToggled)
	var toggled ws.PoolToggledPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &toggled))
	assert.Equal(t, "alternate", toggled.Mode)

	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})
	dispatch(t, client, ws.TypeTogglePool, struct{}{})
	errMsg := cap.waitFor(t, ws.TypeError)
	var errPayload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &errPayload))
	assert.Equal(t, "wrong_phase", errPayload.Code)
}

func TestClientRestartReturnsToMenu(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})
	currentQuestion(t, cap)

	dispatch(t, client, ws.TypeRestartGame, struct{}{})
	assert.Equal(t, game.PhaseMenu, client.session.Phase())
	assert.Equal(t, 0, client.session.Snapshot().Score)
}

func TestClientSoloPowerUpAppliesLocally(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})
	currentQuestion(t, cap)

	client.inventory.Earn(powerup.KindFreeze)
	dispatch(t, client, ws.TypeUsePowerUp, ws.UsePowerUpPayload{Kind: "freeze"})

	msg := cap.waitFor(t, ws.TypeEffectApplied)
	var applied ws.EffectAppliedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &applied))
	assert.Equal(t, "freeze", applied.Kind)
	assert.True(t, client.effects.Has(powerup.KindFreeze))
	assert.Equal(t, 0, client.inventory.Count(powerup.KindFreeze))
}

func TestClientSoloPowerUpWithoutUnitFails(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})

	dispatch(t, client, ws.TypeUsePowerUp, ws.UsePowerUpPayload{Kind: "freeze"})
	msg := cap.waitFor(t, ws.TypeError)
	var errPayload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.Equal(t, "power_up_failed", errPayload.Code)
}

func TestClientJudgesAgainstServedOrder(t *testing.T) {
	client, cap := newTestClient(t)
	dispatch(t, client, ws.TypeStartGame, ws.StartGamePayload{})
	currentQuestion(t, cap)

	// Present the first question with its options rotated one slot, the
	// way a scramble effect would reorder them.
	orig, err := client.provider.At(0)
	require.NoError(t, err)
	rotated := orig
	rotated.Options = append([]string(nil), orig.Options[1:]...)
	rotated.Options = append(rotated.Options, orig.Options[0])
	rotated.Answer = (orig.Answer + len(orig.Options) - 1) % len(orig.Options)
	client.mu.Lock()
	client.served = rotated
	client.servedIndex = 0
	client.mu.Unlock()

	// The index the player picked refers to the order they saw.
	dispatch(t, client, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{
		QuestionID:      rotated.ID,
		AnswerIndex:     rotated.Answer,
		ResponseSeconds: 4.0,
	})

	msg := cap.waitFor(t, ws.TypeAnswerResult)
	var res ws.AnswerResultPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &res))
	assert.True(t, res.Correct)
}

func TestClientWatchesLateJoiners(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := team.NewRedisStore(rdb, zerolog.Nop())

	rules := game.DefaultRules()
	rules.LifeDrainDropChance = 0
	metrics := NewMetrics(prometheus.NewRegistry())
	client := NewClient(uuid.New(), nil, store, metrics, rules, zerolog.Nop())
	t.Cleanup(client.Teardown)
	cap := &capture{}
	client.SetSender(cap.add)

	dispatch(t, client, ws.TypeJoinTeam, ws.JoinTeamPayload{Mode: "standard", TeamName: "Alpha"})
	client.mu.Lock()
	sid := client.syncer.SessionID()
	client.mu.Unlock()
	require.NotEmpty(t, sid)

	// An opponent joins after us; the status change must pick them up.
	ctx := context.Background()
	inv := powerup.NewInventory()
	effects := powerup.NewEffectList()
	session := game.NewSession(rules, inv, effects, rand.New(rand.NewSource(1)), zerolog.Nop())
	t.Cleanup(session.Teardown)
	rival := team.NewSyncer(store, session, inv, effects, "standard", "rival", "Rivals", zerolog.Nop())
	t.Cleanup(rival.Close)
	_, err = rival.GetOrCreateActiveSession(ctx, sid)
	require.NoError(t, err)
	session.Start(10)
	require.NoError(t, rival.JoinSession(ctx))

	require.Eventually(t, func() bool {
		require.NoError(t, rival.SyncMyTeamData(ctx))
		for _, m := range cap.ofType(ws.TypeTeamUpdate) {
			var u ws.TeamUpdatePayload
			if json.Unmarshal(m.Payload, &u) == nil && u.TeamID == "rival" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	// Their scoring surfaces as a notification.
	session.AddPoints(100)
	require.NoError(t, rival.SyncMyTeamData(ctx))
	require.Eventually(t, func() bool {
		for _, m := range cap.ofType(ws.TypeNotification) {
			var n ws.NotificationPayload
			if json.Unmarshal(m.Payload, &n) == nil && n.Type == team.NotifyAnswerCorrect {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestClientUnknownMessageType(t *testing.T) {
	client, cap := newTestClient(t)

	require.NoError(t, client.Handle(ws.Message{Type: "bogus"}))
	msg := cap.waitFor(t, ws.TypeError)
	var errPayload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.Equal(t, "unknown_type", errPayload.Code)
}
