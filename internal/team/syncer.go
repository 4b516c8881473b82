package team

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blazearena/trivia-arena/internal/game"
	"github.com/blazearena/trivia-arena/internal/powerup"
)

// StealFraction of the victim's score moved by a point steal, floored.
const StealFraction = 0.15

// Syncer replicates one team's state to the store and reconciles remote
// writes back into the local session. Remote changes are applied as deltas,
// never as absolute overwrites.
type Syncer struct {
	store     Store
	session   *game.Session
	inventory *powerup.Inventory
	effects   *powerup.EffectList
	logger    zerolog.Logger

	mode      string
	sessionID string
	teamID    string
	teamName  string

	mu            sync.Mutex
	lastSeen      Record
	hasSeen       bool
	lastWrittenAt int64
	ready         bool
	members       []string
	stops         []func()
}

func NewSyncer(store Store, session *game.Session, inv *powerup.Inventory, effects *powerup.EffectList, mode, teamID, teamName string, logger zerolog.Logger) *Syncer {
	return &Syncer{
		store:     store,
		session:   session,
		inventory: inv,
		effects:   effects,
		mode:      mode,
		teamID:    teamID,
		teamName:  teamName,
		logger:    logger.With().Str("component", "team_sync").Str("team_id", teamID).Logger(),
	}
}

// Mode returns the game mode this syncer replicates under.
func (s *Syncer) Mode() string {
	return s.mode
}

// SessionID returns the joined session, empty before joining.
func (s *Syncer) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// CreateSession writes a fresh active session status record and returns its id.
func (s *Syncer) CreateSession(ctx context.Context) (string, error) {
	id := uuid.NewString()
	status := SessionStatus{
		SessionID: id,
		Mode:      s.mode,
		Active:    true,
		Teams:     map[string]string{},
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.store.Write(ctx, StatusPath(s.mode, id), status); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.mu.Lock()
	s.sessionID = id
	s.mu.Unlock()
	s.logger.Info().Str("session_id", id).Msg("session created")
	return id, nil
}

// GetOrCreateActiveSession joins the given session when its status record
// exists and is active, otherwise creates a new one.
func (s *Syncer) GetOrCreateActiveSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		var status SessionStatus
		err := s.store.Read(ctx, StatusPath(s.mode, sessionID), &status)
		if err == nil && status.Active {
			s.mu.Lock()
			s.sessionID = sessionID
			s.mu.Unlock()
			return sessionID, nil
		}
		if err != nil && err != ErrNotFound {
			return "", err
		}
	}
	return s.CreateSession(ctx)
}

// JoinSession registers this team on the session status record and writes
// the team record, appending this member to an existing team's name list
// when the record is already present.
func (s *Syncer) JoinSession(ctx context.Context) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		return fmt.Errorf("join session: no session")
	}

	var status SessionStatus
	if err := s.store.Read(ctx, StatusPath(s.mode, sessionID), &status); err != nil {
		return fmt.Errorf("join session: %w", err)
	}
	if status.Teams == nil {
		status.Teams = map[string]string{}
	}
	status.Teams[s.teamID] = StatusWaiting
	if err := s.store.Write(ctx, StatusPath(s.mode, sessionID), status); err != nil {
		return fmt.Errorf("join session: %w", err)
	}

	members := []string{}
	var existing Record
	if err := s.store.Read(ctx, TeamPath(s.mode, sessionID, s.teamID), &existing); err == nil {
		members = existing.Members
	}
	found := false
	for _, m := range members {
		if m == s.teamName {
			found = true
			break
		}
	}
	if !found {
		members = append(members, s.teamName)
	}
	s.mu.Lock()
	s.members = members
	s.mu.Unlock()

	return s.SyncMyTeamData(ctx)
}

// SetStatus updates this team's readiness on the status record and mirrors
// it onto the replicated team record.
func (s *Syncer) SetStatus(ctx context.Context, teamStatus string) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.ready = teamStatus == StatusReady
	s.mu.Unlock()

	var status SessionStatus
	if err := s.store.Read(ctx, StatusPath(s.mode, sessionID), &status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if status.Teams == nil {
		status.Teams = map[string]string{}
	}
	status.Teams[s.teamID] = teamStatus
	if err := s.store.Write(ctx, StatusPath(s.mode, sessionID), status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return s.SyncMyTeamData(ctx)
}

// BothTeamsReady reports whether at least two teams joined and every team
// record carries the ready flag.
func (s *Syncer) BothTeamsReady(ctx context.Context) (bool, error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	var status SessionStatus
	if err := s.store.Read(ctx, StatusPath(s.mode, sessionID), &status); err != nil {
		return false, err
	}
	if len(status.Teams) < 2 {
		return false, nil
	}
	for teamID := range status.Teams {
		var rec Record
		if err := s.store.Read(ctx, TeamPath(s.mode, sessionID, teamID), &rec); err != nil {
			return false, nil
		}
		if !rec.Ready {
			return false, nil
		}
	}
	return true, nil
}

// SyncMyTeamData writes the full current team record.
func (s *Syncer) SyncMyTeamData(ctx context.Context) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		return fmt.Errorf("sync team: no session")
	}

	rec := s.buildRecord()
	if err := s.store.Write(ctx, TeamPath(s.mode, sessionID, s.teamID), rec); err != nil {
		return fmt.Errorf("sync team: %w", err)
	}

	s.mu.Lock()
	s.lastSeen = rec
	s.hasSeen = true
	s.lastWrittenAt = rec.UpdatedAt
	s.mu.Unlock()
	return nil
}

func (s *Syncer) buildRecord() Record {
	snap := s.session.Snapshot()
	s.mu.Lock()
	ready := s.ready
	members := append([]string(nil), s.members...)
	s.mu.Unlock()
	rec := Record{
		TeamID:        s.teamID,
		Name:          s.teamName,
		Members:       members,
		Ready:         ready,
		Score:         snap.Score,
		Streak:        snap.Streak,
		MaxStreak:     snap.MaxStreak,
		Lives:         snap.Lives,
		Phase:         string(snap.Phase),
		QuestionIndex: snap.QuestionIndex,
		PowerUps:      map[string]int{},
		ActiveEffects: s.effects.Snapshot(),
	}
	for kind, count := range s.inventory.Counts() {
		rec.PowerUps[string(kind)] = count
	}
	rec.Touch()
	return rec
}

// ListenToMyTeam subscribes to this team's own record and folds remote
// deltas (attacks from the opponent) into the local session. onDelta is
// called once per non-empty delta batch after the deltas are applied; it
// may be nil.
func (s *Syncer) ListenToMyTeam(ctx context.Context, onDelta func(Record, []Delta)) (func(), error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	stop, err := s.store.Subscribe(ctx, TeamPath(s.mode, sessionID, s.teamID), func(payload []byte) {
		var next Record
		if err := json.Unmarshal(payload, &next); err != nil {
			s.logger.Warn().Err(err).Msg("drop malformed team record")
			return
		}
		s.reconcile(next, onDelta)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
	return stop, nil
}

// ListenToNotifications subscribes to the session's notification records
// and reports each one written by another team.
func (s *Syncer) ListenToNotifications(ctx context.Context, fn func(Notification)) (func(), error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	stop, err := s.store.SubscribePattern(ctx, NotificationPath(s.mode, sessionID, "*"), func(payload []byte) {
		var n Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			s.logger.Warn().Err(err).Msg("drop malformed notification")
			return
		}
		if n.From == s.teamID {
			return
		}
		fn(n)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
	return stop, nil
}

// ListenToStatus subscribes to the session status record.
func (s *Syncer) ListenToStatus(ctx context.Context, fn func(SessionStatus)) (func(), error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	stop, err := s.store.Subscribe(ctx, StatusPath(s.mode, sessionID), func(payload []byte) {
		var status SessionStatus
		if err := json.Unmarshal(payload, &status); err != nil {
			s.logger.Warn().Err(err).Msg("drop malformed session status")
			return
		}
		fn(status)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
	return stop, nil
}

// ListenToOpponent subscribes to another team's record and reports its
// deltas through onDelta.
func (s *Syncer) ListenToOpponent(ctx context.Context, opponentID string, onDelta func(Record, []Delta)) (func(), error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	var (
		mu   sync.Mutex
		prev Record
		seen bool
	)
	stop, err := s.store.Subscribe(ctx, TeamPath(s.mode, sessionID, opponentID), func(payload []byte) {
		var next Record
		if err := json.Unmarshal(payload, &next); err != nil {
			s.logger.Warn().Err(err).Msg("drop malformed opponent record")
			return
		}
		mu.Lock()
		var deltas []Delta
		if seen {
			deltas = Diff(prev, next)
		}
		prev = next
		seen = true
		mu.Unlock()
		onDelta(next, deltas)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
	return stop, nil
}

// reconcile folds a remote version of our own record into local state as
// deltas over whatever we wrote last. Snapshots stamped at or before our
// own last write are echoes and carry nothing new.
func (s *Syncer) reconcile(next Record, onDelta func(Record, []Delta)) {
	s.mu.Lock()
	if !s.hasSeen {
		s.lastSeen = next
		s.hasSeen = true
		s.mu.Unlock()
		return
	}
	if next.UpdatedAt != 0 && next.UpdatedAt <= s.lastWrittenAt {
		s.mu.Unlock()
		return
	}
	deltas := Diff(s.lastSeen, next)
	s.lastSeen = next
	s.mu.Unlock()

	for _, d := range deltas {
		switch d.Kind {
		case DeltaLivesLost:
			for i := 0; i < d.Amount; i++ {
				s.session.ConsumeLife()
			}
			s.logger.Info().Int("lost", d.Amount).Msg("remote life drain")
		case DeltaScoreLost:
			s.session.AddPoints(-d.Amount)
			s.logger.Info().Int("stolen", d.Amount).Msg("remote point steal")
		case DeltaScoreGained:
			s.session.AddPoints(d.Amount)
		case DeltaEffectApplied:
			s.effects.Add(d.Effect)
			s.logger.Info().Str("effect", string(d.Effect.Kind)).Msg("remote effect applied")
		}
	}

	if len(deltas) > 0 && onDelta != nil {
		onDelta(next, deltas)
	}
}

// UsePowerUp consumes one unit of kind and applies it to the target team's
// record. The unit stays consumed even when the remote write fails.
func (s *Syncer) UsePowerUp(ctx context.Context, kind powerup.Kind, targetID string) error {
	if !s.inventory.Use(kind) {
		return fmt.Errorf("use power-up: none of %s held", kind)
	}

	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	path := TeamPath(s.mode, sessionID, targetID)

	var victim Record
	if err := s.store.Read(ctx, path, &victim); err != nil {
		return fmt.Errorf("use power-up: %w", err)
	}

	switch kind {
	case powerup.KindPointSteal:
		stolen := int(float64(victim.Score) * StealFraction)
		victim.Score -= stolen
		if err := s.writeVictim(ctx, path, &victim); err != nil {
			return err
		}
		s.session.AddPoints(stolen)
		_ = s.SyncMyTeamData(ctx)
		s.notify(ctx, NotifyPointsStolen, fmt.Sprintf("%s stole %d points", s.teamName, stolen))
	case powerup.KindLifeDrain:
		victim.Lives--
		if err := s.writeVictim(ctx, path, &victim); err != nil {
			return err
		}
		s.notify(ctx, NotifyPowerUpUsed, fmt.Sprintf("%s drained a life", s.teamName))
	default:
		victim.ActiveEffects = append(victim.ActiveEffects, powerup.NewEffect(kind, targetID))
		if err := s.writeVictim(ctx, path, &victim); err != nil {
			return err
		}
		s.notify(ctx, NotifyPowerUpUsed, fmt.Sprintf("%s used %s", s.teamName, kind))
	}

	s.logger.Info().Str("kind", string(kind)).Str("target", targetID).Msg("power-up used")
	return nil
}

func (s *Syncer) writeVictim(ctx context.Context, path string, victim *Record) error {
	prev := victim.UpdatedAt
	victim.Touch()
	// stamps must strictly advance or the victim drops this as an echo
	if victim.UpdatedAt <= prev {
		victim.UpdatedAt = prev + 1
	}
	if err := s.store.Write(ctx, path, victim); err != nil {
		return fmt.Errorf("use power-up: %w", err)
	}
	return nil
}

// SendNotification writes a transient event record other replicas can show.
func (s *Syncer) SendNotification(ctx context.Context, notifType, message string) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	n := Notification{
		ID:        uuid.NewString(),
		Type:      notifType,
		From:      s.teamID,
		Message:   message,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.store.Write(ctx, NotificationPath(s.mode, sessionID, n.ID), n); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (s *Syncer) notify(ctx context.Context, notifType, message string) {
	if err := s.SendNotification(ctx, notifType, message); err != nil {
		s.logger.Warn().Err(err).Msg("notification dropped")
	}
}

// Close stops all subscriptions.
func (s *Syncer) Close() {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}
