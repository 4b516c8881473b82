package ws

import "encoding/json"

// MessageType constants for the arena WebSocket protocol.
const (
	// Client -> Server
	TypeStartGame      = "start_game"
	TypeSubmitAnswer   = "submit_answer"
	TypeBankPoints     = "bank_points"
	TypePlaceGamble    = "place_gamble"
	TypeChallengeDuel  = "challenge_duel"
	TypeSelectOpponent = "select_opponent"
	TypeCancelDuel     = "cancel_duel"
	TypeDuelAnswer     = "duel_answer"
	TypeDuelContinue   = "duel_continue"
	TypeUsePowerUp     = "use_power_up"
	TypeJoinTeam       = "join_team"
	TypeSetReady       = "set_ready"
	TypeTogglePool     = "toggle_pool"
	TypeRestartGame    = "restart_game"

	// Server -> Client
	TypePhaseChange       = "phase_change"
	TypeQuestion          = "question"
	TypeAnswerResult      = "answer_result"
	TypeGambleResult      = "gamble_result"
	TypePowerUpEarned     = "power_up_earned"
	TypeEffectApplied     = "effect_applied"
	TypeDuelUpdate        = "duel_update"
	TypeDuelResult        = "duel_result"
	TypeTeamUpdate        = "team_update"
	TypeNotification      = "notification"
	TypeGameOver          = "game_over"
	TypePoolToggled       = "pool_toggled"
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeError             = "error"
	TypePing              = "ping"
	TypePong              = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type StartGamePayload struct {
	PlayerName string `json:"player_name"`
}

type SubmitAnswerPayload struct {
	QuestionID      int     `json:"question_id"`
	AnswerIndex     int     `json:"answer_index"`
	ResponseSeconds float64 `json:"response_seconds"`
}

type PlaceGamblePayload struct {
	Kind string `json:"kind"` // double, triple, allin
}

type SelectOpponentPayload struct {
	OpponentID string `json:"opponent_id"`
}

type DuelAnswerPayload struct {
	Side           string  `json:"side"` // player or opponent
	Correct        bool    `json:"correct"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

type UsePowerUpPayload struct {
	Kind     string `json:"kind"`
	TargetID string `json:"target_id"`
}

type JoinTeamPayload struct {
	SessionID string `json:"session_id,omitempty"`
	TeamName  string `json:"team_name"`
	Mode      string `json:"mode"`
}

type SetReadyPayload struct {
	Ready bool `json:"ready"`
}

// Server Messages (outgoing)

type PhaseChangePayload struct {
	Phase string `json:"phase"`
}

type QuestionPayload struct {
	Index            int      `json:"index"`
	ID               int      `json:"id"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	Category         string   `json:"category"`
	TimeLimitSeconds int      `json:"time_limit_seconds"`
	Scrambled        bool     `json:"scrambled"`
}

type AnswerResultPayload struct {
	Correct    bool     `json:"correct"`
	Points     int      `json:"points"`
	SpeedBonus int      `json:"speed_bonus"`
	Frozen     bool     `json:"frozen"`
	Earned     []string `json:"earned,omitempty"`
	Score      int      `json:"score"`
	Streak     int      `json:"streak"`
	Lives      int      `json:"lives"`
	Multiplier int      `json:"multiplier"`
}

type GambleResultPayload struct {
	Kind   string `json:"kind"`
	Won    bool   `json:"won"`
	Payout int    `json:"payout"`
	Score  int    `json:"score"`
}

type PowerUpEarnedPayload struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

type EffectAppliedPayload struct {
	Kind      string `json:"kind"`
	Duration  int    `json:"duration"`
	AppliedAt int64  `json:"applied_at"`
}

type DuelUpdatePayload struct {
	State              string `json:"state"`
	OpponentID         string `json:"opponent_id,omitempty"`
	OpponentName       string `json:"opponent_name,omitempty"`
	QuestionsUntilDuel int    `json:"questions_until_duel"`
	CountdownSeconds   int    `json:"countdown_seconds,omitempty"`
}

type DuelResultPayload struct {
	Winner       string  `json:"winner"`
	PlayerTime   float64 `json:"player_time"`
	OpponentTime float64 `json:"opponent_time"`
	PointsWon    int     `json:"points_won"`
	LifeLost     bool    `json:"life_lost"`
}

type TeamUpdatePayload struct {
	TeamID    string `json:"team_id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Streak    int    `json:"streak"`
	Lives     int    `json:"lives"`
	Phase     string `json:"phase"`
}

type NotificationPayload struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type GameOverPayload struct {
	Score         int     `json:"score"`
	MaxStreak     int     `json:"max_streak"`
	Accuracy      float64 `json:"accuracy"`
	GamblesWon    int     `json:"gambles_won"`
	FastestAnswer float64 `json:"fastest_answer"`
	TotalGameTime float64 `json:"total_game_time"`
	HighScore     bool    `json:"high_score"`
	CategoryBonus bool    `json:"category_bonus"`
}

type LeaderboardUpdatePayload struct {
	Mode string             `json:"mode"`
	Top  []LeaderboardEntry `json:"top"`
}

type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Score     int     `json:"score"`
	MaxStreak int     `json:"maxStreak"`
	Accuracy  float64 `json:"accuracy"`
	Date      string  `json:"date"`
}

type PoolToggledPayload struct {
	Mode string `json:"mode"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
