package arena

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/blazearena/trivia-arena/internal/game"
	"github.com/blazearena/trivia-arena/internal/leaderboard"
	"github.com/blazearena/trivia-arena/internal/team"
	ws "github.com/blazearena/trivia-arena/pkg/http/ws"
)

// Handler upgrades WebSocket connections and runs one game client per
// connection. The team store is optional; without it the team sync
// operations are rejected.
type Handler struct {
	hub      *ws.Hub
	boards   *leaderboard.Service
	store    team.Store
	metrics  *Metrics
	rules    game.Rules
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *ws.Hub, boards *leaderboard.Service, store team.Store, metrics *Metrics, rules game.Rules, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		boards:  boards,
		store:   store,
		metrics: metrics,
		rules:   rules,
		logger:  logger.With().Str("component", "arena").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleWS serves GET /ws/arena.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	playerID := uuid.New()
	logger := h.logger.With().Str("player_id", playerID.String()).Logger()
	conn := ws.NewConnection(socket, logger)
	h.hub.RegisterConnection(playerID, conn)
	h.metrics.Connections.Inc()

	client := NewClient(playerID, h.boards, h.store, h.metrics, h.rules, logger)
	client.SetSender(func(msg ws.Message) {
		if err := h.hub.SendToPlayer(playerID, msg); err != nil {
			logger.Warn().Err(err).Str("type", msg.Type).Msg("send dropped")
		}
	})
	client.SetSessionHooks(
		func(sessionID string) { h.hub.JoinSession(sessionID, playerID) },
		func(sessionID string) { h.hub.LeaveSession(sessionID, playerID) },
		func(sessionID string, msg ws.Message) {
			if err := h.hub.BroadcastToSession(sessionID, msg); err != nil {
				logger.Debug().Err(err).Str("type", msg.Type).Msg("session broadcast dropped")
			}
		},
	)

	go conn.WritePump()
	conn.ReadPump(client.Handle)

	client.Teardown()
	h.hub.UnregisterConnection(playerID)
	h.metrics.Connections.Dec()
	logger.Info().Msg("client disconnected")
}
