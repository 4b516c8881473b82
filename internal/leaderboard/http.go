package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	httperrors "github.com/blazearena/trivia-arena/pkg/http/errors"
	ws "github.com/blazearena/trivia-arena/pkg/http/ws"
)

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc    *Service
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, pool *pgxpool.Pool, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		pool:   pool,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet responds with the current board for a mode.
// Route: GET /v1/leaderboards/{mode}?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "method not allowed")
		return
	}

	mode := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/leaderboards/"), "/")
	if !isValidMode(mode) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownMode, "unknown leaderboard mode")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	ctx := r.Context()
	var (
		top    []ws.LeaderboardEntry
		source = "redis"
	)

	if h.svc != nil {
		if entries, err := h.svc.Top(ctx, mode, limit); err == nil {
			top = toWireEntries(entries)
		} else {
			h.logger.Warn().Err(err).Str("mode", mode).Msg("redis leaderboard fetch failed")
		}
	}

	if len(top) == 0 {
		source = "snapshot"
		top = h.snapshotFallback(ctx, mode, limit)
	}

	writeJSON(w, map[string]interface{}{
		"mode":        mode,
		"top":         top,
		"source":      source,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

const latestSnapshotSQL = `
SELECT entries FROM leaderboard_snapshots
WHERE mode = $1
ORDER BY generated_at DESC
LIMIT 1`

func (h *HTTPHandler) snapshotFallback(ctx context.Context, mode string, limit int) []ws.LeaderboardEntry {
	if h.pool == nil {
		return nil
	}

	var raw []byte
	if err := h.pool.QueryRow(ctx, latestSnapshotSQL, mode).Scan(&raw); err != nil {
		h.logger.Warn().Err(err).Str("mode", mode).Msg("snapshot fetch failed")
		return nil
	}

	var entries []ws.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		h.logger.Warn().Err(err).Msg("snapshot payload decode failed")
		return nil
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func isValidMode(mode string) bool {
	for _, m := range Modes() {
		if m == mode {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
