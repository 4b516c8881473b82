package leaderboard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SnapshotWorker periodically persists the Redis boards into Postgres so a
// restart or Redis flush does not lose the all-time standings.
type SnapshotWorker struct {
	svc      *Service
	pool     *pgxpool.Pool
	logger   zerolog.Logger
	interval time.Duration
}

func NewSnapshotWorker(svc *Service, pool *pgxpool.Pool, interval time.Duration, logger zerolog.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SnapshotWorker{
		svc:      svc,
		pool:     pool,
		logger:   logger.With().Str("component", "leaderboard_snapshot_worker").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.svc == nil || w.pool == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	for _, mode := range Modes() {
		if err := w.snapshotMode(ctx, mode); err != nil {
			w.logger.Warn().Err(err).Str("mode", mode).Msg("snapshot failed")
		}
	}
}

const insertSnapshotSQL = `
INSERT INTO leaderboard_snapshots (mode, generated_at, entries, source_hash)
VALUES ($1, $2, $3, $4)
ON CONFLICT (mode, source_hash) DO NOTHING`

func (w *SnapshotWorker) snapshotMode(ctx context.Context, mode string) error {
	entries, err := w.svc.Top(ctx, mode, 0)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	data, err := json.Marshal(toWireEntries(entries))
	if err != nil {
		return err
	}
	sourceHash := sha256.Sum256(data)
	now := time.Now().UTC()

	if _, err := w.pool.Exec(ctx, insertSnapshotSQL, mode, now, data, hex.EncodeToString(sourceHash[:])); err != nil {
		return err
	}

	w.logger.Info().
		Str("mode", mode).
		Int("entries", len(entries)).
		Time("generated_at", now).
		Msg("leaderboard snapshot persisted")
	return nil
}
