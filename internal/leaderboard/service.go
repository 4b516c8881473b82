package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/blazearena/trivia-arena/internal/question"
)

// Entry is one leaderboard record sent to clients.
type Entry struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Score     int     `json:"score"`
	MaxStreak int     `json:"maxStreak"`
	Accuracy  float64 `json:"accuracy"`
	Date      string  `json:"date"`
}

// ServiceOptions configures leaderboard behavior.
type ServiceOptions struct {
	TopN           int
	PubSubChannel  string
	RedisKeyPrefix string
}

// Service keeps one top-N board per game mode in Redis and publishes every
// change over Pub/Sub. Ordering is score descending with max streak as the
// tie-break, packed into the sorted-set score as score + maxStreak/1e6.
type Service struct {
	redis         *redis.Client
	logger        zerolog.Logger
	topN          int
	pubsubChannel string
	prefix        string
}

const tieBreakScale = 1e6

func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	channel := opts.PubSubChannel
	if channel == "" {
		channel = "lb:updates"
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb"
	}
	return &Service{
		redis:         redis,
		logger:        logger.With().Str("component", "leaderboard").Logger(),
		topN:          topN,
		pubsubChannel: channel,
		prefix:        prefix,
	}
}

// Modes returns the boards this service maintains.
func Modes() []string {
	return []string{question.ModeStandard, question.ModeAlternate}
}

func composite(score, maxStreak int) float64 {
	return float64(score) + float64(maxStreak)/tieBreakScale
}

// IsHighScore reports whether score would place on the mode's board.
func (s *Service) IsHighScore(ctx context.Context, mode string, score int) (bool, error) {
	zKey := s.boardKey(mode)
	count, err := s.redis.ZCard(ctx, zKey).Result()
	if err != nil {
		return false, fmt.Errorf("check high score: %w", err)
	}
	if count < int64(s.topN) {
		return true, nil
	}

	lowest, err := s.redis.ZRangeWithScores(ctx, zKey, 0, 0).Result()
	if err != nil {
		return false, fmt.Errorf("check high score: %w", err)
	}
	if len(lowest) == 0 {
		return true, nil
	}
	return float64(score) > lowest[0].Score, nil
}

// Record inserts an entry onto the mode's board and trims it back to top N.
func (s *Service) Record(ctx context.Context, mode string, entry Entry) error {
	if entry.Date == "" {
		entry.Date = time.Now().UTC().Format(time.RFC3339)
	}

	zKey := s.boardKey(mode)
	metaKey := s.metaKey(mode, entry.ID)

	pipe := s.redis.TxPipeline()
	pipe.ZAdd(ctx, zKey, redis.Z{Score: composite(entry.Score, entry.MaxStreak), Member: entry.ID})
	pipe.HSet(ctx, metaKey, map[string]interface{}{
		"name":       entry.Name,
		"max_streak": entry.MaxStreak,
		"accuracy":   entry.Accuracy,
		"date":       entry.Date,
	})
	pipe.ZRemRangeByRank(ctx, zKey, 0, int64(-s.topN-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record score for mode %s: %w", mode, err)
	}

	go s.publishUpdate(context.Background(), mode)
	return nil
}

// Top returns up to limit entries for a mode, best first.
func (s *Service) Top(ctx context.Context, mode string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	results, err := s.redis.ZRevRangeWithScores(ctx, s.boardKey(mode), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		id := z.Member.(string)
		meta, err := s.readMeta(ctx, mode, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("failed to read leaderboard metadata")
			continue
		}
		meta.Score = int(math.Floor(z.Score))
		entries = append(entries, *meta)
	}
	return entries, nil
}

func (s *Service) publishUpdate(ctx context.Context, mode string) {
	entries, err := s.Top(ctx, mode, s.topN)
	if err != nil {
		s.logger.Warn().Err(err).Str("mode", mode).Msg("failed to collect leaderboard update")
		return
	}

	payload := UpdatePayload{Mode: mode, Top: toWireEntries(entries)}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal leaderboard update")
		return
	}
	if err := s.redis.Publish(ctx, s.pubsubChannel, data).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish leaderboard update")
	}
}

func (s *Service) readMeta(ctx context.Context, mode, id string) (*Entry, error) {
	data, err := s.redis.HGetAll(ctx, s.metaKey(mode, id)).Result()
	if err != nil {
		return nil, err
	}

	entry := &Entry{ID: id}
	if len(data) == 0 {
		return entry, nil
	}
	entry.Name = data["name"]
	entry.MaxStreak = parseInt(data["max_streak"])
	entry.Accuracy = parseFloat(data["accuracy"])
	entry.Date = data["date"]
	return entry, nil
}

func (s *Service) boardKey(mode string) string {
	return fmt.Sprintf("%s:%s", s.prefix, mode)
}

func (s *Service) metaKey(mode, id string) string {
	return fmt.Sprintf("%s:%s:meta:%s", s.prefix, mode, id)
}

func parseFloat(val string) float64 {
	if val == "" {
		return 0
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(val string) int {
	if val == "" {
		return 0
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return i
}
