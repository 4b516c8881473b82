package team

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store is the replicated key-value surface the sync layer runs on. Paths
// are slash-delimited; Subscribe delivers the raw value written to a path
// until the returned stop function is called.
type Store interface {
	Write(ctx context.Context, path string, value any) error
	Merge(ctx context.Context, path string, fields map[string]any) error
	Read(ctx context.Context, path string, dest any) error
	Subscribe(ctx context.Context, path string, fn func([]byte)) (func(), error)
	SubscribePattern(ctx context.Context, pattern string, fn func([]byte)) (func(), error)
}

// Replicated path layout.
func TeamPath(mode, sessionID, teamID string) string {
	return fmt.Sprintf("games/%s/%s/teams/%s", mode, sessionID, teamID)
}

func StatusPath(mode, sessionID string) string {
	return fmt.Sprintf("games/%s/%s/status", mode, sessionID)
}

func NotificationPath(mode, sessionID, id string) string {
	return fmt.Sprintf("games/%s/%s/notifications/%s", mode, sessionID, id)
}

const (
	keyPrefix     = "arena:"
	channelPrefix = "arena:ch:"
)

// RedisStore keeps each path as a JSON value and publishes every written
// value on a per-path channel so subscribed replicas see it immediately.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger.With().Str("component", "team_store").Logger(),
	}
}

func (s *RedisStore) Write(ctx context.Context, path string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := s.client.Set(ctx, keyPrefix+path, payload, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := s.client.Publish(ctx, channelPrefix+path, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

// Merge overlays fields onto the JSON object stored at path. A missing
// record starts from an empty object.
func (s *RedisStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	raw, err := s.client.Get(ctx, keyPrefix+path).Bytes()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read %s for merge: %w", path, err)
	}

	current := make(map[string]any)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode %s for merge: %w", path, err)
		}
	}
	for k, v := range fields {
		current[k] = v
	}
	return s.Write(ctx, path, current)
}

// ErrNotFound is returned by Read when the path has no value.
var ErrNotFound = fmt.Errorf("path not found")

func (s *RedisStore) Read(ctx context.Context, path string, dest any) error {
	raw, err := s.client.Get(ctx, keyPrefix+path).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context, path string, fn func([]byte)) (func(), error) {
	sub := s.client.Subscribe(ctx, channelPrefix+path)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	ch := sub.Channel()
	go func() {
		for msg := range ch {
			fn([]byte(msg.Payload))
		}
	}()

	s.logger.Debug().Str("path", path).Msg("subscribed")
	return func() { _ = sub.Close() }, nil
}

// SubscribePattern delivers values written to any path matching a glob
// pattern, for path families like notifications/{id}.
func (s *RedisStore) SubscribePattern(ctx context.Context, pattern string, fn func([]byte)) (func(), error) {
	sub := s.client.PSubscribe(ctx, channelPrefix+pattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe pattern %s: %w", pattern, err)
	}

	ch := sub.Channel()
	go func() {
		for msg := range ch {
			fn([]byte(msg.Payload))
		}
	}()

	s.logger.Debug().Str("pattern", pattern).Msg("pattern subscribed")
	return func() { _ = sub.Close() }, nil
}
