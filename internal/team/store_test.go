package team

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, zerolog.Nop())
}

func TestStoreWriteRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	path := TeamPath("standard", "s1", "t1")

	rec := Record{TeamID: "t1", Name: "Alpha", Score: 300, Lives: 5}
	require.NoError(t, store.Write(ctx, path, rec))

	var got Record
	require.NoError(t, store.Read(ctx, path, &got))
	assert.Equal(t, rec.TeamID, got.TeamID)
	assert.Equal(t, 300, got.Score)
}

func TestStoreReadMissingPath(t *testing.T) {
	store := newTestStore(t)

	var got Record
	err := store.Read(context.Background(), TeamPath("standard", "s1", "nope"), &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreMergeOverlaysFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	path := StatusPath("standard", "s1")

	require.NoError(t, store.Write(ctx, path, map[string]any{"active": true, "mode": "standard"}))
	require.NoError(t, store.Merge(ctx, path, map[string]any{"active": false}))

	var got map[string]any
	require.NoError(t, store.Read(ctx, path, &got))
	assert.Equal(t, false, got["active"])
	assert.Equal(t, "standard", got["mode"])
}

func TestStoreSubscribeDeliversWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	path := TeamPath("standard", "s1", "t1")

	payloads := make(chan []byte, 4)
	stop, err := store.Subscribe(ctx, path, func(p []byte) { payloads <- p })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, store.Write(ctx, path, Record{TeamID: "t1", Score: 150}))

	select {
	case p := <-payloads:
		assert.Contains(t, string(p), `"score":150`)
	case <-time.After(2 * time.Second):
		t.Fatal("no payload delivered")
	}
}

func TestStoreSubscribeIsPathScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payloads := make(chan []byte, 4)
	stop, err := store.Subscribe(ctx, TeamPath("standard", "s1", "t1"), func(p []byte) { payloads <- p })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, store.Write(ctx, TeamPath("standard", "s1", "t2"), Record{TeamID: "t2"}))

	select {
	case <-payloads:
		t.Fatal("received write for another path")
	case <-time.After(100 * time.Millisecond):
	}
}
