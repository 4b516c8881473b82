package leaderboard

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazearena/trivia-arena/internal/question"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client, zerolog.Nop(), ServiceOptions{TopN: 10})
}

func TestServiceRecordAndTop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entries := []Entry{
		{ID: "a", Name: "Alpha", Score: 900, MaxStreak: 5, Accuracy: 0.8},
		{ID: "b", Name: "Beta", Score: 1200, MaxStreak: 3, Accuracy: 0.9},
		{ID: "c", Name: "Gamma", Score: 600, MaxStreak: 7, Accuracy: 0.7},
	}
	for _, e := range entries {
		require.NoError(t, svc.Record(ctx, question.ModeStandard, e))
	}

	top, err := svc.Top(ctx, question.ModeStandard, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Beta", top[0].Name)
	assert.Equal(t, 1200, top[0].Score)
	assert.Equal(t, "Alpha", top[1].Name)
	assert.Equal(t, "Gamma", top[2].Name)
	assert.Equal(t, 7, top[2].MaxStreak)
	assert.NotEmpty(t, top[0].Date)
}

func TestServiceStreakBreaksTies(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, question.ModeStandard, Entry{ID: "low", Name: "Low", Score: 1000, MaxStreak: 2}))
	require.NoError(t, svc.Record(ctx, question.ModeStandard, Entry{ID: "high", Name: "High", Score: 1000, MaxStreak: 8}))

	top, err := svc.Top(ctx, question.ModeStandard, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "High", top[0].Name)
	assert.Equal(t, 1000, top[0].Score)
}

func TestServiceTrimsToTopN(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		entry := Entry{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("P%d", i), Score: 100 * i}
		require.NoError(t, svc.Record(ctx, question.ModeStandard, entry))
	}

	top, err := svc.Top(ctx, question.ModeStandard, 0)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, 1400, top[0].Score)
	assert.Equal(t, 500, top[9].Score)
}

func TestServiceModesArePartitioned(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, question.ModeStandard, Entry{ID: "a", Name: "Alpha", Score: 500}))

	top, err := svc.Top(ctx, question.ModeAlternate, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestServiceIsHighScore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Board not full yet: anything qualifies.
	ok, err := svc.IsHighScore(ctx, question.ModeStandard, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	for i := 0; i < 10; i++ {
		entry := Entry{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("P%d", i), Score: 100 * (i + 1)}
		require.NoError(t, svc.Record(ctx, question.ModeStandard, entry))
	}

	ok, err = svc.IsHighScore(ctx, question.ModeStandard, 150)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsHighScore(ctx, question.ModeStandard, 50)
	require.NoError(t, err)
	assert.False(t, ok)
}
