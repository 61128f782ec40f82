package notify

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bossy-radar/radar/internal/logging"
)

type failingSink struct{}

func (failingSink) Notify(context.Context, Notification) error { return errors.New("sink down") }

func TestDispatcherCleansAndStamps(t *testing.T) {
	mem := NewMemory(10)
	core, logs := observer.New(zapcore.WarnLevel)
	d := NewDispatcher(zap.New(core), failingSink{}, mem)
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	ctx := logging.WithRequestID(context.Background(), "req-1")
	Error(ctx, d, "<b>無法讀取靜態資料</b>，請稍後再試")

	got, err := mem.Drain(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	n := got[0]
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "無法讀取靜態資料，請稍後再試", n.Message)
	assert.Equal(t, "req-1", n.RequestID)
	assert.Equal(t, fixed, n.CreatedAt)
	assert.NotEmpty(t, n.ID)

	// the failing sink is logged, not returned
	assert.Equal(t, 1, logs.FilterMessage("notification sink failed").Len())
}

func TestMemoryLimitAndDrain(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	for _, msg := range []string{"a", "b", "c"} {
		require.NoError(t, m.Notify(ctx, Notification{Message: msg}))
	}
	assert.Equal(t, []string{"b", "c"}, m.Messages())

	first, _ := m.Drain(ctx, 1)
	require.Len(t, first, 1)
	assert.Equal(t, "b", first[0].Message)

	rest, _ := m.Drain(ctx, 10)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].Message)
	assert.Empty(t, m.Messages())
}

func TestLogNotifierLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogNotifier(zap.New(core))
	ctx := context.Background()

	require.NoError(t, l.Notify(ctx, Notification{Level: LevelError, Message: "boom"}))
	require.NoError(t, l.Notify(ctx, Notification{Level: LevelWarning, Message: "hmm"}))
	require.NoError(t, l.Notify(ctx, Notification{Level: LevelSuccess, Message: "ok"}))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
}

func TestErrorWithNilNotifier(t *testing.T) {
	assert.NotPanics(t, func() { Error(context.Background(), nil, "x") })
}

// TestRedisQueue runs against a real server when REDIS_TEST_ADDR is set
func TestRedisQueue(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	key := "radar:test:notifications:" + t.Name()
	require.NoError(t, rdb.Del(ctx, key).Err())
	q := NewRedisQueue(rdb, key)

	require.NoError(t, q.Notify(ctx, Notification{ID: "1", Message: "first"}))
	require.NoError(t, q.Notify(ctx, Notification{ID: "2", Message: "second"}))
	require.NoError(t, rdb.LPush(ctx, key, "not json").Err())

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := q.Drain(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
}
