package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEntryIsFresh(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Entry[int]{}.IsFresh(time.Hour, now))
	assert.True(t, Entry[int]{FetchedAt: now.Add(-59 * time.Minute)}.IsFresh(time.Hour, now))
	assert.False(t, Entry[int]{FetchedAt: now.Add(-time.Hour)}.IsFresh(time.Hour, now))
}

func TestGetRespectsTTL(t *testing.T) {
	var calls atomic.Int32
	c := New(time.Hour, func(context.Context, string) (int, error) {
		return int(calls.Add(1)), nil
	})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	v, out, err := c.Get(ctx, "catalog", false)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, Refreshed, out)

	v, out, _ = c.Get(ctx, "catalog", false)
	assert.Equal(t, 1, v)
	assert.Equal(t, Hit, out)

	v, out, _ = c.Get(ctx, "catalog", true)
	assert.Equal(t, 2, v)
	assert.Equal(t, Refreshed, out)

	now = now.Add(2 * time.Hour)
	v, _, _ = c.Get(ctx, "catalog", false)
	assert.Equal(t, 3, v)

	c.Invalidate("catalog")
	_, ok := c.Peek("catalog")
	assert.False(t, ok)
}

func TestGetKeepsStaleValueOnError(t *testing.T) {
	fail := false
	c := New(time.Minute, func(context.Context, string) (string, error) {
		if fail {
			return "", errors.New("backend down")
		}
		return "v1", nil
	})
	ctx := context.Background()

	_, _, err := c.Get(ctx, "k", false)
	require.NoError(t, err)

	fail = true
	v, out, err := c.Get(ctx, "k", true)
	require.Error(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, Stale, out)

	v, out, err = c.Get(ctx, "other", false)
	require.Error(t, err)
	assert.Empty(t, v)
	assert.Equal(t, Miss, out)
}

func TestConcurrentGetsShareOneLoad(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := New(time.Hour, func(context.Context, string) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	})

	const n = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	results := make([]int, n)
	for i := range n {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			results[i], _, _ = c.Get(context.Background(), "catalog", false)
		}()
	}
	started.Wait()
	// give every goroutine a chance to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}
