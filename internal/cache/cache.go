package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a cached value and the time it was fetched
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// IsFresh reports whether the entry is younger than ttl at now.
// A zero FetchedAt is never fresh.
func (e Entry[T]) IsFresh(ttl time.Duration, now time.Time) bool {
	if e.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(e.FetchedAt) < ttl
}

// LoadFunc produces a fresh value for key
type LoadFunc[T any] func(ctx context.Context, key string) (T, error)

// Outcome of a Get call
type Outcome string

const (
	Hit       Outcome = "hit"
	Refreshed Outcome = "refreshed"
	Stale     Outcome = "stale"
	Miss      Outcome = "error"
)

// TTL caches one value per key for a fixed time. Concurrent refreshes of the
// same key share a single load.
type TTL[T any] struct {
	ttl     time.Duration
	load    LoadFunc[T]
	now     func() time.Time
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]Entry[T]
}

// New creates a cache that refreshes entries older than ttl through load
func New[T any](ttl time.Duration, load LoadFunc[T]) *TTL[T] {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TTL[T]{
		ttl:     ttl,
		load:    load,
		now:     time.Now,
		entries: make(map[string]Entry[T]),
	}
}

// Peek returns the current entry for key without loading
func (c *TTL[T]) Peek(key string) (Entry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Get returns the cached value when fresh, otherwise loads it. force skips
// the freshness check. A failed load keeps the previous value, which is
// returned alongside the error with outcome Stale.
func (c *TTL[T]) Get(ctx context.Context, key string, force bool) (T, Outcome, error) {
	prev, ok := c.Peek(key)
	if ok && !force && prev.IsFresh(c.ttl, c.now()) {
		return prev.Value, Hit, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := c.load(ctx, key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = Entry[T]{Value: value, FetchedAt: c.now()}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		err = fmt.Errorf("load %s: %w", key, err)
		if ok {
			return prev.Value, Stale, err
		}
		var zero T
		return zero, Miss, err
	}
	return v.(T), Refreshed, nil
}

// Invalidate drops key so the next Get reloads it
func (c *TTL[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}
