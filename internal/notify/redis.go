package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisQueue pushes notifications onto a Redis list so any server replica can
// hand them to the UI. Newest entries are pushed left, drained from the right.
type RedisQueue struct {
	client    redis.Cmdable
	queueName string
}

// NewRedisQueue creates a notification queue on the given list key
func NewRedisQueue(client redis.Cmdable, queueName string) *RedisQueue {
	if queueName == "" {
		queueName = "radar:notifications"
	}
	return &RedisQueue{
		client:    client,
		queueName: queueName,
	}
}

// Notify pushes a single notification
func (q *RedisQueue) Notify(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// Drain pops up to count notifications, oldest first, without blocking.
// Malformed entries are skipped.
func (q *RedisQueue) Drain(ctx context.Context, count int) ([]Notification, error) {
	if count <= 0 {
		count = 50
	}
	out := make([]Notification, 0, count)

	for range count {
		raw, err := q.client.RPop(ctx, q.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return out, fmt.Errorf("rpop: %w", err)
		}

		var n Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		out = append(out, n)
	}

	return out, nil
}

// Len returns the number of pending notifications
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
