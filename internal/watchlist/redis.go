package watchlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPersister keeps the codes as a JSON array under one Redis key
type RedisPersister struct {
	client redis.Cmdable
	key    string
}

// NewRedisPersister stores the watchlist named name under radar:watchlist:<name>
func NewRedisPersister(client redis.Cmdable, name string) *RedisPersister {
	if name == "" {
		name = "default"
	}
	return &RedisPersister{
		client: client,
		key:    "radar:watchlist:" + name,
	}
}

func (r *RedisPersister) Load(ctx context.Context) ([]string, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}
	return decodeCodes(raw)
}

func (r *RedisPersister) Save(ctx context.Context, codes []string) error {
	data, err := encodeCodes(codes)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}
