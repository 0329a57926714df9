// Package dedup claims engine callbacks so that one delivery runs at a time.
// Redis backs the claims when several instances share the engine tables; the
// in-memory claims serve a single process.
package dedup

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.CallbackDeduplicator = (*Redis)(nil)

type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
