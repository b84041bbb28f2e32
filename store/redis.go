package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = &Redis{}

// Redis adapts a Redis client to the Store contract using plain GET and SET
// with expiry. It deliberately avoids INCR and Lua scripts so that the same
// strategy code runs against any backend; the resulting read-modify-write
// races are tolerated by the strategies.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Store backed by the given Redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get returns the stored value for key. redis.Nil maps to ok=false.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %v: %w", key, err)
	}
	return value, true, nil
}

// SetWithTTL overwrites the value for key and sets its expiry.
func (r *Redis) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %v: %w", key, err)
	}
	return nil
}
