package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func (r *RedisInternal) key(key string) string {
	return r.prefix + key
}

// Get returns the value of a key
func (r *RedisInternal) Get(ctx context.Context, key string) *redis.StringCmd {
	return r.Redis.Get(ctx, r.key(key))
}

// Set sets a key value pair
func (r *RedisInternal) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return r.Redis.Set(ctx, r.key(key), value, expiration)
}

// TTL returns the time to live of a key
func (r *RedisInternal) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return r.Redis.TTL(ctx, r.key(key))
}

// Incr increments a key
func (r *RedisInternal) Incr(ctx context.Context, key string) *redis.IntCmd {
	return r.Redis.Incr(ctx, r.key(key))
}

// GetJSON decodes the JSON stored under key into dst. It reports false
// when the key does not exist.
func (r *RedisInternal) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := r.Redis.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decoding cached value %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v as JSON under key
func (r *RedisInternal) SetJSON(ctx context.Context, key string, v interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cached value %s: %w", key, err)
	}
	return r.Redis.Set(ctx, r.key(key), raw, expiration).Err()
}
