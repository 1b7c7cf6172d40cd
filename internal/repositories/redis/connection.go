package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the Redis connection settings
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisInternal wraps the Redis client used for rate limiting and caching
type RedisInternal struct {
	Redis  *redis.Client
	prefix string
}

// NewRedisInternal connects to Redis and pings it
func NewRedisInternal(ctx context.Context, cfg Config) (*RedisInternal, error) {
	if cfg.Addr == "" {
		cfg.Addr = "redis:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to Redis at %s: %w", cfg.Addr, err)
	}

	return &RedisInternal{
		Redis:  rdb,
		prefix: cfg.KeyPrefix,
	}, nil
}

// Close closes the underlying client
func (r *RedisInternal) Close() error {
	return r.Redis.Close()
}

// Store is the subset of RedisInternal used by the HTTP layer
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, expiration time.Duration) error
}

var _ Store = (*RedisInternal)(nil)
