package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"esfilter/internal/config"
	"esfilter/internal/models/dto"
	"esfilter/pkg/logger"
)

// counterStore is the part of the Redis client the rate limiter needs
type counterStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RateLimiter counts requests per client IP in fixed windows
type RateLimiter struct {
	store       counterStore
	maxRequests int
	window      time.Duration
	log         *logger.ElasticsearchLogger
}

// NewRateLimiter creates a rate limiter allowing maxRequests per window
func NewRateLimiter(store counterStore, maxRequests int, window time.Duration, log *logger.ElasticsearchLogger) *RateLimiter {
	if log == nil {
		log = logger.NewNop()
	}
	return &RateLimiter{
		store:       store,
		maxRequests: maxRequests,
		window:      window,
		log:         log,
	}
}

// setupRateLimiter installs the per-IP rate limiter
func setupRateLimiter(engine *gin.Engine, cfg *config.App) {
	if cfg.Redis == nil {
		return
	}
	rateLimiter := NewRateLimiter(cfg.Redis, cfg.Settings.MaxRequestsByIP, cfg.Settings.RateLimitWindow, cfg.Logger)
	engine.Use(rateLimiter.Middleware())
}

// Middleware returns the gin handler enforcing the limit
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, retryAfter, err := rl.checkRateLimit(c.Request.Context(), ip)
		if err != nil {
			rl.handleError(c, err)
			return
		}

		if !allowed {
			rl.handleRateLimitExceeded(c, retryAfter)
			return
		}

		c.Next()
	}
}

func rateLimitKey(ip string) string {
	return "ratelimit:" + ip
}

// checkRateLimit reports whether ip may make another request
func (rl *RateLimiter) checkRateLimit(ctx context.Context, ip string) (allowed bool, retryAfter time.Duration, err error) {
	key := rateLimitKey(ip)

	val, err := rl.store.Get(ctx, key).Result()

	// first request in the window
	if errors.Is(err, redis.Nil) {
		err = rl.store.Set(ctx, key, 1, rl.window).Err()
		if err != nil {
			return false, 0, err
		}
		return true, 0, nil
	}

	if err != nil {
		return false, 0, err
	}

	requestCount, err := strconv.Atoi(val)
	if err != nil {
		return false, 0, err
	}

	if requestCount >= rl.maxRequests {
		ttl, err := rl.store.TTL(ctx, key).Result()
		if err != nil {
			return false, 0, err
		}
		return false, ttl, nil
	}

	err = rl.store.Incr(ctx, key).Err()
	if err != nil {
		return false, 0, err
	}

	return true, 0, nil
}

// handleError lets the request through when Redis is unavailable
func (rl *RateLimiter) handleError(c *gin.Context, err error) {
	rl.log.Warn("rate limiter unavailable", map[string]interface{}{
		"error":     err.Error(),
		"client_ip": c.ClientIP(),
	})
	c.Next()
}

func (rl *RateLimiter) handleRateLimitExceeded(c *gin.Context, retryAfter time.Duration) {
	seconds := int(retryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		dto.NewRateLimitErrorResponse(c, retryAfter.Round(time.Second).String(), rl.maxRequests))
}

// setupSemaphore bounds the number of requests served concurrently
func setupSemaphore(engine *gin.Engine, max int64) {
	engine.Use(ConcurrencyLimit(max))
}

// ConcurrencyLimit rejects requests once max are in flight and the
// client gives up waiting
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sema := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sema.Acquire(c.Request.Context(), 1); err != nil {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(c, http.StatusTooManyRequests, "too_many_requests", "Too many requests", nil))
			return
		}
		defer sema.Release(1)
		c.Next()
	}
}
