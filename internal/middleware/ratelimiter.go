package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts attempts per key in fixed windows
type RateLimiter interface {
	// Allow registers one attempt for key in scope.
	// Returns: allowed bool, remaining attempts, error
	Allow(ctx context.Context, scope, key string) (bool, int64, error)

	// Close closes the Redis connection
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewRateLimiter creates a Redis-backed fixed-window rate limiter
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// windowKey generates the Redis key for the current window
// Format: rate:{scope}:{key}:{windowStart}
func (r *redisRateLimiter) windowKey(scope, key string) string {
	windowStart := r.now().UTC().Truncate(r.window).Unix()
	return fmt.Sprintf("rate:%s:%s:%d", scope, key, windowStart)
}

func (r *redisRateLimiter) Allow(ctx context.Context, scope, key string) (bool, int64, error) {
	// If limit is 0 or negative, unlimited
	if r.limit <= 0 {
		return true, -1, nil
	}

	redisKey := r.windowKey(scope, key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to increment attempt count", "error", err, "scope", scope)
		// On error, allow the request but log it
		return true, r.limit, err
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.limit, remaining, nil
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return &NoOpRateLimiter{logger: logger}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, scope, key string) (bool, int64, error) {
	return true, -1, nil
}

func (r *NoOpRateLimiter) Close() error {
	return nil
}

// RateLimit rejects requests from a client IP that exceeded the limit for scope
func RateLimit(limiter RateLimiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.Allow(c.Request.Context(), scope, c.ClientIP())
		if err != nil {
			logger.Warn("⚠️ [RateLimiter] Limiter unavailable, allowing request", "scope", scope, "error", err)
		}

		if remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		}

		if !allowed {
			logger.Warn("🚫 [RateLimiter] Too many requests", "scope", scope, "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later"})
			return
		}

		c.Next()
	}
}
