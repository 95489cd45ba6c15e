package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mapda-dev/mapda-api/pkg/database"
)

// RateLimiter throttles login attempts per client using a redis counter.
// Each (key, window) pair maps to one counter that expires with the window,
// so the limit resets cleanly instead of sliding.
type RateLimiter struct {
	redis  *database.Redis
	limit  int
	window time.Duration
}

// NewRateLimiter creates the rate limiter.
func NewRateLimiter(redis *database.Redis, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redis, limit: limit, window: window}
}

// Allow records one attempt for the key and reports whether it fits inside
// the current window. retryAfter is how long the caller should wait when the
// limit is hit; zero otherwise.
func (r *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := r.redis.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count attempt: %w", err)
	}

	// First attempt in a window starts the clock. INCR on a missing key
	// creates it without a TTL, so the expiry must follow the first hit.
	if count == 1 {
		if err := r.redis.Client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to arm window expiry: %w", err)
		}
	}

	if count > int64(r.limit) {
		ttl, err := r.redis.Client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = r.window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

// Limit returns the configured maximum attempts per window.
func (r *RateLimiter) Limit() int {
	return r.limit
}
