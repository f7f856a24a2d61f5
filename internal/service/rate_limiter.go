package service

import (
	"context"
	"fmt"
	"time"

	"github.com/get30seconds/auth-api/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a sliding-window request limiter over Redis
// sorted sets. Register and login are the guarded endpoints.
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow checks if a request is allowed under the limit for the window.
// Returns false with a descriptive error when the limit is exceeded.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window)
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	// Drop entries that have slid out of the window
	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err()
	if err != nil {
		return false, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(limit) {
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			oldestTime := time.Unix(int64(oldest[0].Score), 0)
			remaining := window - time.Since(oldestTime)
			return false, fmt.Errorf("rate limit exceeded, try again in %v", remaining.Round(time.Second))
		}
		return false, fmt.Errorf("rate limit exceeded")
	}

	member := fmt.Sprintf("%d-%d", now.UnixNano(), now.Unix())
	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: member,
	}).Err()
	if err != nil {
		return false, fmt.Errorf("failed to add entry: %w", err)
	}

	// Buffer past the window so the key cannot expire mid-window
	_ = r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err()

	return true, nil
}

// GetRemainingRequests returns the number of requests left in the window
func (r *RateLimiter) GetRemainingRequests(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	now := time.Now()
	windowStart := now.Add(-window)
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
