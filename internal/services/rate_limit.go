package services

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimiter admits at most a fixed number of calls per key per window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type redisRateLimiter struct {
	rdb    goredis.UniversalClient
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiter counts calls in fixed windows with INCR and EXPIRE, so
// every instance sharing the Redis shares the budget.
func NewRedisRateLimiter(rdb goredis.UniversalClient, limit int, window time.Duration) RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &redisRateLimiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		prefix: "sheetshare:ratelimit:",
		now:    time.Now,
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)

	var incr *goredis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window+time.Second)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

type noopRateLimiter struct{}

func NewNoopRateLimiter() RateLimiter { return noopRateLimiter{} }

func (noopRateLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
