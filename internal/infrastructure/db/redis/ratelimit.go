package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts hits per key in fixed windows shared by every
// API instance. Key format: ratelimit:<scope>:<key>
type FixedWindowLimiter struct {
	client *redis.Client
	scope  string
	max    int64
	window time.Duration
}

func NewFixedWindowLimiter(client *redis.Client, scope string, max int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client, scope: scope, max: int64(max), window: window}
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	// First hit of a window, or a key that lost its TTL.
	if incr.Val() == 1 || ttl.Val() < 0 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return incr.Val() <= l.max, nil
}

func (l *FixedWindowLimiter) key(key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.scope, key)
}
