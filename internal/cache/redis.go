package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter counts hits per key in fixed windows.
type Counter struct {
	rdb *redis.Client
}

func NewCounter(rdb *redis.Client) *Counter {
	return &Counter{rdb: rdb}
}

// Increment bumps key and returns the count inside the current window.
// Every hit pushes the window end forward.
func (c *Counter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate counter %s: %w", key, err)
	}
	return incr.Val(), nil
}

// ReplayGuard remembers consumed token IDs so a token can be spent once.
type ReplayGuard struct {
	rdb *redis.Client
}

func NewReplayGuard(rdb *redis.Client) *ReplayGuard {
	return &ReplayGuard{rdb: rdb}
}

// Consume marks id as used until ttl elapses. It reports false when id was
// already consumed.
func (g *ReplayGuard) Consume(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := g.rdb.SetNX(ctx, "consumed:"+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay guard: %w", err)
	}
	return ok, nil
}
