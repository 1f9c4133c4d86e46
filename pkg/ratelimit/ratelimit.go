// Package ratelimit implements sliding-window log limiters: at most Limit
// events per key within any Window-long interval.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result reports the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// MemoryLimiter keeps one timestamp log per key in process memory.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	logs map[string][]time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		logs:   make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	log := l.logs[key]
	kept := log[:0]
	for _, ts := range log {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.logs[key] = kept
		retry := time.Duration(0)
		if len(kept) > 0 {
			retry = kept[0].Add(l.window).Sub(now)
		}
		return Result{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: retry}, nil
	}

	kept = append(kept, now)
	l.logs[key] = kept
	return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - len(kept)}, nil
}

// Prune drops keys with no events inside the window.
func (l *MemoryLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, log := range l.logs {
		if len(log) == 0 || !log[len(log)-1].After(cutoff) {
			delete(l.logs, key)
		}
	}
}

// RedisLimiter stores each key's log in a sorted set scored by unix millis,
// so the window is shared by every API instance.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	now := l.now().UnixMilli()
	cutoff := now - l.window.Milliseconds()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	var card *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: member})
		card = pipe.ZCard(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := int(card.Val())
	if count > l.limit {
		// rejected attempts do not occupy the window
		if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return Result{}, fmt.Errorf("rate limit rollback: %w", err)
		}
		return Result{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: l.window}, nil
	}
	return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - count}, nil
}
