package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var incrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter shares counters across instances. Redis failures are served by the
// in-memory fallback so a cache outage never blocks logins outright.
type RedisLimiter struct {
	client   *redis.Client
	window   time.Duration
	prefix   string
	fallback *InMemoryLimiter
	logger   *zap.Logger
}

// NewRedis builds a limiter; a nil client routes everything to the fallback.
func NewRedis(client *redis.Client, w time.Duration, logger *zap.Logger) *RedisLimiter {
	if w <= 0 {
		w = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		client:   client,
		window:   w,
		prefix:   "ratelimit:",
		fallback: NewInMemory(w),
		logger:   logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	if l.client == nil {
		return l.fallback.Allow(ctx, key, limit)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, err := incrScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		l.logger.Warn("rate limit store unavailable; using local counters", zap.String("key", key), zap.Error(err))
		return l.fallback.Allow(ctx, key, limit)
	}

	count, ttlMs := res[0], res[1]
	if ttlMs < 0 {
		ttlMs = l.window.Milliseconds()
	}
	resetAt := time.Now().UTC().Add(time.Duration(ttlMs) * time.Millisecond)
	return decide(int(count), limit, resetAt)
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) {
	l.fallback.Reset(ctx, key)
	if l.client == nil {
		return
	}
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		l.logger.Warn("rate limit reset failed", zap.String("key", key), zap.Error(err))
	}
}
