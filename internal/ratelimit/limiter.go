// Package ratelimit counts attempts per key inside a fixed window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of a single attempt.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the window closes, rounded up to a whole second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	if rounded := wait.Truncate(time.Second); rounded < wait {
		return rounded + time.Second
	}
	return wait
}

// Limiter records an attempt for key and reports whether it is within limit.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) Decision
	Reset(ctx context.Context, key string)
}

// InMemoryLimiter keeps counters in process memory.
type InMemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	items  map[string]window
	now    func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewInMemory creates a limiter with the given window, one minute when unset.
func NewInMemory(w time.Duration) *InMemoryLimiter {
	if w <= 0 {
		w = time.Minute
	}
	return &InMemoryLimiter{
		window: w,
		items:  make(map[string]window),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *InMemoryLimiter) Allow(_ context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(now)

	curr, ok := l.items[key]
	if !ok || !now.Before(curr.resetAt) {
		curr = window{resetAt: now.Add(l.window)}
	}
	curr.count++
	l.items[key] = curr
	return decide(curr.count, limit, curr.resetAt)
}

func (l *InMemoryLimiter) Reset(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, key)
}

func (l *InMemoryLimiter) evict(now time.Time) {
	for k, v := range l.items {
		if !now.Before(v.resetAt) {
			delete(l.items, k)
		}
	}
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
