package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestInMemoryLimiter(t *testing.T) {
	limiter := NewInMemory(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()
	key := "login:a@x.com"

	first := limiter.Allow(ctx, key, 2)
	if !first.Allowed || first.Count != 1 || first.Remaining != 1 {
		t.Fatalf("unexpected first decision: %+v", first)
	}
	second := limiter.Allow(ctx, key, 2)
	if !second.Allowed || second.Remaining != 0 {
		t.Fatalf("unexpected second decision: %+v", second)
	}
	third := limiter.Allow(ctx, key, 2)
	if third.Allowed || third.Count != 3 {
		t.Fatalf("expected third attempt to be rejected: %+v", third)
	}
	if got := third.RetryAfter(now); got != time.Minute {
		t.Fatalf("unexpected retry after %v", got)
	}
	if got := third.RetryAfter(now.Add(1500 * time.Millisecond)); got != 59*time.Second {
		t.Fatalf("expected retry after to round up, got %v", got)
	}

	now = now.Add(time.Minute)
	reset := limiter.Allow(ctx, key, 2)
	if !reset.Allowed || reset.Count != 1 {
		t.Fatalf("expected counter reset at window end, got %+v", reset)
	}
}

func TestInMemoryLimiterResetAndFloor(t *testing.T) {
	limiter := NewInMemory(0)
	if limiter.window != time.Minute {
		t.Fatalf("expected default window, got %v", limiter.window)
	}
	ctx := context.Background()
	if d := limiter.Allow(ctx, "k", 0); !d.Allowed || d.Limit != 1 {
		t.Fatalf("expected limit floor of one, got %+v", d)
	}
	if d := limiter.Allow(ctx, "k", 1); d.Allowed {
		t.Fatalf("expected second attempt to be blocked")
	}
	limiter.Reset(ctx, "k")
	if d := limiter.Allow(ctx, "k", 1); !d.Allowed {
		t.Fatalf("expected reset to clear the counter")
	}
}

func TestRedisLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedis(client, 50*time.Millisecond, nil)
	ctx := context.Background()
	key := "login:a@x.com"

	for i := 1; i <= 2; i++ {
		if d := limiter.Allow(ctx, key, 2); !d.Allowed || d.Count != i {
			t.Fatalf("attempt %d: unexpected decision %+v", i, d)
		}
	}
	if d := limiter.Allow(ctx, key, 2); d.Allowed {
		t.Fatalf("expected third attempt to be rejected: %+v", d)
	}
	if !mr.Exists("ratelimit:" + key) {
		t.Fatalf("expected counter key in redis")
	}

	mr.FastForward(60 * time.Millisecond)
	if d := limiter.Allow(ctx, key, 2); !d.Allowed || d.Count != 1 {
		t.Fatalf("expected window to expire, got %+v", d)
	}

	limiter.Reset(ctx, key)
	if mr.Exists("ratelimit:" + key) {
		t.Fatalf("expected reset to delete the counter")
	}
}

func TestRedisLimiterFallsBackWhenUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  5 * time.Millisecond,
		ReadTimeout:  5 * time.Millisecond,
		WriteTimeout: 5 * time.Millisecond,
		MaxRetries:   -1,
	})
	defer client.Close()

	limiter := NewRedis(client, time.Second, nil)
	ctx := context.Background()
	if d := limiter.Allow(ctx, "login:b@x.com", 1); !d.Allowed {
		t.Fatalf("expected fallback to allow first attempt, got %+v", d)
	}
	if d := limiter.Allow(ctx, "login:b@x.com", 1); d.Allowed {
		t.Fatalf("expected fallback to enforce the limit, got %+v", d)
	}

	nilClient := NewRedis(nil, time.Second, nil)
	if d := nilClient.Allow(ctx, "k", 1); !d.Allowed {
		t.Fatalf("expected nil client to use fallback")
	}
}
