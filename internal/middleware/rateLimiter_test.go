package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/proview/proview-api/internal/data/redisStore"
)

func newRedisLimiter(t *testing.T, limit int, window time.Duration) (*WindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWindowLimiter(limit, window, redisStore.NewTestStore(client)), mr
}

func TestAllow_FixedWindow(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 10, 60*time.Second)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if !limiter.Allow(ctx, "1.2.3.4") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if limiter.Allow(ctx, "1.2.3.4") {
		t.Fatal("request 11 should be denied")
	}
}

func TestAllow_WindowResets(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 10, 60*time.Second)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		limiter.Allow(ctx, "1.2.3.4")
	}
	if limiter.Allow(ctx, "1.2.3.4") {
		t.Fatal("still inside the window, should be denied")
	}

	mr.FastForward(61 * time.Second)

	if !limiter.Allow(ctx, "1.2.3.4") {
		t.Fatal("new window should allow again")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 10, 60*time.Second)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		limiter.Allow(ctx, "1.2.3.4")
	}
	if limiter.Allow(ctx, "1.2.3.4") {
		t.Fatal("first client should be exhausted")
	}
	if !limiter.Allow(ctx, "5.6.7.8") {
		t.Fatal("second client must have its own window")
	}
}

func TestAllow_LocalFallback(t *testing.T) {
	// no redis store at all, the in-process cache carries the window
	limiter := NewWindowLimiter(3, time.Minute, nil)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if !limiter.Allow(ctx, "9.9.9.9") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if limiter.Allow(ctx, "9.9.9.9") {
		t.Fatal("request 4 should be denied")
	}
}
