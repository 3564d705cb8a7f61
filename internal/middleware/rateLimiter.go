package middleware

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/proview/proview-api/internal/data/redisStore"
	"github.com/proview/proview-api/pkg/logger_i"
)

// WindowLimiter is a fixed-window request counter per client key. Counters
// live in Redis when it is reachable so the window survives restarts and
// spans replicas; otherwise they fall back to an in-process cache. The
// limiter is advisory: lost updates under-count, they never crash a request.
type WindowLimiter struct {
	limit  int64
	window time.Duration
	store  *redisStore.Store
	local  *cache.Cache
	logger *logger_i.Logger
}

func NewWindowLimiter(limit int, window time.Duration, store *redisStore.Store) *WindowLimiter {
	return &WindowLimiter{
		limit:  int64(limit),
		window: window,
		store:  store,
		local:  cache.New(window, 2*window),
		logger: logger_i.NewLogger("RateLimiter"),
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, clientKey string) bool {
	key := "ratelimit:" + clientKey

	if l.store != nil {
		count, err := l.store.IncrWindow(ctx, key, l.window)
		if err == nil {
			return count <= l.limit
		}
		l.logger.Error("redis counter failed, using local window", "error", err)
	}

	return l.allowLocal(key)
}

func (l *WindowLimiter) allowLocal(key string) bool {
	if _, found := l.local.Get(key); !found {
		l.local.Set(key, int64(1), l.window)
		return true
	}
	count, err := l.local.IncrementInt64(key, 1)
	if err != nil {
		// entry expired between Get and Increment, start a fresh window
		l.local.Set(key, int64(1), l.window)
		return true
	}
	return count <= l.limit
}
