package redisStore

import (
	"context"
	"time"
)

// IncrWindow bumps the fixed-window counter for a key and returns the new
// count. The first hit in a window sets the expiry; every later hit rides
// the same window.
func (s *Store) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
