package redisStore

import (
	"context"
	"os"
	"sync"

	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instance *Store
	logger   *logger_i.Logger
	once     sync.Once
)

type Store struct {
	client *redis.Client
}

// GetRedisStore returns the process-wide Redis store used for rate-limit
// counters, or nil when Redis is offline. The caller is expected to fall
// back to in-process counting.
func GetRedisStore(ctx context.Context) *Store {
	once.Do(func() {
		logger = logger_i.NewLogger("Redis Store")
		instance = createNewStore(ctx)
	})
	return instance
}

func createNewStore(ctx context.Context) *Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = config.RedisAddr
	}
	newClient := redis.NewClient(&redis.Options{
		Addr:                  addr,
		DB:                    config.RedisLimiterDB,
		ContextTimeoutEnabled: true,
		DialTimeout:           config.RedisDialTimeout,
		ReadTimeout:           config.RedisReadTimeout,
		WriteTimeout:          config.RedisWriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisDialTimeout)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline: ", "error", err.Error())
		return nil
	}

	logger.Info("Redis store init successfully")

	store := &Store{client: newClient}
	go closeStore(ctx, store)
	return store
}

func closeStore(ctx context.Context, store *Store) {
	<-ctx.Done()
	logger.Info("Closing Redis store")
	if err := store.client.Close(); err != nil {
		logger.Error("Error closing redis client", "error", err)
	}
}

// Only for tests.
func NewTestStore(client *redis.Client) *Store {
	return &Store{client: client}
}
