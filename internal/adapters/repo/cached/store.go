package cached

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// NewStore returns a redis backed store when redisURL is set and an in-process
// go-cache store otherwise.
func NewStore(redisURL string, ttl, cleanupInterval time.Duration) (store.StoreInterface, error) {
	if redisURL != "" {
		return getRedisStore(redisURL)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	goc := gocache.New(ttl, cleanupInterval)
	return gocache_store.NewGoCache(goc), nil
}

func getRedisStore(redisURL string) (store.StoreInterface, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis cache url: %w", err)
	}

	redisClient := redis.NewClient(options)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("ping redis cache: %w", err)
	}

	return redis_store.NewRedis(redisClient), nil
}
