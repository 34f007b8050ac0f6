package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"
	"todolist/infras/otel"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
)

type RedisCache interface {
	// Increment bumps the counter stored under key and returns the new value
	// together with the time left before the counter resets. The window only
	// starts on the first increment.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

// Increment implements RedisCache.
func (cache *redisCache) Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Increment")
	defer scope.End()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	var (
		incr *redis.IntCmd
		left *redis.DurationCmd
	)

	_, err = cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		left = pipe.TTL(ctx, key)

		return nil
	})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("key", key).Str("RedisCache", "Increment").Msg("failed to increment counter")

		return 0, 0, fmt.Errorf("failed to increment cache value: %w", err)
	}

	return incr.Val(), left.Val(), nil
}
