package redis

import (
	"context"
	"net"
	"todolist/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// New connects to the primary Redis instance. Redis backs the request limiter
// only, so an unreachable server is fatal only while the limiter is enabled.
func New(config *config.Config) *goRedis.Client {
	primary := config.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	})

	if !config.App.RateLimiter.Enable {
		log.Info().Msg("Rate limiter disabled, skipping Redis health check")

		return client
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	log.Info().
		Int("db", primary.DB).
		Str("host", primary.Host).
		Str("port", primary.Port).
		Msg("Connected to Redis")

	return client
}
