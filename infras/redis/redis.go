package redis

import (
	"context"
	"net"
	"time"

	"visit/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Options maps the cache configuration onto client options. The same client backs the
// directory cache, the rate limiter and the distributed property lock.
func Options(cfg *config.Config) *goRedis.Options {
	redisCfg := cfg.Cache.Redis

	options := &goRedis.Options{
		Addr:     net.JoinHostPort(redisCfg.Primary.Host, redisCfg.Primary.Port),
		Password: redisCfg.Primary.Password,
		DB:       redisCfg.Primary.DB,
		PoolSize: redisCfg.PoolSize,
	}

	if redisCfg.DialTimeoutMillis > 0 {
		options.DialTimeout = time.Duration(redisCfg.DialTimeoutMillis) * time.Millisecond
	}

	return options
}

func New(cfg *config.Config) *goRedis.Client {
	options := Options(cfg)
	client := goRedis.NewClient(options)

	attempts := max(cfg.Cache.Redis.PingRetry, 1)

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), options.DialTimeout+time.Second)
		err = client.Ping(ctx).Err()

		cancel()

		if err == nil {
			break
		}

		log.Warn().Err(err).Int("attempt", attempt).Str("addr", options.Addr).Msg("Redis ping failed")
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}

	if err != nil {
		log.Fatal().Err(err).Str("addr", options.Addr).Msg("Failed to connect to Redis")
	}

	log.Info().
		Int("db", options.DB).
		Str("addr", options.Addr).
		Int("poolSize", options.PoolSize).
		Msg("Connected to Redis")

	return client
}
