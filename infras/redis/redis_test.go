package redis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"visit/config"
	"visit/infras/redis"
)

func TestOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Redis.Primary.Host = "cache.internal"
	cfg.Cache.Redis.Primary.Port = "6380"
	cfg.Cache.Redis.Primary.Password = "secret"
	cfg.Cache.Redis.Primary.DB = 2
	cfg.Cache.Redis.PoolSize = 50
	cfg.Cache.Redis.DialTimeoutMillis = 1500

	options := redis.Options(cfg)

	assert.Equal(t, "cache.internal:6380", options.Addr)
	assert.Equal(t, "secret", options.Password)
	assert.Equal(t, 2, options.DB)
	assert.Equal(t, 50, options.PoolSize)
	assert.Equal(t, 1500*time.Millisecond, options.DialTimeout)
}

func TestOptions_IPv6Host(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Redis.Primary.Host = "::1"
	cfg.Cache.Redis.Primary.Port = "6379"

	options := redis.Options(cfg)

	assert.Equal(t, "[::1]:6379", options.Addr)
	assert.Zero(t, options.DialTimeout)
}
