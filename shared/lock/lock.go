package lock

import (
	"context"
	"time"

	"visit/config"
	"visit/infras/otel"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DriverRedis = "redis"
	DriverLocal = "local"

	otelScopeName         = "lock"
	otelLockKeyAttribute  = "lock.key"
	defaultWait           = 2 * time.Second
	defaultTTL            = 10 * time.Second
	keyPrefix             = "lock:"
	propertyScopeKeyLabel = "property"
)

// Release gives up a held scope. It is safe to call more than once.
type Release func()

// Locker grants exclusive scopes keyed by string with a bounded wait.
type Locker interface {
	// Acquire blocks until key is held by the caller or wait elapses. On timeout it returns a
	// Busy failure and nothing is held.
	Acquire(ctx context.Context, key string, wait time.Duration) (Release, error)
}

// PropertyKey is the exclusive scope shared by reservations and availability writes of one property.
func PropertyKey(propertyID string) string {
	return keyPrefix + propertyScopeKeyLabel + ":" + propertyID
}

// New picks the lock driver from configuration. The redis driver coordinates every instance of the
// service; the local driver only serializes goroutines of this process.
func New(cfg *config.Config, client *goRedis.Client, otl otel.Otel) Locker {
	ttl := time.Duration(cfg.Scheduling.Lock.TTLMillis) * time.Millisecond
	if ttl <= 0 {
		ttl = defaultTTL
	}

	switch cfg.Scheduling.Lock.Driver {
	case DriverLocal:
		log.Info().Str("driver", DriverLocal).Msg("Using in-process scheduling lock")

		return NewLocal(otl)
	default:
		log.Info().Str("driver", DriverRedis).Dur("ttl", ttl).Msg("Using redis scheduling lock")

		return NewRedis(client, ttl, otl)
	}
}

// Wait returns the configured bounded wait for acquiring a scope.
func Wait(cfg *config.Config) time.Duration {
	wait := time.Duration(cfg.Scheduling.Lock.WaitMillis) * time.Millisecond
	if wait <= 0 {
		return defaultWait
	}

	return wait
}
