package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"visit/infras/otel"
	"visit/shared/failure"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	minRetryDelay = 5 * time.Millisecond
	maxRetryDelay = 100 * time.Millisecond
	releaseBudget = time.Second
)

// unlockScript deletes the key only when it still carries our token, so an expired holder
// never releases a scope granted to someone else afterwards.
var unlockScript = goRedis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *goRedis.Client
	ttl    time.Duration
	otel   otel.Otel
}

// NewRedis returns a Locker built on SET NX PX. ttl bounds how long a crashed holder can keep a scope.
func NewRedis(client *goRedis.Client, ttl time.Duration, otl otel.Otel) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
		otel:   otl,
	}
}

func (r *redisLocker) Acquire(ctx context.Context, key string, wait time.Duration) (release Release, err error) {
	ctx, scope := r.otel.NewScope(ctx, otelScopeName, otelScopeName+".redis.Acquire")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttribute(otelLockKeyAttribute, key)

	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	delay := minRetryDelay

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to acquire redis lock")

			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		if ok {
			return r.releaser(ctx, key, token), nil
		}

		if !time.Now().Add(delay).Before(deadline) {
			log.Warn().Str("key", key).Dur("wait", wait).Msg("timed out waiting for scheduling lock")

			return nil, failure.Busy("another request is holding this property, retry shortly")
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, failure.Busy("request ended while waiting for the property lock")
		}

		delay = min(delay*2, maxRetryDelay)
	}
}

func (r *redisLocker) releaser(ctx context.Context, key, token string) Release {
	var once sync.Once

	return func() {
		once.Do(func() {
			c, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseBudget)
			defer cancel()

			if err := unlockScript.Run(c, r.client, []string{key}, token).Err(); err != nil {
				log.Error().Err(err).Str("key", key).Msg("failed to release redis lock, it expires with its ttl")
			}
		})
	}
}
