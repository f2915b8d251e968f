package lock

import (
	"context"
	"sync"
	"time"

	"visit/infras/otel"
	"visit/shared/failure"

	"github.com/rs/zerolog/log"
)

type slot struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	otel  otel.Otel
}

// NewLocal returns a Locker backed by per-key channels. Keys nobody waits on are dropped.
func NewLocal(otl otel.Otel) Locker {
	return &localLocker{
		slots: map[string]*slot{},
		otel:  otl,
	}
}

func (l *localLocker) Acquire(ctx context.Context, key string, wait time.Duration) (release Release, err error) {
	ctx, scope := l.otel.NewScope(ctx, otelScopeName, otelScopeName+".local.Acquire")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttribute(otelLockKeyAttribute, key)

	s := l.ref(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once

		return func() {
			once.Do(func() {
				<-s.ch
				l.unref(key)
			})
		}, nil
	case <-timer.C:
		l.unref(key)
		log.Warn().Str("key", key).Dur("wait", wait).Msg("timed out waiting for scheduling lock")

		return nil, failure.Busy("another request is holding this property, retry shortly")
	case <-ctx.Done():
		l.unref(key)

		return nil, failure.Busy("request ended while waiting for the property lock")
	}
}

func (l *localLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}

	s.refs++

	return s
}

func (l *localLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		return
	}

	s.refs--
	if s.refs <= 0 {
		delete(l.slots, key)
	}
}
