package lock_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/config"
	"visit/infras/otel/mocks"
	"visit/shared/failure"
	"visit/shared/lock"
)

func TestLocal_AcquireRelease(t *testing.T) {
	locker := lock.NewLocal(mocks.NewOtel())
	ctx := context.Background()

	release, err := locker.Acquire(ctx, lock.PropertyKey("p1"), time.Second)
	require.NoError(t, err)

	release()
	release()

	again, err := locker.Acquire(ctx, lock.PropertyKey("p1"), time.Second)
	require.NoError(t, err)
	again()
}

func TestLocal_TimeoutIsBusy(t *testing.T) {
	locker := lock.NewLocal(mocks.NewOtel())
	ctx := context.Background()

	release, err := locker.Acquire(ctx, lock.PropertyKey("p1"), time.Second)
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(ctx, lock.PropertyKey("p1"), 20*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrBusy))
	assert.True(t, failure.IsRetryable(err))
}

func TestLocal_CancelledContextIsBusy(t *testing.T) {
	locker := lock.NewLocal(mocks.NewOtel())

	release, err := locker.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.Acquire(ctx, "k", time.Second)
	assert.True(t, errors.Is(err, failure.ErrBusy))
}

func TestLocal_KeysAreIndependent(t *testing.T) {
	locker := lock.NewLocal(mocks.NewOtel())
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, lock.PropertyKey("a"), time.Second)
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(ctx, lock.PropertyKey("b"), 20*time.Millisecond)
	require.NoError(t, err)
	releaseB()
}

func TestLocal_SerializesHolders(t *testing.T) {
	locker := lock.NewLocal(mocks.NewOtel())
	ctx := context.Background()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			release, err := locker.Acquire(ctx, "shared", 5*time.Second)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}

			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestWait(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, 2*time.Second, lock.Wait(cfg))

	cfg.Scheduling.Lock.WaitMillis = 250
	assert.Equal(t, 250*time.Millisecond, lock.Wait(cfg))
}
