package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/infras/otel/mocks"
	"visit/shared/cache"
)

func newCache(t *testing.T) (cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisCache(client, mocks.NewOtel()), server
}

type entry struct {
	Exists  bool   `json:"exists"`
	OwnerID string `json:"owner_id"`
}

func TestSaveAndGet_JSON(t *testing.T) {
	c, server := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "property:get:P1", entry{Exists: true, OwnerID: "owner-1"}, 60))

	var got entry
	require.NoError(t, c.Get(ctx, "property:get:P1", &got))
	assert.Equal(t, entry{Exists: true, OwnerID: "owner-1"}, got)

	assert.Equal(t, 60*time.Second, server.TTL("property:get:P1"))
}

func TestSaveAndGet_String(t *testing.T) {
	c, server := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "raw", "plain text", 10))

	stored, err := server.Get("raw")
	require.NoError(t, err)
	assert.Equal(t, "plain text", stored)

	var got string
	require.NoError(t, c.Get(ctx, "raw", &got))
	assert.Equal(t, "plain text", got)
}

func TestGet_Miss(t *testing.T) {
	c, _ := newCache(t)

	var got entry
	err := c.Get(context.Background(), "absent", &got)

	assert.ErrorIs(t, err, cache.Nil)
}

func TestGet_Undecodable(t *testing.T) {
	c, server := newCache(t)
	require.NoError(t, server.Set("broken", "{not json"))

	var got entry
	err := c.Get(context.Background(), "broken", &got)

	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.Nil)
}

func TestIncrement_FixedWindow(t *testing.T) {
	c, server := newCache(t)
	ctx := context.Background()

	first, err := c.Increment(ctx, "limiter:ip:ua", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	server.FastForward(30 * time.Second)

	second, err := c.Increment(ctx, "limiter:ip:ua", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, 30*time.Second, server.TTL("limiter:ip:ua"))

	server.FastForward(31 * time.Second)

	reset, err := c.Increment(ctx, "limiter:ip:ua", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)
}
