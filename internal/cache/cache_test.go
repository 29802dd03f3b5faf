package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	c := New(Options{Addr: "127.0.0.1:0"})
	defer c.Close()

	assert.Equal(t, "RAWE_profile:7", c.Key("profile:7"))
	assert.Equal(t, "RAWE_profile:7", c.Key("  profile:7 "))
	assert.Equal(t, DefaultTTL, c.TTL())

	custom := New(Options{Addr: "127.0.0.1:0", Prefix: " APP_ ", TTL: time.Minute})
	defer custom.Close()
	assert.Equal(t, "APP_x", custom.Key("x"))
	assert.Equal(t, time.Minute, custom.TTL())
}

func TestUnreachable(t *testing.T) {
	// Port 1 is never a Redis server; the dial is refused immediately.
	c := New(Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer c.Close()
	ctx := context.Background()

	require.Error(t, c.Ping(ctx))

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)

	assert.Error(t, c.Set(ctx, "k", "v"))
	assert.Error(t, c.HSet(ctx, "h", "f", "v"))
}

// liveCache returns a cache on the server named by AWESOME_TEST_REDIS,
// skipping the test when it is unset.
func liveCache(t *testing.T) *Cache {
	t.Helper()
	addr := os.Getenv("AWESOME_TEST_REDIS")
	if addr == "" {
		t.Skip("AWESOME_TEST_REDIS not set")
	}
	c := New(Options{Addr: addr, Prefix: "AWESOME_TEST_" + t.Name() + "_", TTL: time.Minute})
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLive_RoundTrip(t *testing.T) {
	c := liveCache(t)
	ctx := context.Background()
	_, err := c.Del(ctx, "s", "h", "l", "set", "z")
	require.NoError(t, err)

	_, err = c.Get(ctx, "s")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "s", "v"))
	v, err := c.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, c.HSet(ctx, "h", "a", "1", "b", "2"))
	f, err := c.HGet(ctx, "h", "b")
	require.NoError(t, err)
	assert.Equal(t, "2", f)
	_, err = c.HGet(ctx, "h", "c")
	assert.ErrorIs(t, err, ErrMiss)
	all, err := c.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)

	require.NoError(t, c.LPush(ctx, "l", "x", "y"))
	list, err := c.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, list)

	require.NoError(t, c.SAdd(ctx, "set", "m"))
	members, err := c.SMembers(ctx, "set")
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, members)

	require.NoError(t, c.ZAdd(ctx, "z", redis.Z{Score: 2, Member: "b"}, redis.Z{Score: 1, Member: "a"}))
	ranked, err := c.ZRange(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ranked)

	n, err := c.Del(ctx, "s", "h", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLive_WritesRefreshTTL(t *testing.T) {
	c := liveCache(t)
	ctx := context.Background()

	require.NoError(t, c.HSet(ctx, "h", "a", "1"))
	ttl, err := c.rdb.TTL(ctx, c.Key("h")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	_, err = c.HGetAll(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)
}
