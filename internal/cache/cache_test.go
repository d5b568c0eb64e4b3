package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type view struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// redisForTest connects to TEST_REDIS_ADDR or skips
func redisForTest(t *testing.T) Config {
	t.Helper()
	if testing.Short() {
		t.Skip("cache: skipping redis test in short mode")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("cache: TEST_REDIS_ADDR not set")
	}
	return Config{Addr: addr, DB: 15}
}

func TestViewCache_RoundTrip(t *testing.T) {
	cfg := redisForTest(t)
	ctx := context.Background()

	client, err := NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewViewCache[view](client, "test:view:"+time.Now().Format("150405.000")+":", time.Minute)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	version, ok := c.Version(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, int64(0), version)

	require.True(t, c.SetIfVersion(ctx, "a", &view{ID: "a", Email: "ann@x.io"}, version))
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "ann@x.io", got.Email)

	c.Invalidate(ctx, "a")
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)

	version, ok = c.Version(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, int64(1), version)
}

func TestViewCache_SetAfterInvalidateIsDropped(t *testing.T) {
	cfg := redisForTest(t)
	ctx := context.Background()

	client, err := NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewViewCache[view](client, "test:stale:"+time.Now().Format("150405.000")+":", time.Minute)

	before, ok := c.Version(ctx, "a")
	require.True(t, ok)

	c.Invalidate(ctx, "a")

	assert.False(t, c.SetIfVersion(ctx, "a", &view{ID: "a", Email: "old@x.io"}, before))
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok, "a view loaded before the invalidation must not be cached")
}

func TestViewCache_UndecodableEntryIsMiss(t *testing.T) {
	cfg := redisForTest(t)
	ctx := context.Background()

	client, err := NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "test:bad:" + time.Now().Format("150405.000") + ":"
	require.NoError(t, client.Set(ctx, prefix+"a", "not json", time.Minute).Err())

	c := NewViewCache[view](client, prefix, time.Minute)
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
