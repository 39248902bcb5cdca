package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSeenSet(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *SeenSet) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSeenSet(client, "", ttl)
}

func TestSeenSet_MarkAndCheck(t *testing.T) {
	_, s := setupSeenSet(t, time.Hour)
	ctx := context.Background()

	seen, err := s.IsProcessed(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkProcessed(ctx, "https://example.com/a"))

	seen, err = s.IsProcessed(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.IsProcessed(ctx, "https://example.com/b")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestSeenSet_Expires(t *testing.T) {
	mr, s := setupSeenSet(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.MarkProcessed(ctx, "https://example.com/a"))
	assert.Equal(t, time.Hour, mr.TTL(s.key("https://example.com/a")))

	mr.FastForward(2 * time.Hour)

	seen, err := s.IsProcessed(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestSeenSet_KeyIsHashed(t *testing.T) {
	_, s := setupSeenSet(t, 0)
	k := s.key("https://example.com/very/long/path?q=1")
	assert.Len(t, k, len(DefaultPrefix)+64)
	assert.Equal(t, k, s.key("https://example.com/very/long/path?q=1"))
}

func TestSeenSet_Clear(t *testing.T) {
	mr, s := setupSeenSet(t, 0)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "x"))
	for _, u := range []string{"https://a.test/1", "https://a.test/2", "https://a.test/3"} {
		require.NoError(t, s.MarkProcessed(ctx, u))
	}

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, mr.Exists("other:key"))

	n, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeenSet_RedisDown(t *testing.T) {
	mr, s := setupSeenSet(t, 0)
	mr.Close()

	_, err := s.IsProcessed(context.Background(), "https://example.com/a")
	assert.Error(t, err)
	assert.Error(t, s.MarkProcessed(context.Background(), "https://example.com/a"))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
