package kernel

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisDedupTest(t *testing.T) (*miniredis.Miniredis, *RedisDedupWindow) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	window := NewRedisDedupWindow(client, "dedup:agent-1", time.Minute)

	return mr, window
}

func TestRedisDedupWindow_SeenOrRecord(t *testing.T) {
	mr, window := setupRedisDedupTest(t)
	defer mr.Close()

	ctx := context.Background()

	seen, err := window.SeenOrRecord(ctx, "env-1")
	require.NoError(t, err)
	assert.False(t, seen, "first sighting must not be reported as seen")

	seen, err = window.SeenOrRecord(ctx, "env-1")
	require.NoError(t, err)
	assert.True(t, seen, "repeat sighting must be reported as seen")
}

func TestRedisDedupWindow_ExpiresAfterTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	window := NewRedisDedupWindow(client, "dedup:agent-1", time.Second)

	ctx := context.Background()
	seen, err := window.SeenOrRecord(ctx, "env-1")
	require.NoError(t, err)
	assert.False(t, seen)

	mr.FastForward(2 * time.Second)

	seen, err = window.SeenOrRecord(ctx, "env-1")
	require.NoError(t, err)
	assert.False(t, seen, "id must be treated as unseen again once its TTL has elapsed")
}

func TestRedisDedupWindow_EmptyIDNeverRecorded(t *testing.T) {
	mr, window := setupRedisDedupTest(t)
	defer mr.Close()

	seen, err := window.SeenOrRecord(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, seen)
}
