package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/core/envelope"
)

func setupRedisStoreTest(t *testing.T) (*miniredis.Miniredis, *RedisStore[counterState]) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore[counterState](client, "counter", "core")

	return mr, store
}

func TestRedisStore_LoadMissingReturnsNotOK(t *testing.T) {
	mr, store := setupRedisStoreTest(t)
	defer mr.Close()

	_, ok, err := store.Load(context.Background(), envelope.NewAgentID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SaveThenLoad(t *testing.T) {
	mr, store := setupRedisStoreTest(t)
	defer mr.Close()

	ctx := context.Background()
	id := envelope.NewAgentID()

	require.NoError(t, store.Save(ctx, id, counterState{Count: 4}))

	got, ok, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, got.Count)
}

func TestRedisStore_DeleteAndExists(t *testing.T) {
	mr, store := setupRedisStoreTest(t)
	defer mr.Close()

	ctx := context.Background()
	id := envelope.NewAgentID()

	require.NoError(t, store.Save(ctx, id, counterState{Count: 1}))

	exists, err := store.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, id))

	exists, err = store.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}
