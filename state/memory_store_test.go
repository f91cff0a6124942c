package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/core/envelope"
)

func TestMemoryStore_LoadMissingReturnsNotOK(t *testing.T) {
	s := NewMemoryStore[counterState]()
	_, ok, err := s.Load(context.Background(), envelope.NewAgentID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_SaveThenLoad(t *testing.T) {
	s := NewMemoryStore[counterState]()
	ctx := context.Background()
	id := envelope.NewAgentID()

	require.NoError(t, s.Save(ctx, id, counterState{Count: 6}))

	got, ok, err := s.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 6, got.Count)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	s := NewMemoryStore[counterState]()
	ctx := context.Background()
	id := envelope.NewAgentID()

	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Save(ctx, id, counterState{Count: 1}))
	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Delete(ctx, id))

	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_SaveVersioned(t *testing.T) {
	s := NewMemoryStore[counterState]()
	ctx := context.Background()
	id := envelope.NewAgentID()

	v, err := s.CurrentVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, s.SaveVersioned(ctx, id, counterState{Count: 1}, 0))

	v, err = s.CurrentVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	err = s.SaveVersioned(ctx, id, counterState{Count: 2}, 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	require.NoError(t, s.SaveVersioned(ctx, id, counterState{Count: 2}, 1))
	got, _, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
}

func TestMemoryStore_ConcurrentSavesAreSerialized(t *testing.T) {
	s := NewMemoryStore[counterState]()
	ctx := context.Background()
	id := envelope.NewAgentID()

	const n = 100
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func(i int) {
			_ = s.Save(ctx, id, counterState{Count: i})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < n; i++ {
		<-done
	}

	_, ok, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}
