//go:build cgo
// +build cgo

package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agentmesh/core/envelope"
)

func setupDocumentStoreDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&documentStateRow{}))
	return db
}

func TestDocumentStore_SaveThenLoad(t *testing.T) {
	db := setupDocumentStoreDB(t)
	store := NewDocumentStore[counterState](db, "counterState")
	ctx := context.Background()
	id := envelope.NewAgentID()

	_, ok, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, id, counterState{Count: 9}))

	got, ok, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, got.Count)
}

func TestDocumentStore_DifferentStateTypesAreIsolated(t *testing.T) {
	db := setupDocumentStoreDB(t)
	ctx := context.Background()
	id := envelope.NewAgentID()

	counters := NewDocumentStore[counterState](db, "counter")
	require.NoError(t, counters.Save(ctx, id, counterState{Count: 1}))

	type otherState struct {
		Flag bool `msgpack:"flag"`
	}
	others := NewDocumentStore[otherState](db, "other")
	_, ok, err := others.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentStore_DeleteIsIdempotent(t *testing.T) {
	db := setupDocumentStoreDB(t)
	store := NewDocumentStore[counterState](db, "counterState")
	ctx := context.Background()
	id := envelope.NewAgentID()

	require.NoError(t, store.Save(ctx, id, counterState{Count: 1}))
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	exists, err := store.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDocumentStore_SaveVersioned(t *testing.T) {
	db := setupDocumentStoreDB(t)
	store := NewDocumentStore[counterState](db, "counterState")
	ctx := context.Background()
	id := envelope.NewAgentID()

	v, err := store.CurrentVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, store.SaveVersioned(ctx, id, counterState{Count: 1}, 0))

	v, err = store.CurrentVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	err = store.SaveVersioned(ctx, id, counterState{Count: 2}, 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	require.NoError(t, store.SaveVersioned(ctx, id, counterState{Count: 2}, 1))
	got, _, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
}
