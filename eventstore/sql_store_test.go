//go:build cgo
// +build cgo

package eventstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agentmesh/core/envelope"
)

func setupEventStoreDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&eventRow{}, &snapshotRow{}))
	return db
}

func TestSQLEventStore_AppendAndGetEvents(t *testing.T) {
	db := setupEventStoreDB(t)
	store := NewSQLEventStore(db)
	ctx := context.Background()
	id := envelope.NewAgentID()

	v, err := store.CurrentVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	ev1, err := NewEvent(id, depositPayload{Amount: 10}, "", nil)
	require.NoError(t, err)
	ev2, err := NewEvent(id, depositPayload{Amount: 20}, "", nil)
	require.NoError(t, err)

	newVersion, err := store.Append(ctx, id, []Event{ev1, ev2}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), newVersion)

	events, err := store.GetEvents(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Version)
	assert.Equal(t, int64(2), events[1].Version)

	var decoded depositPayload
	require.NoError(t, envelope.DecodePayload(events[0].Payload, &decoded))
	assert.Equal(t, 10, decoded.Amount)
}

func TestSQLEventStore_AppendRejectsStaleExpectedVersion(t *testing.T) {
	db := setupEventStoreDB(t)
	store := NewSQLEventStore(db)
	ctx := context.Background()
	id := envelope.NewAgentID()

	ev, err := NewEvent(id, depositPayload{Amount: 5}, "", nil)
	require.NoError(t, err)

	_, err = store.Append(ctx, id, []Event{ev}, 0)
	require.NoError(t, err)

	_, err = store.Append(ctx, id, []Event{ev}, 0)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestSQLEventStore_GetEventsRespectsBounds(t *testing.T) {
	db := setupEventStoreDB(t)
	store := NewSQLEventStore(db)
	ctx := context.Background()
	id := envelope.NewAgentID()

	events := make([]Event, 0, 5)
	for i := 0; i < 5; i++ {
		ev, err := NewEvent(id, depositPayload{Amount: i}, "", nil)
		require.NoError(t, err)
		events = append(events, ev)
	}
	_, err := store.Append(ctx, id, events, 0)
	require.NoError(t, err)

	got, err := store.GetEvents(ctx, id, FromVersion(2), ToVersion(4))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].Version)
	assert.Equal(t, int64(4), got[2].Version)

	limited, err := store.GetEvents(ctx, id, MaxCount(2))
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLEventStore_SnapshotRoundTrip(t *testing.T) {
	db := setupEventStoreDB(t)
	store := NewSQLEventStore(db)
	ctx := context.Background()
	id := envelope.NewAgentID()

	_, ok, err := store.GetLatestSnapshot(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	snap, err := NewSnapshot(balanceState{Balance: 50}, 3, nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(ctx, id, snap))

	snap2, err := NewSnapshot(balanceState{Balance: 80}, 6, nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(ctx, id, snap2))

	got, ok, err := store.GetLatestSnapshot(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(6), got.Version)

	var decoded balanceState
	require.NoError(t, envelope.DecodePayload(got.Payload, &decoded))
	assert.Equal(t, 80, decoded.Balance)
}
