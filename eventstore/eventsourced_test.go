//go:build cgo
// +build cgo

package eventstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/core/envelope"
)

func bankAccountTransition(current balanceState, payload envelope.TypedPayload) (balanceState, error) {
	var deposit depositPayload
	if err := envelope.DecodePayload(payload, &deposit); err != nil {
		return current, err
	}
	current.Balance += deposit.Amount
	return current, nil
}

func TestEventSourcedStore_ReplayAndSnapshotPlacement(t *testing.T) {
	db := setupEventStoreDB(t)
	raw := NewSQLEventStore(db)
	strategy := NewIntervalStrategy(3)
	store := NewEventSourcedStore(raw, bankAccountTransition, strategy, nil)
	ctx := context.Background()
	id := envelope.NewAgentID()

	state, version, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, balanceState{}, state)
	assert.Equal(t, int64(0), version)

	for i := 0; i < 10; i++ {
		ev, err := NewEvent(id, depositPayload{Amount: 10}, "", nil)
		require.NoError(t, err)
		state, version, err = store.Confirm(ctx, id, state, version, []Event{ev})
		require.NoError(t, err)
	}

	assert.Equal(t, 100, state.Balance)
	assert.Equal(t, int64(10), version)

	snap, ok, err := raw.GetLatestSnapshot(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, []int64{3, 6, 9}, snap.Version)

	// Loading again rebuilds from the latest snapshot plus the later events
	// and reaches the same state.
	replayed, replayedVersion, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100, replayed.Balance)
	assert.Equal(t, int64(10), replayedVersion)
}

func TestEventSourcedStore_ConfirmRejectsConcurrentConflict(t *testing.T) {
	db := setupEventStoreDB(t)
	raw := NewSQLEventStore(db)
	store := NewEventSourcedStore(raw, bankAccountTransition, NewIntervalStrategy(0), nil)
	ctx := context.Background()
	id := envelope.NewAgentID()

	ev1, err := NewEvent(id, depositPayload{Amount: 10}, "", nil)
	require.NoError(t, err)
	ev2, err := NewEvent(id, depositPayload{Amount: 20}, "", nil)
	require.NoError(t, err)

	state := balanceState{}
	_, _, err = store.Confirm(ctx, id, state, 0, []Event{ev1})
	require.NoError(t, err)

	_, _, err = store.Confirm(ctx, id, state, 0, []Event{ev2})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}
