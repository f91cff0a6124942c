package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/core/envelope"
	"github.com/agentmesh/core/internal/ctxkeys"
)

func TestPublish_OutsideDispatchScopeFails(t *testing.T) {
	err := Publish(context.Background(), incrementPayload{Amount: 1}, envelope.DirectionUp)
	assert.ErrorIs(t, err, ErrNoDispatchScope)
}

func TestPublish_StagesOutgoingEnvelope(t *testing.T) {
	selfID := envelope.NewAgentID()
	scope := &dispatchScope{selfID: selfID}
	ctx := withDispatchScope(context.Background(), scope)

	err := Publish(ctx, incrementPayload{Amount: 9}, envelope.DirectionDown)
	require.NoError(t, err)
	require.Len(t, scope.outgoing, 1)
	assert.Equal(t, envelope.DirectionDown, scope.outgoing[0].Direction)
	assert.True(t, scope.outgoing[0].PublisherID.Equal(selfID))
}

func TestPublish_DiscardsWhenDeactivating(t *testing.T) {
	selfID := envelope.NewAgentID()
	scope := &dispatchScope{selfID: selfID}
	ctx := withDispatchScope(context.Background(), scope)
	ctx = ctxkeys.WithDeactivating(ctx)

	err := Publish(ctx, incrementPayload{Amount: 9}, envelope.DirectionDown)
	require.NoError(t, err)
	assert.Empty(t, scope.outgoing, "an Envelope published during deactivate must be discarded, not staged")
}

func TestRaiseEvent_OutsideDispatchScopeFails(t *testing.T) {
	err := RaiseEvent(context.Background(), incrementPayload{Amount: 1}, nil)
	assert.ErrorIs(t, err, ErrNoDispatchScope)
}

func TestRaiseEvent_StagesPendingEventWithCorrelationID(t *testing.T) {
	selfID := envelope.NewAgentID()
	scope := &dispatchScope{selfID: selfID}
	ctx := withDispatchScope(context.Background(), scope)
	ctx = ctxkeys.WithCorrelationID(ctx, "corr-1")

	err := RaiseEvent(ctx, incrementPayload{Amount: 2}, map[string]string{"k": "v"})
	require.NoError(t, err)
	require.Len(t, scope.pending, 1)
	assert.Equal(t, "corr-1", scope.pending[0].CorrelationID)
	assert.True(t, scope.pending[0].AgentID.Equal(selfID))
	assert.Equal(t, "v", scope.pending[0].Metadata["k"])
}

func TestRaiseEvent_DiscardsWhenDeactivating(t *testing.T) {
	selfID := envelope.NewAgentID()
	scope := &dispatchScope{selfID: selfID}
	ctx := withDispatchScope(context.Background(), scope)
	ctx = ctxkeys.WithDeactivating(ctx)

	err := RaiseEvent(ctx, incrementPayload{Amount: 2}, nil)
	require.NoError(t, err)
	assert.Empty(t, scope.pending, "an event raised during deactivate must be discarded, not staged")
}
