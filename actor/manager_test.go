package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/core/envelope"
)

func TestManager_RegisterStartsActorAndLinksParent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ManagerOptions{})

	parentKernel := newFakeKernel()
	_, err := m.Register(ctx, parentKernel, envelope.NilAgentID)
	require.NoError(t, err)

	childKernel := newFakeKernel()
	_, err = m.Register(ctx, childKernel, parentKernel.ID())
	require.NoError(t, err)

	got, ok := m.Graph().GetParent(childKernel.ID())
	require.True(t, ok)
	assert.True(t, got.Equal(parentKernel.ID()))
}

func TestManager_RegisterRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ManagerOptions{})
	k := newFakeKernel()

	_, err := m.Register(ctx, k, envelope.NilAgentID)
	require.NoError(t, err)

	_, err = m.Register(ctx, k, envelope.NilAgentID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestManager_DeliverRoutesToRegisteredTarget(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ManagerOptions{})
	k := newFakeKernel()
	_, err := m.Register(ctx, k, envelope.NilAgentID)
	require.NoError(t, err)

	e := buildPlainEnvelope(t)
	require.NoError(t, m.Deliver(ctx, k.ID(), e))

	waitForCondition(t, time.Second, func() bool { return k.handledCount() == 1 })
}

func TestManager_DeliverToUnknownTargetSendsDeadLetter(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ManagerOptions{})
	missing := envelope.NewAgentID()

	require.NoError(t, m.Deliver(ctx, missing, buildPlainEnvelope(t)))

	select {
	case dl := <-m.DeadLetters():
		assert.True(t, dl.Target.Equal(missing))
		assert.Contains(t, dl.Reason, "not registered")
	case <-time.After(time.Second):
		t.Fatal("expected a dead letter for an undeliverable envelope")
	}
}

func TestManager_RouterForwardsUpToSiblingThroughManager(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ManagerOptions{})

	parent := newFakeKernel()
	_, err := m.Register(ctx, parent, envelope.NilAgentID)
	require.NoError(t, err)

	a := newFakeKernel()
	_, err = m.Register(ctx, a, parent.ID())
	require.NoError(t, err)

	sibling := newFakeKernel()
	_, err = m.Register(ctx, sibling, parent.ID())
	require.NoError(t, err)

	e := buildPlainEnvelope(t)
	e.Direction = envelope.DirectionUp
	require.NoError(t, m.Router().Forward(ctx, a.ID(), []*envelope.Envelope{e}))

	waitForCondition(t, time.Second, func() bool {
		return parent.handledCount() == 1 && sibling.handledCount() == 1
	})
	assert.Equal(t, 0, a.handledCount(), "the Up publisher is not its own Up target")
}

func TestManager_DeactivateAllStopsEveryActor(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ManagerOptions{})

	k1 := newFakeKernel()
	k2 := newFakeKernel()
	_, err := m.Register(ctx, k1, envelope.NilAgentID)
	require.NoError(t, err)
	_, err = m.Register(ctx, k2, envelope.NilAgentID)
	require.NoError(t, err)

	require.NoError(t, m.DeactivateAll(ctx))
	assert.Equal(t, "deactivated", string(k1.LifecycleState()))
	assert.Equal(t, "deactivated", string(k2.LifecycleState()))
}

func TestManager_RemoveDetachesFromGraphAndStopsActor(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ManagerOptions{})

	parent := newFakeKernel()
	_, err := m.Register(ctx, parent, envelope.NilAgentID)
	require.NoError(t, err)

	child := newFakeKernel()
	_, err = m.Register(ctx, child, parent.ID())
	require.NoError(t, err)

	require.NoError(t, m.Remove(ctx, child.ID()))

	_, ok := m.Lookup(child.ID())
	assert.False(t, ok)
	_, ok = m.Graph().GetParent(child.ID())
	assert.False(t, ok)
}

func TestManager_RemoveUnknownReturnsError(t *testing.T) {
	m := NewManager(ManagerOptions{})
	err := m.Remove(context.Background(), envelope.NewAgentID())
	assert.ErrorIs(t, err, ErrUnknownAgent)
}
