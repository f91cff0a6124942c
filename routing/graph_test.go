package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/core/envelope"
)

func TestGraph_SetParentRegistersChild(t *testing.T) {
	g := NewGraph()
	parent := envelope.NewAgentID()
	child := envelope.NewAgentID()

	require.NoError(t, g.SetParent(child, parent))

	got, ok := g.GetParent(child)
	require.True(t, ok)
	assert.True(t, got.Equal(parent))

	children := g.GetChildren(parent)
	require.Len(t, children, 1)
	assert.True(t, children[0].Equal(child))
}

func TestGraph_SetParentRejectsSelfParent(t *testing.T) {
	g := NewGraph()
	a := envelope.NewAgentID()
	assert.ErrorIs(t, g.SetParent(a, a), ErrSelfParent)
}

func TestGraph_SetParentRejectsCycle(t *testing.T) {
	g := NewGraph()
	a := envelope.NewAgentID()
	b := envelope.NewAgentID()
	c := envelope.NewAgentID()

	require.NoError(t, g.SetParent(b, a)) // a -> b
	require.NoError(t, g.SetParent(c, b)) // b -> c

	assert.ErrorIs(t, g.SetParent(a, c), ErrCycle, "making a a child of its own descendant c must be rejected")
}

func TestGraph_SetParentReassignsFromOldParent(t *testing.T) {
	g := NewGraph()
	oldParent := envelope.NewAgentID()
	newParent := envelope.NewAgentID()
	child := envelope.NewAgentID()

	require.NoError(t, g.SetParent(child, oldParent))
	require.NoError(t, g.SetParent(child, newParent))

	assert.Empty(t, g.GetChildren(oldParent))
	children := g.GetChildren(newParent)
	require.Len(t, children, 1)
	assert.True(t, children[0].Equal(child))
}

func TestGraph_SetParentNilDetaches(t *testing.T) {
	g := NewGraph()
	parent := envelope.NewAgentID()
	child := envelope.NewAgentID()
	require.NoError(t, g.SetParent(child, parent))

	require.NoError(t, g.SetParent(child, envelope.NilAgentID))

	_, ok := g.GetParent(child)
	assert.False(t, ok)
	assert.Empty(t, g.GetChildren(parent))
}

func TestGraph_GetSiblingsExcludesSelf(t *testing.T) {
	g := NewGraph()
	parent := envelope.NewAgentID()
	a := envelope.NewAgentID()
	b := envelope.NewAgentID()
	c := envelope.NewAgentID()

	require.NoError(t, g.SetParent(a, parent))
	require.NoError(t, g.SetParent(b, parent))
	require.NoError(t, g.SetParent(c, parent))

	siblings := g.GetSiblings(a)
	require.Len(t, siblings, 2)
	for _, s := range siblings {
		assert.False(t, s.Equal(a))
	}
}

func TestGraph_GetSiblingsEmptyForRoot(t *testing.T) {
	g := NewGraph()
	root := envelope.NewAgentID()
	g.Register(root)
	assert.Empty(t, g.GetSiblings(root))
}

func TestGraph_Ancestors(t *testing.T) {
	g := NewGraph()
	grandparent := envelope.NewAgentID()
	parent := envelope.NewAgentID()
	child := envelope.NewAgentID()

	require.NoError(t, g.SetParent(parent, grandparent))
	require.NoError(t, g.SetParent(child, parent))

	ancestors := g.Ancestors(child)
	require.Len(t, ancestors, 2)
	assert.True(t, ancestors[0].Equal(parent))
	assert.True(t, ancestors[1].Equal(grandparent))
}

func TestGraph_RemoveDetachesAndRootsChildren(t *testing.T) {
	g := NewGraph()
	parent := envelope.NewAgentID()
	mid := envelope.NewAgentID()
	child := envelope.NewAgentID()

	require.NoError(t, g.SetParent(mid, parent))
	require.NoError(t, g.SetParent(child, mid))

	g.Remove(mid)

	assert.Empty(t, g.GetChildren(parent))
	_, ok := g.GetParent(child)
	assert.False(t, ok, "child of a removed agent becomes a root")
}
