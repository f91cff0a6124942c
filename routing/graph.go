package routing

import (
	"sync"

	"github.com/agentmesh/core/envelope"
)

// Graph tracks the single-parent agent hierarchy that Direction-based
// delivery (Up/Down/Both/UpThenDown) is computed over. SetParent and Remove
// each update the parent links and the child sets together under one lock,
// so the two never diverge.
type Graph struct {
	mu       sync.RWMutex
	parent   map[string]envelope.AgentID            // child id -> parent id
	children map[string]map[string]envelope.AgentID  // parent id -> set of child ids
	known    map[string]envelope.AgentID             // every id ever mentioned, for lookups
}

// NewGraph returns an empty agent graph.
func NewGraph() *Graph {
	return &Graph{
		parent:   make(map[string]envelope.AgentID),
		children: make(map[string]map[string]envelope.AgentID),
		known:    make(map[string]envelope.AgentID),
	}
}

// Register makes id known to the graph with no parent, if it isn't already.
// SetParent calls this implicitly; exposed so agents with no
// parent/children (root or leaf) still appear in queries.
func (g *Graph) Register(id envelope.AgentID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.register(id)
}

func (g *Graph) register(id envelope.AgentID) {
	key := id.String()
	if _, ok := g.known[key]; !ok {
		g.known[key] = id
	}
}

// SetParent assigns parentID as childID's parent, atomically registering
// childID in parentID's children set and removing it from any previous
// parent's set. Passing a nil (zero) parentID detaches childID, making it a
// root. Returns ErrSelfParent or ErrCycle if the assignment is illegal.
func (g *Graph) SetParent(childID, parentID envelope.AgentID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !parentID.IsNil() {
		if childID.Equal(parentID) {
			return ErrSelfParent
		}
		if g.isAncestorLocked(parentID, childID) {
			return ErrCycle
		}
	}

	g.register(childID)
	if !parentID.IsNil() {
		g.register(parentID)
	}

	childKey := childID.String()

	if oldParent, ok := g.parent[childKey]; ok {
		if set, ok := g.children[oldParent.String()]; ok {
			delete(set, childKey)
		}
	}

	if parentID.IsNil() {
		delete(g.parent, childKey)
		return nil
	}

	g.parent[childKey] = parentID
	parentKey := parentID.String()
	if g.children[parentKey] == nil {
		g.children[parentKey] = make(map[string]envelope.AgentID)
	}
	g.children[parentKey][childKey] = childID
	return nil
}

// isAncestorLocked reports whether candidate already appears in id's
// ancestor chain, i.e. whether making candidate a descendant of id would
// close a cycle. Caller must hold g.mu.
func (g *Graph) isAncestorLocked(id, candidate envelope.AgentID) bool {
	cur := id
	for {
		p, ok := g.parent[cur.String()]
		if !ok {
			return false
		}
		if p.Equal(candidate) {
			return true
		}
		cur = p
	}
}

// GetParent returns id's parent, or ok=false if id is a root or unknown.
func (g *Graph) GetParent(id envelope.AgentID) (envelope.AgentID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.parent[id.String()]
	return p, ok
}

// GetChildren returns id's direct children. Order is unspecified.
func (g *Graph) GetChildren(id envelope.AgentID) []envelope.AgentID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.children[id.String()]
	out := make([]envelope.AgentID, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// GetSiblings returns the parent's other children, excluding id itself. An
// agent with no parent has no siblings.
func (g *Graph) GetSiblings(id envelope.AgentID) []envelope.AgentID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	parent, ok := g.parent[id.String()]
	if !ok {
		return nil
	}
	set := g.children[parent.String()]
	out := make([]envelope.AgentID, 0, len(set))
	idKey := id.String()
	for key, c := range set {
		if key == idKey {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Ancestors returns id's parent, grandparent, and so on up to the root, in
// that order.
func (g *Graph) Ancestors(id envelope.AgentID) []envelope.AgentID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []envelope.AgentID
	cur := id
	for {
		p, ok := g.parent[cur.String()]
		if !ok {
			return out
		}
		out = append(out, p)
		cur = p
	}
}

// Remove detaches id from the graph: its parent link is cleared, its
// children become roots, and it is forgotten entirely. Intended for use by
// the Manager when an agent is permanently removed.
func (g *Graph) Remove(id envelope.AgentID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := id.String()

	if p, ok := g.parent[key]; ok {
		if set, ok := g.children[p.String()]; ok {
			delete(set, key)
		}
		delete(g.parent, key)
	}

	for childKey := range g.children[key] {
		delete(g.parent, childKey)
	}
	delete(g.children, key)
	delete(g.known, key)
}
