package state

import (
	"context"
	"sync"

	"github.com/agentmesh/core/envelope"
)

type memoryEntry[S any] struct {
	state   S
	version int64
}

// MemoryStore is a concurrent-map-backed VersionedStore. Suitable for tests
// and simple agents; data is lost on process restart.
type MemoryStore[S any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[S]
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[S any]() *MemoryStore[S] {
	return &MemoryStore[S]{entries: make(map[string]memoryEntry[S])}
}

// Load implements Store.
func (m *MemoryStore[S]) Load(_ context.Context, id envelope.AgentID) (S, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id.String()]
	if !ok {
		var zero S
		return zero, false, nil
	}
	return e.state, true, nil
}

// Save implements Store; it advances the internal version counter so that
// CurrentVersion stays meaningful even for callers that only use the
// unversioned Store interface.
func (m *MemoryStore[S]) Save(_ context.Context, id envelope.AgentID, st S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id.String()
	next := m.entries[key].version + 1
	m.entries[key] = memoryEntry[S]{state: st, version: next}
	return nil
}

// Delete implements Store. Deleting an absent id is a no-op.
func (m *MemoryStore[S]) Delete(_ context.Context, id envelope.AgentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id.String())
	return nil
}

// Exists implements Store.
func (m *MemoryStore[S]) Exists(_ context.Context, id envelope.AgentID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[id.String()]
	return ok, nil
}

// SaveVersioned implements VersionedStore.
func (m *MemoryStore[S]) SaveVersioned(_ context.Context, id envelope.AgentID, st S, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id.String()
	current := m.entries[key].version
	if current != expectedVersion {
		return ErrVersionConflict
	}
	m.entries[key] = memoryEntry[S]{state: st, version: expectedVersion + 1}
	return nil
}

// CurrentVersion implements VersionedStore; returns 0 for an unseen id.
func (m *MemoryStore[S]) CurrentVersion(_ context.Context, id envelope.AgentID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[id.String()].version, nil
}

var (
	_ Store[struct{}]          = (*MemoryStore[struct{}])(nil)
	_ VersionedStore[struct{}] = (*MemoryStore[struct{}])(nil)
)
