package state

import (
	"context"
	"errors"

	"github.com/agentmesh/core/envelope"
)

var (
	// ErrNotFound is returned by operations that require an existing record
	// (most Load implementations instead return ok=false, not an error).
	ErrNotFound = errors.New("state: not found")

	// ErrVersionConflict is returned by VersionedStore.SaveVersioned when
	// expectedVersion does not match the store's current version.
	ErrVersionConflict = errors.New("state: version conflict")
)

// Store is the base load/save/exists/delete contract, keyed by AgentID. S is
// the application-defined state type; it must be msgpack round-trippable.
type Store[S any] interface {
	// Load returns the saved state, or ok=false if nothing was ever saved
	// for id.
	Load(ctx context.Context, id envelope.AgentID) (st S, ok bool, err error)

	// Save upserts state for id. Subsequent Load calls return the new value.
	Save(ctx context.Context, id envelope.AgentID, st S) error

	// Delete removes any saved state for id. Deleting an absent id is not
	// an error.
	Delete(ctx context.Context, id envelope.AgentID) error

	// Exists reports whether any state has been saved for id.
	Exists(ctx context.Context, id envelope.AgentID) (bool, error)
}

// VersionedStore adds optimistic concurrency to Store.
type VersionedStore[S any] interface {
	Store[S]

	// SaveVersioned upserts state only if the store's current version for
	// id equals expectedVersion, then advances the version by one.
	// ErrVersionConflict is returned otherwise.
	SaveVersioned(ctx context.Context, id envelope.AgentID, st S, expectedVersion int64) error

	// CurrentVersion returns 0 if no state has been saved for id.
	CurrentVersion(ctx context.Context, id envelope.AgentID) (int64, error)
}
