package eventstore

import (
	"context"

	"github.com/agentmesh/core/envelope"
)

// GetEventsOptions bounds a GetEvents query. Zero values mean "from start"
// / "to end" / "unlimited".
type GetEventsOptions struct {
	FromVersion int64
	ToVersion   int64 // 0 means unbounded
	MaxCount    int   // 0 means unbounded
}

// GetEventsOption customizes a GetEvents call.
type GetEventsOption func(*GetEventsOptions)

// FromVersion restricts the query to versions >= v.
func FromVersion(v int64) GetEventsOption {
	return func(o *GetEventsOptions) { o.FromVersion = v }
}

// ToVersion restricts the query to versions <= v.
func ToVersion(v int64) GetEventsOption {
	return func(o *GetEventsOptions) { o.ToVersion = v }
}

// MaxCount caps the number of events returned.
func MaxCount(n int) GetEventsOption {
	return func(o *GetEventsOptions) { o.MaxCount = n }
}

// EventStore is the append-only event log contract (component C3).
type EventStore interface {
	// Append stores events for agentID, atomically, only if the store's
	// current version equals expectedVersion. Versions are assigned to the
	// events in order starting at expectedVersion+1. Returns the new
	// current version on success.
	Append(ctx context.Context, agentID envelope.AgentID, events []Event, expectedVersion int64) (int64, error)

	// GetEvents returns events for agentID in ascending version order.
	GetEvents(ctx context.Context, agentID envelope.AgentID, opts ...GetEventsOption) ([]Event, error)

	// CurrentVersion returns 0 if agentID has no recorded events.
	CurrentVersion(ctx context.Context, agentID envelope.AgentID) (int64, error)

	// SaveSnapshot persists snapshot for agentID. Snapshot failures are the
	// caller's concern to log; they must never be treated as fatal, since
	// correctness relies only on events.
	SaveSnapshot(ctx context.Context, agentID envelope.AgentID, snapshot Snapshot) error

	// GetLatestSnapshot returns the highest-version snapshot for agentID,
	// or ok=false if none exists.
	GetLatestSnapshot(ctx context.Context, agentID envelope.AgentID) (snap Snapshot, ok bool, err error)
}
