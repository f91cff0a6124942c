package eventstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agentmesh/core/envelope"
	"github.com/agentmesh/core/state"
)

// TransitionFunc applies one event payload to state and returns the
// resulting state. It must be pure and deterministic: same (state, payload)
// in, same state out, no side effects. S replaces spec-level generic state.
type TransitionFunc[S any] func(current S, payload envelope.TypedPayload) (S, error)

// EventSourcedStore composes an EventStore with a TransitionFunc and a
// SnapshotStrategy to present a load/confirm view of agent state driven by
// replay rather than direct writes.
type EventSourcedStore[S any] struct {
	events     EventStore
	transition TransitionFunc[S]
	strategy   SnapshotStrategy
	logger     *zap.Logger
}

// NewEventSourcedStore builds an EventSourcedStore. A nil strategy disables
// snapshotting (replay always starts from zero events).
func NewEventSourcedStore[S any](events EventStore, transition TransitionFunc[S], strategy SnapshotStrategy, logger *zap.Logger) *EventSourcedStore[S] {
	if strategy == nil {
		strategy = IntervalStrategy{N: 0}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventSourcedStore[S]{
		events:     events,
		transition: transition,
		strategy:   strategy,
		logger:     logger.With(zap.String("component", "eventstore.event_sourced_store")),
	}
}

// Load replays state for agentID: snapshot (if any) plus every subsequent
// event, in version order. Returns the deep-copied resulting state and the
// version it was reached at.
func (e *EventSourcedStore[S]) Load(ctx context.Context, agentID envelope.AgentID) (S, int64, error) {
	var current S
	var fromVersion int64 = 1

	snap, ok, err := e.events.GetLatestSnapshot(ctx, agentID)
	if err != nil {
		return current, 0, fmt.Errorf("eventstore: load snapshot: %w", err)
	}
	version := int64(0)
	if ok {
		if err := envelope.DecodePayload(snap.Payload, &current); err != nil {
			return current, 0, fmt.Errorf("eventstore: decode snapshot state: %w", err)
		}
		version = snap.Version
		fromVersion = version + 1
	}

	events, err := e.events.GetEvents(ctx, agentID, FromVersion(fromVersion))
	if err != nil {
		return current, 0, fmt.Errorf("eventstore: load events: %w", err)
	}

	for _, ev := range events {
		current, err = e.transition(current, ev.Payload)
		if err != nil {
			return current, 0, fmt.Errorf("eventstore: transition at version %d: %w", ev.Version, err)
		}
		version = ev.Version
	}

	out, err := state.DeepCopy(current)
	if err != nil {
		return current, 0, err
	}
	return out, version, nil
}

// Confirm atomically appends pendingEvents (staged by the kernel via
// raise_event) if expectedVersion still matches the store's current
// version, then folds them into currentState in order. It returns the
// updated state and new version. A ErrConcurrencyConflict return leaves
// pendingEvents unconsumed; the caller decides whether to retry or discard.
func (e *EventSourcedStore[S]) Confirm(ctx context.Context, agentID envelope.AgentID, currentState S, expectedVersion int64, pendingEvents []Event) (S, int64, error) {
	newVersion, err := e.events.Append(ctx, agentID, pendingEvents, expectedVersion)
	if err != nil {
		return currentState, expectedVersion, err
	}

	next := currentState
	for _, ev := range pendingEvents {
		next, err = e.transition(next, ev.Payload)
		if err != nil {
			return next, newVersion, fmt.Errorf("eventstore: transition during confirm: %w", err)
		}
	}

	if e.strategy.ShouldSnapshot(newVersion, len(pendingEvents)) {
		snapState, err := state.DeepCopy(next)
		if err != nil {
			e.logger.Error("snapshot deep copy failed", zap.Error(err), zap.String("agent_id", agentID.String()))
			return next, newVersion, nil
		}
		snap, err := NewSnapshot(snapState, newVersion, nil)
		if err != nil {
			e.logger.Error("snapshot encode failed", zap.Error(err), zap.String("agent_id", agentID.String()))
			return next, newVersion, nil
		}
		if err := e.events.SaveSnapshot(ctx, agentID, snap); err != nil {
			// Snapshot failures are logged but non-fatal: correctness
			// relies only on the event log.
			e.logger.Warn("save snapshot failed", zap.Error(err), zap.String("agent_id", agentID.String()))
		}
	}

	return next, newVersion, nil
}
