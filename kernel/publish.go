package kernel

import (
	"context"

	"github.com/agentmesh/core/envelope"
	"github.com/agentmesh/core/eventstore"
	"github.com/agentmesh/core/internal/ctxkeys"
)

type dispatchContextKey struct{}

// dispatchScope accumulates outgoing envelopes and staged events for a
// single handle() call. It stands in for a thread-local outgoing-envelopes
// list as a context-scoped value rather than goroutine-local storage, since
// Go has no native TLS and the kernel's single-threaded-dispatch guarantee
// makes a context value sufficient: at most one handle() runs per agent at
// a time.
type dispatchScope struct {
	selfID   envelope.AgentID
	outgoing []*envelope.Envelope
	pending  []eventstore.Event
}

func withDispatchScope(ctx context.Context, scope *dispatchScope) context.Context {
	return context.WithValue(ctx, dispatchContextKey{}, scope)
}

func scopeFrom(ctx context.Context) *dispatchScope {
	scope, _ := ctx.Value(dispatchContextKey{}).(*dispatchScope)
	return scope
}

// Publish builds an Envelope around payload for direction and stages it for
// forwarding once the current handler returns. Call this from inside a
// handler method.
func Publish(ctx context.Context, payload any, direction envelope.Direction, opts ...envelope.BuildOption) error {
	scope := scopeFrom(ctx)
	if scope == nil {
		return ErrNoDispatchScope
	}
	if ctxkeys.Deactivating(ctx) {
		return nil
	}

	tp, err := envelope.EncodePayload(payload)
	if err != nil {
		return err
	}
	opts = append([]envelope.BuildOption{envelope.WithPublisherID(scope.selfID)}, opts...)
	e, err := envelope.Build(tp, direction, opts...)
	if err != nil {
		return err
	}

	scope.outgoing = append(scope.outgoing, e)
	return nil
}

// RaiseEvent stages a state-changing event for an event-sourced agent type.
// Staged events are appended atomically by confirm() once all handlers for
// the current Envelope have completed (4.3).
func RaiseEvent(ctx context.Context, payload any, metadata map[string]string) error {
	scope := scopeFrom(ctx)
	if scope == nil {
		return ErrNoDispatchScope
	}
	if ctxkeys.Deactivating(ctx) {
		return nil
	}

	correlationID, _ := ctxkeys.CorrelationID(ctx)
	ev, err := eventstore.NewEvent(scope.selfID, payload, correlationID, metadata)
	if err != nil {
		return err
	}
	scope.pending = append(scope.pending, ev)
	return nil
}
