package kernel

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/agentmesh/core/envelope"
	"github.com/agentmesh/core/eventstore"
	"github.com/agentmesh/core/internal/ctxkeys"
	"github.com/agentmesh/core/state"
)

// Publisher hands a dispatch batch to the Propagation & Routing Engine
// (C5). Forward must not block waiting for targets to handle the batch; it
// only guarantees the batch has been enqueued.
type Publisher interface {
	Forward(ctx context.Context, from envelope.AgentID, batch []*envelope.Envelope) error
}

// Lifecycle is implemented by an agent type to hook into activation and
// deactivation. State is passed by pointer so hooks may adjust it in place
// (e.g. to apply defaults on first activation).
type Lifecycle[S any] interface {
	OnActivate(ctx context.Context, st *S) error
	OnDeactivate(ctx context.Context, st *S) error
	Describe() string
}

// Options configures a GAgentBase.
type Options[S any] struct {
	ID envelope.AgentID
	// Hooks supplies OnActivate/OnDeactivate/Describe. Required.
	Hooks Lifecycle[S]
	// Exactly one of StateStore or EventSourced should be set. Neither set
	// means the agent runs stateless (no load/save at all).
	StateStore   state.Store[S]
	EventSourced *eventstore.EventSourcedStore[S]
	Publisher    Publisher
	Logger       *zap.Logger
	RetryPolicy  RetryPolicy
	// DedupCapacity overrides DefaultDedupWindow.
	DedupCapacity int
}

// GAgentBase is the generic agent kernel (component C4): it drives the
// Created -> Activating -> Active -> Handling -> ... -> Deactivated state
// machine, discovers and dispatches handler methods by reflection, and
// commits mutated state through either a plain state.Store or an
// eventstore.EventSourcedStore. Concrete agent types embed *GAgentBase[S]
// and define their handler methods (HandleXxx / HandleEnvelope) on
// themselves; the outer type's pointer is passed to NewGAgentBase as self
// so handler discovery and invocation can reach them.
type GAgentBase[S any] struct {
	mu             sync.Mutex
	lifecycleState LifecycleState

	id        envelope.AgentID
	selfValue reflect.Value
	handlers  []HandlerDescriptor

	hooks        Lifecycle[S]
	stateStore   state.Store[S]
	eventSourced *eventstore.EventSourcedStore[S]
	publisher    Publisher

	state   S
	version int64

	dedup       *DedupWindow
	retryPolicy RetryPolicy
	logger      *zap.Logger
	errorCount  atomic.Int64
}

// NewGAgentBase builds a GAgentBase bound to self, the fully allocated
// concrete agent value (typically constructed as `&ConcreteType{}` just
// before this call, with ConcreteType embedding *GAgentBase[S]).
func NewGAgentBase[S any](self any, opts Options[S]) *GAgentBase[S] {
	handlers, _ := DiscoverHandlers(reflect.TypeOf(self))

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retryPolicy := opts.RetryPolicy
	if retryPolicy == (RetryPolicy{}) {
		retryPolicy = DefaultRetryPolicy()
	}

	return &GAgentBase[S]{
		lifecycleState: StateCreated,
		id:             opts.ID,
		selfValue:      reflect.ValueOf(self),
		handlers:       handlers,
		hooks:          opts.Hooks,
		stateStore:     opts.StateStore,
		eventSourced:   opts.EventSourced,
		publisher:      opts.Publisher,
		dedup:          NewDedupWindow(opts.DedupCapacity),
		retryPolicy:    retryPolicy,
		logger:         logger.With(zap.String("component", "kernel"), zap.String("agent_id", opts.ID.String())),
	}
}

// ID returns the bound agent's identity.
func (b *GAgentBase[S]) ID() envelope.AgentID { return b.id }

// Describe returns the agent-type supplied description.
func (b *GAgentBase[S]) Describe() string {
	if b.hooks == nil {
		return ""
	}
	return b.hooks.Describe()
}

// LifecycleState returns the kernel's current dispatch state.
func (b *GAgentBase[S]) LifecycleState() LifecycleState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lifecycleState
}

// State returns a pointer to the in-memory state, for use by handler
// methods defined on the embedding agent type. Only safe to call from
// within a handler or a lifecycle hook, both of which run under the
// kernel's exclusive Handling/Activating lock.
func (b *GAgentBase[S]) State() *S { return &b.state }

// ErrorCount returns the number of handler errors observed so far.
func (b *GAgentBase[S]) ErrorCount() int64 { return b.errorCount.Load() }

// Activate is idempotent: once Active, subsequent calls are a no-op.
func (b *GAgentBase[S]) Activate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.lifecycleState {
	case StateActive:
		return nil
	case StateCreated:
		// fall through
	default:
		return ErrInvalidTransition{From: b.lifecycleState, To: StateActivating}
	}

	b.lifecycleState = StateActivating

	switch {
	case b.eventSourced != nil:
		st, version, err := b.eventSourced.Load(ctx, b.id)
		if err != nil {
			b.lifecycleState = StateDeactivated
			return fmt.Errorf("%w: %v", ErrActivationFailed, err)
		}
		b.state = st
		b.version = version
	case b.stateStore != nil:
		st, ok, err := b.stateStore.Load(ctx, b.id)
		if err != nil {
			b.lifecycleState = StateDeactivated
			return fmt.Errorf("%w: %v", ErrActivationFailed, err)
		}
		if ok {
			b.state = st
		}
	}

	if b.hooks != nil {
		if err := b.hooks.OnActivate(ctx, &b.state); err != nil {
			b.lifecycleState = StateDeactivated
			return fmt.Errorf("%w: %v", ErrActivationFailed, err)
		}
	}

	b.lifecycleState = StateActive
	return nil
}

// Deactivate flushes any remaining state, runs OnDeactivate, and
// transitions to Deactivated. Calling Deactivate while a Handle call holds
// the lock blocks until that call completes (4.4.3).
func (b *GAgentBase[S]) Deactivate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deactivateLocked(ctx)
}

// deactivateLocked runs the actual Deactivating -> Deactivated transition.
// Caller must hold b.mu; used both by the public Deactivate and by Handle
// when a Fatal HandlerError forces deactivation mid-dispatch (4.4.5/7.2).
func (b *GAgentBase[S]) deactivateLocked(ctx context.Context) error {
	if b.lifecycleState == StateDeactivated {
		return nil
	}
	if !CanTransition(b.lifecycleState, StateDeactivating) {
		return ErrInvalidTransition{From: b.lifecycleState, To: StateDeactivating}
	}
	b.lifecycleState = StateDeactivating

	// Any Envelope a hook tries to Publish/RaiseEvent from here on must be
	// discarded rather than staged: nothing will ever forward it (7.1).
	dctx := ctxkeys.WithDeactivating(ctx)

	if b.hooks != nil {
		if err := b.hooks.OnDeactivate(dctx, &b.state); err != nil {
			b.logger.Error("on_deactivate failed", zap.Error(err))
		}
	}

	if b.stateStore != nil {
		if err := b.stateStore.Save(ctx, b.id, b.state); err != nil {
			b.logger.Error("final state save failed", zap.Error(err))
		}
	}

	b.lifecycleState = StateDeactivated
	return nil
}

// Handle runs the dispatch algorithm (4.4.4) for a single received
// Envelope and returns the batch of outgoing envelopes it produced (already
// handed to the Publisher, if one is configured).
func (b *GAgentBase[S]) Handle(ctx context.Context, e *envelope.Envelope) ([]*envelope.Envelope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lifecycleState != StateActive {
		return nil, ErrAgentBusy
	}
	b.lifecycleState = StateHandling
	// A Fatal HandlerError deactivates the agent from within this call (see
	// below); in that case lifecycleState is already Deactivated by the time
	// this runs and must not be bounced back to Active.
	defer func() {
		if b.lifecycleState == StateHandling {
			b.lifecycleState = StateActive
		}
	}()

	// 1. Hop check.
	if e.ExceedsHop() {
		return nil, nil
	}

	// Steps 4 and 10 of 4.4.4 (dedup-check and dedup-record) are collapsed
	// into one atomic SeenOrRecord call: the kernel's single-threaded
	// dispatch guarantee means no second delivery of the same envelope can
	// be mid-flight while this one is still being recorded.
	if b.dedup.SeenOrRecord(e.EnvelopeID) {
		return nil, nil
	}

	// 2. Min-hop check: skip handler invocation but still forward.
	skipHandlers := e.BelowMinHop()

	scope := &dispatchScope{selfID: b.id}
	dctx := withDispatchScope(ctx, scope)

	if !skipHandlers {
		for _, h := range b.handlers {
			if !b.handlerApplies(h, e) {
				continue
			}
			// 3. Self-suppression.
			if !h.AllowSelfHandling && e.HasPublisher(b.id) {
				continue
			}

			arg, err := b.buildHandlerArg(h, e)
			if err != nil {
				b.logger.Warn("payload decode failed, dropping for handler",
					zap.String("handler", h.Name), zap.Error(err))
				continue
			}

			out, err := b.invokeHandler(dctx, h, arg)
			if err != nil {
				b.errorCount.Add(1)
				b.logger.Error("handler error",
					zap.String("handler", h.Name), zap.Error(err))

				if isFatal(err) {
					if deactErr := b.deactivateLocked(ctx); deactErr != nil {
						b.logger.Error("deactivate after fatal handler error failed", zap.Error(deactErr))
					}
					return nil, err
				}
				if excEnv, buildErr := b.buildExceptionEnvelope(b.id, e, h.Name, err); buildErr == nil {
					scope.outgoing = append(scope.outgoing, excEnv)
				}
				continue
			}
			scope.outgoing = append(scope.outgoing, out...)
		}
	}

	// 8. State commit.
	if err := b.commitState(ctx, scope); err != nil {
		return nil, err
	}

	// 9. Forward outgoing envelopes.
	if len(scope.outgoing) > 0 && b.publisher != nil {
		if err := b.publisher.Forward(ctx, b.id, scope.outgoing); err != nil {
			return scope.outgoing, err
		}
	}

	return scope.outgoing, nil
}

func (b *GAgentBase[S]) handlerApplies(h HandlerDescriptor, e *envelope.Envelope) bool {
	if h.CatchAll {
		return true
	}
	if h.PayloadType == nil {
		return false
	}
	return envelope.TypeNameOf(reflect.New(h.PayloadType).Interface()) == e.Payload.TypeName
}

func (b *GAgentBase[S]) buildHandlerArg(h HandlerDescriptor, e *envelope.Envelope) (reflect.Value, error) {
	if h.CatchAll {
		return reflect.ValueOf(e), nil
	}
	payloadPtr := reflect.New(h.PayloadType)
	if err := envelope.DecodePayload(e.Payload, payloadPtr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return payloadPtr, nil
}

func (b *GAgentBase[S]) invokeHandler(ctx context.Context, h HandlerDescriptor, arg reflect.Value) ([]*envelope.Envelope, error) {
	return invokeWithRetry(ctx, b.retryPolicy, func() ([]*envelope.Envelope, error) {
		return h.Invoke(ctx, b.selfValue, arg)
	})
}

func (b *GAgentBase[S]) commitState(ctx context.Context, scope *dispatchScope) error {
	if b.eventSourced != nil {
		if len(scope.pending) == 0 {
			return nil
		}
		newState, newVersion, err := b.eventSourced.Confirm(ctx, b.id, b.state, b.version, scope.pending)
		if err != nil {
			// ConcurrencyConflict aborts the confirm; the caller (actor
			// retry loop) decides whether to retry or discard the envelope
			// that produced these events.
			return err
		}
		b.state = newState
		b.version = newVersion
		return nil
	}

	if b.stateStore != nil {
		if err := b.stateStore.Save(ctx, b.id, b.state); err != nil {
			return err
		}
	}
	return nil
}

// isFatal classifies a handler error as Fatal (state-corruption class),
// which aborts Handle entirely rather than continuing to the next handler.
func isFatal(err error) bool {
	he, ok := err.(*HandlerError)
	return ok && he.Fatal
}

// exceptionPayload is published Up when a handler raises a non-retryable
// error, carrying enough of the original envelope to diagnose the failure.
type exceptionPayload struct {
	OriginalEnvelopeID string            `msgpack:"original_envelope_id"`
	HandlerName        string            `msgpack:"handler_name"`
	ErrorMessage       string            `msgpack:"error_message"`
	Metadata           map[string]string `msgpack:"metadata,omitempty"`
}

func (b *GAgentBase[S]) buildExceptionEnvelope(self envelope.AgentID, original *envelope.Envelope, handlerName string, cause error) (*envelope.Envelope, error) {
	payload := exceptionPayload{
		OriginalEnvelopeID: original.EnvelopeID,
		HandlerName:        handlerName,
		ErrorMessage:       cause.Error(),
		Metadata:           original.Metadata,
	}
	tp, err := envelope.EncodePayload(payload)
	if err != nil {
		return nil, err
	}
	return envelope.Build(tp, envelope.DirectionUp,
		envelope.WithPublisherID(self),
		envelope.WithCorrelationID(original.CorrelationID),
	)
}
