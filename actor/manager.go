package actor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/agentmesh/core/envelope"
	"github.com/agentmesh/core/routing"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	MailboxCapacity  int
	Overflow         OverflowPolicy
	DeadLetterBuffer int
	Logger           *zap.Logger
}

// Manager is the registry, factory driver, and lifecycle controller for
// every live Actor (component C6's second half). It is the only authorized
// mutator of the agent graph: SetParent always goes through it so
// parent/child consistency survives partial failures (4.6.2). Manager also
// implements routing.Deliverer, handing next-hop envelopes the Router
// computes straight to the target's mailbox.
type Manager struct {
	mu     sync.RWMutex
	actors map[string]*Actor

	graph  *routing.Graph
	router *routing.Router

	mailboxCapacity int
	overflow        OverflowPolicy
	deadLetters     chan DeadLetter
	logger          *zap.Logger
}

// NewManager builds an empty Manager.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bufSize := opts.DeadLetterBuffer
	if bufSize <= 0 {
		bufSize = 256
	}

	m := &Manager{
		actors:          make(map[string]*Actor),
		graph:           routing.NewGraph(),
		mailboxCapacity: opts.MailboxCapacity,
		overflow:        opts.Overflow,
		deadLetters:     make(chan DeadLetter, bufSize),
		logger:          logger.With(zap.String("component", "actor_manager")),
	}
	m.router = routing.NewRouter(m.graph, m)
	return m
}

// Router returns the Manager's Router, for injection as a kernel.Publisher
// when constructing a new agent's kernel.
func (m *Manager) Router() *routing.Router { return m.router }

// Graph returns the Manager's agent graph, for read-only inspection
// (Ancestors, GetChildren, ...).
func (m *Manager) Graph() *routing.Graph { return m.graph }

// DeadLetters returns the channel envelopes are sent to when delivery or
// handling ultimately fails. Callers should drain it continuously.
func (m *Manager) DeadLetters() <-chan DeadLetter { return m.deadLetters }

// Deliver implements routing.Deliverer: it looks up target's Actor and
// enqueues e, or dead-letters e if target is not registered.
func (m *Manager) Deliver(ctx context.Context, target envelope.AgentID, e *envelope.Envelope) error {
	m.mu.RLock()
	a, ok := m.actors[target.String()]
	m.mu.RUnlock()

	if !ok {
		m.sendDeadLetter(target, e, "target agent not registered")
		return nil
	}
	return a.Enqueue(ctx, e)
}

// Register wraps k in a new Actor, registers it under k.ID(), links it to
// parent in the agent graph (a nil/zero parent registers it as a root),
// and starts it. Registering an id twice returns ErrAlreadyRegistered.
func (m *Manager) Register(ctx context.Context, k Kernel, parent envelope.AgentID) (*Actor, error) {
	id := k.ID()
	key := id.String()

	m.mu.Lock()
	if _, exists := m.actors[key]; exists {
		m.mu.Unlock()
		return nil, ErrAlreadyRegistered
	}

	a := NewActor(k, ActorOptions{
		MailboxCapacity: m.mailboxCapacity,
		Overflow:        m.overflow,
		DeadLetters:     m.deadLetters,
		Logger:          m.logger,
	})
	m.actors[key] = a
	m.mu.Unlock()

	if !parent.IsNil() {
		if err := m.graph.SetParent(id, parent); err != nil {
			m.mu.Lock()
			delete(m.actors, key)
			m.mu.Unlock()
			return nil, fmt.Errorf("actor: register %s: %w", key, err)
		}
	} else {
		m.graph.Register(id)
	}

	if err := a.Start(ctx); err != nil {
		m.mu.Lock()
		delete(m.actors, key)
		m.mu.Unlock()
		m.graph.Remove(id)
		return nil, err
	}

	return a, nil
}

// Lookup returns the Actor registered for id, if any.
func (m *Manager) Lookup(id envelope.AgentID) (*Actor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.actors[id.String()]
	return a, ok
}

// ActivateAll starts every registered Actor whose Start has not yet been
// called successfully. Actors registered via Register are already started;
// this is for actors constructed separately and added with a future
// AddActor-style extension point, and for restart-from-persisted-graph
// flows. Errors are collected; ActivateAll keeps going and returns the
// first one encountered.
func (m *Manager) ActivateAll(ctx context.Context) error {
	m.mu.RLock()
	actors := make([]*Actor, 0, len(m.actors))
	for _, a := range m.actors {
		actors = append(actors, a)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, a := range actors {
		if err := a.Start(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeactivateAll stops every registered Actor. Errors are collected; the
// first one encountered is returned after all actors have been asked to
// stop.
func (m *Manager) DeactivateAll(ctx context.Context) error {
	m.mu.RLock()
	actors := make([]*Actor, 0, len(m.actors))
	for _, a := range m.actors {
		actors = append(actors, a)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, a := range actors {
		if err := a.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Remove stops and forgets id's Actor and detaches it from the agent
// graph; its children become roots.
func (m *Manager) Remove(ctx context.Context, id envelope.AgentID) error {
	m.mu.Lock()
	a, ok := m.actors[id.String()]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownAgent
	}
	delete(m.actors, id.String())
	m.mu.Unlock()

	m.graph.Remove(id)
	return a.Stop(ctx)
}
