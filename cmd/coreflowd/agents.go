package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agentmesh/core/actor"
	"github.com/agentmesh/core/envelope"
	"github.com/agentmesh/core/kernel"
	"github.com/agentmesh/core/state"
)

// StartTickEvent drives one round of work from outside the agent graph.
type StartTickEvent struct {
	Amount int `msgpack:"amount"`
}

// TickEvent is the supervisor's Down re-publish of a StartTickEvent,
// reaching every worker underneath it.
type TickEvent struct {
	Amount int `msgpack:"amount"`
}

// WorkerReportEvent is a worker's Up report of its running total, reaching
// the supervisor and the worker's siblings.
type WorkerReportEvent struct {
	WorkerID string `msgpack:"worker_id"`
	Value    int    `msgpack:"value"`
}

// SupervisorState tracks the running sum of every WorkerReportEvent seen.
type SupervisorState struct {
	TotalReported int `msgpack:"total_reported"`
}

// Supervisor fans a StartTickEvent out to its workers and aggregates their
// reports. It holds no reference to the workers themselves — routing.Graph
// is the only place parent/child relationships live.
type Supervisor struct {
	*kernel.GAgentBase[SupervisorState]
	logger *zap.Logger
}

// NewSupervisor constructs and binds a Supervisor.
func NewSupervisor(id envelope.AgentID, store state.Store[SupervisorState], pub kernel.Publisher, logger *zap.Logger) *Supervisor {
	s := &Supervisor{logger: logger}
	s.GAgentBase = kernel.NewGAgentBase(s, kernel.Options[SupervisorState]{
		ID:         id,
		Hooks:      s,
		StateStore: store,
		Publisher:  pub,
		Logger:     logger,
	})
	return s
}

func (s *Supervisor) OnActivate(ctx context.Context, st *SupervisorState) error { return nil }
func (s *Supervisor) OnDeactivate(ctx context.Context, st *SupervisorState) error {
	return nil
}
func (s *Supervisor) Describe() string { return "supervisor" }

// HandleStartTick re-publishes amount Down to every worker.
func (s *Supervisor) HandleStartTick(ctx context.Context, evt *StartTickEvent) ([]*envelope.Envelope, error) {
	if err := kernel.Publish(ctx, TickEvent{Amount: evt.Amount}, envelope.DirectionDown); err != nil {
		return nil, err
	}
	return nil, nil
}

// HandleWorkerReport folds a worker's reported value into the running sum.
func (s *Supervisor) HandleWorkerReport(ctx context.Context, evt *WorkerReportEvent) ([]*envelope.Envelope, error) {
	s.State().TotalReported += evt.Value
	s.logger.Info("aggregated worker report",
		zap.String("worker_id", evt.WorkerID),
		zap.Int("value", evt.Value),
		zap.Int("total", s.State().TotalReported),
	)
	return nil, nil
}

// WorkerState holds the worker's own running total.
type WorkerState struct {
	Value int `msgpack:"value"`
}

// Worker accumulates every TickEvent it receives and reports the new total
// Up (reaching its supervisor and siblings).
type Worker struct {
	*kernel.GAgentBase[WorkerState]
}

// NewWorker constructs and binds a Worker.
func NewWorker(id envelope.AgentID, store state.Store[WorkerState], pub kernel.Publisher) *Worker {
	w := &Worker{}
	w.GAgentBase = kernel.NewGAgentBase(w, kernel.Options[WorkerState]{
		ID:         id,
		Hooks:      w,
		StateStore: store,
		Publisher:  pub,
	})
	return w
}

func (w *Worker) OnActivate(ctx context.Context, st *WorkerState) error   { return nil }
func (w *Worker) OnDeactivate(ctx context.Context, st *WorkerState) error { return nil }
func (w *Worker) Describe() string                                       { return "worker" }

// HandleTick adds amount to the worker's total and reports the new value.
func (w *Worker) HandleTick(ctx context.Context, evt *TickEvent) ([]*envelope.Envelope, error) {
	w.State().Value += evt.Amount
	report := WorkerReportEvent{WorkerID: w.ID().String(), Value: w.State().Value}
	if err := kernel.Publish(ctx, report, envelope.DirectionUp); err != nil {
		return nil, err
	}
	return nil, nil
}

// demoGraph bundles the supervisor id and worker count so the HTTP layer
// can drive a tick round without reaching back into package-level state.
type demoGraph struct {
	manager      *actor.Manager
	supervisorID envelope.AgentID
	workerCount  int
}

// buildDemoGraph registers one Supervisor and workerCount Workers as its
// children, wiring every agent's Publisher to manager.Router() so Publish
// calls made from inside a handler reach the rest of the graph.
func buildDemoGraph(ctx context.Context, manager *actor.Manager, workerCount int, logger *zap.Logger) (*demoGraph, error) {
	supervisorID := envelope.NewAgentID()
	supervisor := NewSupervisor(supervisorID, state.NewMemoryStore[SupervisorState](), manager.Router(), logger)
	if _, err := manager.Register(ctx, supervisor.GAgentBase, envelope.NilAgentID); err != nil {
		return nil, fmt.Errorf("register supervisor: %w", err)
	}

	for i := 0; i < workerCount; i++ {
		worker := NewWorker(envelope.NewAgentID(), state.NewMemoryStore[WorkerState](), manager.Router())
		if _, err := manager.Register(ctx, worker.GAgentBase, supervisorID); err != nil {
			return nil, fmt.Errorf("register worker %d: %w", i, err)
		}
	}

	return &demoGraph{manager: manager, supervisorID: supervisorID, workerCount: workerCount}, nil
}

// tick delivers a StartTickEvent to the supervisor, fanning amount out to
// every worker and, once they report back, into the supervisor's total.
func (g *demoGraph) tick(ctx context.Context, amount int) error {
	tp, err := envelope.EncodePayload(StartTickEvent{Amount: amount})
	if err != nil {
		return err
	}
	e, err := envelope.Build(tp, envelope.DirectionDown)
	if err != nil {
		return err
	}
	return g.manager.Deliver(ctx, g.supervisorID, e)
}
