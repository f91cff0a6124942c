package routing

import (
	"context"
	"fmt"

	"github.com/agentmesh/core/envelope"
)

// metaUpThenDownOrigin marks an Envelope's first (Up) hop of an
// UpThenDown delivery, so a reader inspecting metadata can tell the
// eventual Down re-publish apart from an ordinary Down publish.
const metaUpThenDownOrigin = "routing_up_then_down_origin"

// Deliverer hands a single next-hop Envelope to a specific target's
// mailbox (component C6), without waiting for it to be handled.
type Deliverer interface {
	Deliver(ctx context.Context, target envelope.AgentID, e *envelope.Envelope) error
}

// Router computes per-direction target sets over a Graph and forwards
// next-hop envelopes to a Deliverer. It implements kernel.Publisher, so a
// *Router can be handed directly to kernel.Options.Publisher.
type Router struct {
	graph     *Graph
	deliverer Deliverer
}

// NewRouter builds a Router over graph, delivering through deliverer.
func NewRouter(graph *Graph, deliverer Deliverer) *Router {
	return &Router{graph: graph, deliverer: deliverer}
}

// Forward routes every Envelope in batch, as published by the agent from.
func (r *Router) Forward(ctx context.Context, from envelope.AgentID, batch []*envelope.Envelope) error {
	for _, e := range batch {
		if err := r.route(ctx, from, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) route(ctx context.Context, from envelope.AgentID, e *envelope.Envelope) error {
	switch e.Direction {
	case envelope.DirectionUp:
		return r.deliverToAll(ctx, from, e, r.upTargets(from), envelope.DirectionUp)
	case envelope.DirectionDown:
		return r.deliverToAll(ctx, from, e, r.graph.GetChildren(from), envelope.DirectionDown)
	case envelope.DirectionBoth:
		if err := r.deliverToAll(ctx, from, e, r.upTargets(from), envelope.DirectionUp); err != nil {
			return err
		}
		return r.deliverToAll(ctx, from, e, r.graph.GetChildren(from), envelope.DirectionDown)
	case envelope.DirectionUpThenDown:
		return r.deliverUpThenDown(ctx, from, e)
	default:
		return fmt.Errorf("routing: unknown direction %v", e.Direction)
	}
}

// upTargets returns from's parent (if any) plus its siblings — "tell my
// peers under our parent" (4.5.2).
func (r *Router) upTargets(from envelope.AgentID) []envelope.AgentID {
	var targets []envelope.AgentID
	if parent, ok := r.graph.GetParent(from); ok {
		targets = append(targets, parent)
	}
	return append(targets, r.graph.GetSiblings(from)...)
}

// deliverUpThenDown delivers the first (Up) hop to from's parent, then
// immediately computes the parent's re-publish Down to its children
// (from's siblings and from itself, subject to self-suppression at the
// receiving kernel). The two hops are computed together by the router
// rather than waiting for the parent's kernel to actually run and call
// Publish again, since forwarding must not wait for a target to handle its
// envelope (4.5.3) and a genuine two-phase wait would contradict that.
func (r *Router) deliverUpThenDown(ctx context.Context, from envelope.AgentID, e *envelope.Envelope) error {
	parent, ok := r.graph.GetParent(from)
	if !ok {
		return nil
	}

	upHop := e.NextHop(from, envelope.DirectionUp)
	if upHop.Metadata == nil {
		upHop.Metadata = make(map[string]string, 1)
	}
	upHop.Metadata[metaUpThenDownOrigin] = from.String()

	if !upHop.ExceedsHop() {
		if err := r.deliverer.Deliver(ctx, parent, upHop); err != nil {
			return err
		}
	}

	return r.deliverToAll(ctx, parent, upHop, r.graph.GetChildren(parent), envelope.DirectionDown)
}

func (r *Router) deliverToAll(ctx context.Context, forwarder envelope.AgentID, e *envelope.Envelope, targets []envelope.AgentID, direction envelope.Direction) error {
	for _, t := range targets {
		next := e.NextHop(forwarder, direction)
		if next.ExceedsHop() {
			continue
		}
		if err := r.deliverer.Deliver(ctx, t, next); err != nil {
			return err
		}
	}
	return nil
}
