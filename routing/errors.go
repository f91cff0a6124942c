package routing

import "errors"

var (
	// ErrCycle is returned by SetParent when the requested assignment would
	// introduce a cycle in the agent graph.
	ErrCycle = errors.New("routing: set_parent would introduce a cycle")

	// ErrUnknownAgent names an agent_id the graph has never seen. No graph
	// query returns it: GetParent reports an unknown id as ok=false, and the
	// other queries return an empty result.
	ErrUnknownAgent = errors.New("routing: unknown agent id")

	// ErrSelfParent is returned when an agent is assigned as its own parent.
	ErrSelfParent = errors.New("routing: an agent cannot be its own parent")
)
