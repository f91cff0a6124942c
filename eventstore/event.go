package eventstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentmesh/core/envelope"
)

// Event is a single append-only log record: one state-changing fact about
// an agent, persisted at a specific monotonically increasing version.
type Event struct {
	EventID       string               `msgpack:"event_id"`
	Timestamp     time.Time            `msgpack:"timestamp"`
	Version       int64                `msgpack:"version"`
	EventType     string               `msgpack:"event_type"`
	Payload       envelope.TypedPayload `msgpack:"event_payload"`
	AgentID       envelope.AgentID     `msgpack:"agent_id"`
	CorrelationID string               `msgpack:"correlation_id,omitempty"`
	Metadata      map[string]string    `msgpack:"metadata,omitempty"`
}

// NewEvent wraps payload into an Event for agentID. Version is left at 0;
// the store assigns versions to the rows it writes during Append.
func NewEvent(agentID envelope.AgentID, payload any, correlationID string, metadata map[string]string) (Event, error) {
	tp, err := envelope.EncodePayload(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventID:       uuid.NewString(),
		Timestamp:     time.Now(),
		EventType:     tp.TypeName,
		Payload:       tp,
		AgentID:       agentID,
		CorrelationID: correlationID,
		Metadata:      metadata,
	}, nil
}

// Snapshot is a point-in-time serialization of state, associated with the
// event version at which it was taken.
type Snapshot struct {
	Version   int64                 `msgpack:"version"`
	Timestamp time.Time             `msgpack:"timestamp"`
	Payload   envelope.TypedPayload `msgpack:"state_payload"`
	Metadata  map[string]string     `msgpack:"metadata,omitempty"`
}

// NewSnapshot wraps a deep-copied state value taken at version.
func NewSnapshot(state any, version int64, metadata map[string]string) (Snapshot, error) {
	tp, err := envelope.EncodePayload(state)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Version:   version,
		Timestamp: time.Now(),
		Payload:   tp,
		Metadata:  metadata,
	}, nil
}
