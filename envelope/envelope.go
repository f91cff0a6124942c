// =============================================================================
// 📦 事件信封模型
// =============================================================================
// Envelope 是运行时中唯一的线上格式：跨 Agent 传递、落盘的每一个字节都先
// 被装进一个 Envelope。除 Publishers/CurrentHop/Direction 外其余字段在
// 转发过程中保持不变。
// =============================================================================
package envelope

import (
	"time"

	"github.com/google/uuid"
)

// Direction selects the target set a published Envelope is forwarded to.
type Direction int32

const (
	// DirectionUp delivers to the publisher's parent and siblings.
	DirectionUp Direction = iota
	// DirectionDown delivers to the publisher's children.
	DirectionDown
	// DirectionBoth delivers to parent, siblings, and children.
	DirectionBoth
	// DirectionUpThenDown delivers to the parent first, which re-publishes
	// Down once received.
	DirectionUpThenDown
)

// String implements fmt.Stringer for logging.
func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionBoth:
		return "both"
	case DirectionUpThenDown:
		return "up_then_down"
	default:
		return "unknown"
	}
}

// HopUnbounded is the sentinel MaxHop value meaning "no hop limit".
const HopUnbounded int32 = -1

// Envelope is an immutable record carrying a typed payload plus routing
// metadata. Only Clone and NextHop ever produce a new Envelope value;
// mutating a live Envelope in place is a programming error.
type Envelope struct {
	EnvelopeID    string            `msgpack:"envelope_id"`
	TimestampMS   int64             `msgpack:"timestamp_ms"`
	SchemaVersion int32             `msgpack:"schema_version"`
	Payload       TypedPayload      `msgpack:"payload"`
	PublisherID   AgentID           `msgpack:"publisher_id"`
	Publishers    []AgentID         `msgpack:"publishers"`
	Direction     Direction         `msgpack:"direction"`
	CurrentHop    int32             `msgpack:"current_hop"`
	MaxHop        int32             `msgpack:"max_hop"`
	MinHop        int32             `msgpack:"min_hop"`
	CorrelationID string            `msgpack:"correlation_id,omitempty"`
	Metadata      map[string]string `msgpack:"metadata,omitempty"`
}

// BuildOption customizes Build beyond its required payload/direction pair.
type BuildOption func(*Envelope)

// WithMaxHop overrides the default unbounded max hop.
func WithMaxHop(maxHop int32) BuildOption {
	return func(e *Envelope) { e.MaxHop = maxHop }
}

// WithMinHop sets the depth below which receivers skip handler invocation
// but still forward.
func WithMinHop(minHop int32) BuildOption {
	return func(e *Envelope) { e.MinHop = minHop }
}

// WithCorrelationID tags the Envelope for request/reply correlation.
func WithCorrelationID(id string) BuildOption {
	return func(e *Envelope) { e.CorrelationID = id }
}

// WithMetadata attaches free-form string metadata.
func WithMetadata(md map[string]string) BuildOption {
	return func(e *Envelope) { e.Metadata = md }
}

// WithPublisherID sets the originating agent. Used by the kernel at publish
// time; Build itself does not require a publisher.
func WithPublisherID(id AgentID) BuildOption {
	return func(e *Envelope) { e.PublisherID = id }
}

// WithSchemaVersion overrides the default schema version of 1.
func WithSchemaVersion(v int32) BuildOption {
	return func(e *Envelope) { e.SchemaVersion = v }
}

// Build constructs a new Envelope around payload. max_hop defaults to
// unbounded (-1) and min_hop defaults to 0.
func Build(payload TypedPayload, direction Direction, opts ...BuildOption) (*Envelope, error) {
	if payload.TypeName == "" {
		return nil, ErrInvalidPayload
	}

	e := &Envelope{
		EnvelopeID:    uuid.NewString(),
		TimestampMS:   time.Now().UnixMilli(),
		SchemaVersion: 1,
		Payload:       payload,
		Direction:     direction,
		MaxHop:        HopUnbounded,
		MinHop:        0,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.MaxHop < -1 {
		return nil, ErrInvalidHop
	}
	if e.MinHop < 0 {
		return nil, ErrInvalidHop
	}

	return e, nil
}

// Clone returns an independent deep copy. Only Publishers and Metadata hold
// reference-semantics fields; everything else is a value copy.
func (e *Envelope) Clone() *Envelope {
	clone := *e
	if e.Publishers != nil {
		clone.Publishers = append([]AgentID(nil), e.Publishers...)
	}
	if e.Metadata != nil {
		md := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			md[k] = v
		}
		clone.Metadata = md
	}
	return &clone
}

// NextHop derives the Envelope delivered to the next target: forwarder is
// appended to Publishers, CurrentHop is incremented, and Direction is set to
// the direction the new hop carries (which may differ from e.Direction, as
// with UpThenDown's parent re-publish).
func (e *Envelope) NextHop(forwarder AgentID, direction Direction) *Envelope {
	next := e.Clone()
	next.Publishers = append(next.Publishers, forwarder)
	next.CurrentHop++
	next.Direction = direction
	return next
}

// ExceedsHop reports whether the Envelope has traveled past its max hop
// bound and should be dropped.
func (e *Envelope) ExceedsHop() bool {
	return e.MaxHop != HopUnbounded && e.CurrentHop > e.MaxHop
}

// BelowMinHop reports whether the Envelope is still shallower than MinHop,
// meaning the handler is skipped but forwarding still proceeds.
func (e *Envelope) BelowMinHop() bool {
	return e.CurrentHop < e.MinHop
}

// HasPublisher reports whether id originated or re-emitted this Envelope,
// i.e. whether it appears as PublisherID or anywhere in Publishers.
func (e *Envelope) HasPublisher(id AgentID) bool {
	if e.PublisherID.Equal(id) {
		return true
	}
	for _, p := range e.Publishers {
		if p.Equal(id) {
			return true
		}
	}
	return false
}
