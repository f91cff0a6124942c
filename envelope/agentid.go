package envelope

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// AgentID uniquely identifies a logical agent across restarts and runtimes.
// It wraps a uuid.UUID rather than aliasing it so the wire representation
// (a plain string) stays under this package's control.
type AgentID struct {
	id uuid.UUID
}

// NilAgentID is the zero value, used to mean "no parent" / "no publisher".
var NilAgentID = AgentID{}

// NewAgentID generates a fresh random AgentID.
func NewAgentID() AgentID {
	return AgentID{id: uuid.New()}
}

// ParseAgentID parses the canonical string form of an AgentID.
func ParseAgentID(s string) (AgentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AgentID{}, err
	}
	return AgentID{id: u}, nil
}

// MustParseAgentID is like ParseAgentID but panics on error; intended for
// literal IDs in tests and examples.
func MustParseAgentID(s string) AgentID {
	id, err := ParseAgentID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical hyphenated UUID form.
func (a AgentID) String() string {
	return a.id.String()
}

// IsNil reports whether this is the zero AgentID.
func (a AgentID) IsNil() bool {
	return a.id == uuid.Nil
}

// Equal reports whether two AgentIDs identify the same agent.
func (a AgentID) Equal(other AgentID) bool {
	return a.id == other.id
}

// EncodeMsgpack implements msgpack.CustomEncoder, writing the AgentID as a
// plain string rather than msgpack's default UUID byte encoding.
func (a AgentID) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(a.id.String())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (a *AgentID) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	if s == "" {
		*a = AgentID{}
		return nil
	}
	parsed, err := ParseAgentID(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON supports the human-facing admin/debug JSON views; it is never
// used for bytes that cross the wire or touch disk as the source of truth.
func (a AgentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.id.String())
}

// UnmarshalJSON is the counterpart of MarshalJSON.
func (a *AgentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = AgentID{}
		return nil
	}
	parsed, err := ParseAgentID(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
