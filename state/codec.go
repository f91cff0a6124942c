package state

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// DeepCopy returns an independent copy of s by encoding then decoding it
// through msgpack. This is uniformly deep for any msgpack-round-trippable
// type, including ones with reference-semantics fields (slices, maps,
// pointers), so no per-type copy constructor is needed.
func DeepCopy[S any](s S) (S, error) {
	var zero S

	data, err := msgpack.Marshal(s)
	if err != nil {
		return zero, fmt.Errorf("state: deep copy encode: %w", err)
	}

	var out S
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("state: deep copy decode: %w", err)
	}
	return out, nil
}

func encodeState[S any](s S) ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("state: encode: %w", err)
	}
	return data, nil
}

func decodeState[S any](data []byte) (S, error) {
	var out S
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("state: decode: %w", err)
	}
	return out, nil
}
