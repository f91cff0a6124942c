package envelope

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// TypedPayload is the arbitrary-message-wrapper well-known type: every
// Envelope payload, event record, and snapshot is one of these. TypeName is
// the fully-qualified Go type name of the wrapped value; Data is its
// msgpack encoding. A process-wide Registry maps TypeName back to a decoder
// at receive time, so no shared compile-time knowledge of the payload type
// is required between publisher and subscriber.
type TypedPayload struct {
	TypeName string `msgpack:"type_name"`
	Data     []byte `msgpack:"data"`
}

// TypeNameOf returns the fully-qualified name (package path + type name)
// used to tag a payload's TypedPayload.TypeName. Pointer types are
// dereferenced first so `*pkg.Foo` and `pkg.Foo` resolve to the same name.
func TypeNameOf(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// EncodePayload wraps v into a TypedPayload, encoding it with msgpack and
// tagging it with its fully-qualified type name.
func EncodePayload(v any) (TypedPayload, error) {
	if v == nil {
		return TypedPayload{}, ErrInvalidPayload
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return TypedPayload{}, fmt.Errorf("envelope: encode payload: %w", err)
	}
	return TypedPayload{TypeName: TypeNameOf(v), Data: data}, nil
}

// DecodePayload decodes tp.Data into out, which must be a non-nil pointer.
// Callers that already know the concrete type (because they are the
// publisher, or because a handler was dispatched by payload type) use this
// directly instead of going through the Registry.
func DecodePayload(tp TypedPayload, out any) error {
	if tp.TypeName == "" {
		return ErrInvalidPayload
	}
	if err := msgpack.Unmarshal(tp.Data, out); err != nil {
		return fmt.Errorf("envelope: decode payload %s: %w", tp.TypeName, err)
	}
	return nil
}
