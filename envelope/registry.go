package envelope

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Decoder decodes a TypedPayload's raw bytes into a freshly allocated
// concrete value.
type Decoder func(data []byte) (any, error)

// Registry maps a payload's fully-qualified type name to the decoder able to
// reconstruct it. Callers populate it with Register or RegisterType; Decode
// only looks the name up.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// Register associates typeName with decoder. Any second registration of the
// same name is rejected with ErrTypeAlreadyRegistered, whatever the decoder.
func (r *Registry) Register(typeName string, decoder Decoder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[typeName]; exists {
		return fmt.Errorf("%w: %s", ErrTypeAlreadyRegistered, typeName)
	}
	r.decoders[typeName] = decoder
	return nil
}

// Decode looks up tp.TypeName and decodes tp.Data with the registered
// decoder.
func (r *Registry) Decode(tp TypedPayload) (any, error) {
	r.mu.RLock()
	decoder, ok := r.decoders[tp.TypeName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayloadType, tp.TypeName)
	}
	return decoder(tp.Data)
}

// Has reports whether typeName has a registered decoder.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.decoders[typeName]
	return ok
}

// RegisterType registers T's decoder under its fully-qualified type name,
// using reflection once at registration time rather than per event.
func RegisterType[T any](r *Registry) error {
	var zero T
	typeName := TypeNameOf(&zero)
	return r.Register(typeName, func(data []byte) (any, error) {
		v := reflect.New(reflect.TypeOf(zero)).Interface()
		if err := msgpack.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("envelope: decode %s: %w", typeName, err)
		}
		return v, nil
	})
}

// DefaultRegistry is a process-wide registry for callers that do not carry
// their own. Nothing in this module registers types into it; callers do so
// with Register or RegisterType.
var DefaultRegistry = NewRegistry()
