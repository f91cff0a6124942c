package kernel

import (
	"context"
	"reflect"
	"sort"

	"github.com/agentmesh/core/envelope"
)

// catchAllMethodName is the convention-based catch-all handler: it receives
// the raw Envelope rather than an unpacked payload.
const catchAllMethodName = "HandleEnvelope"

var (
	ctxType      = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType      = reflect.TypeOf((*error)(nil)).Elem()
	envelopeType = reflect.TypeOf((*envelope.Envelope)(nil))
	outSliceType = reflect.TypeOf([]*envelope.Envelope(nil))
)

// HandlerDescriptor is a compiled handler method: a method on an agent type
// matching one of the naming conventions listed on DiscoverHandlers, ready to
// be invoked via reflection during dispatch.
type HandlerDescriptor struct {
	Name              string
	PayloadType       reflect.Type // nil for the catch-all handler
	CatchAll          bool
	Priority          int
	AllowSelfHandling bool
	method            reflect.Method
}

// Invoke calls the handler on receiver with ctx and either the unpacked
// payload (as a *PayloadType) or, for a catch-all handler, the Envelope
// itself.
func (h HandlerDescriptor) Invoke(ctx context.Context, receiver reflect.Value, arg reflect.Value) ([]*envelope.Envelope, error) {
	out := h.method.Func.Call([]reflect.Value{receiver, reflect.ValueOf(ctx), arg})
	var outEnvelopes []*envelope.Envelope
	if !out[0].IsNil() {
		outEnvelopes = out[0].Interface().([]*envelope.Envelope)
	}
	var err error
	if !out[1].IsNil() {
		err = out[1].Interface().(error)
	}
	return outEnvelopes, err
}

// DiscoverHandlers scans agentType (the pointer type an agent instance is
// created as) for methods matching the handler conventions:
//   - `HandleEnvelope(ctx, *envelope.Envelope) ([]*envelope.Envelope, error)`
//     is the catch-all handler.
//   - any other exported `HandleXxx(ctx, *T) ([]*envelope.Envelope, error)`
//     is a typed handler for payload type T.
//
// Priority and self-handling are read from optional companion methods
// `<Name>Priority() int` and `<Name>AllowSelfHandling() bool`; absent
// companions default to priority 0 and AllowSelfHandling false. Handlers
// are returned sorted by ascending priority, ties broken by method name
// (reflect lists methods in lexicographic order, not declaration order).
func DiscoverHandlers(agentType reflect.Type) ([]HandlerDescriptor, error) {
	var descriptors []HandlerDescriptor

	for i := 0; i < agentType.NumMethod(); i++ {
		m := agentType.Method(i)
		if !isHandlerSignature(m) {
			continue
		}

		d := HandlerDescriptor{
			Name:   m.Name,
			method: m,
		}
		if m.Name == catchAllMethodName {
			d.CatchAll = true
		} else {
			d.PayloadType = m.Type.In(2).Elem()
		}

		d.Priority = companionPriority(agentType, m.Name)
		d.AllowSelfHandling = companionAllowSelfHandling(agentType, m.Name)

		descriptors = append(descriptors, d)
	}

	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Priority < descriptors[j].Priority
	})

	return descriptors, nil
}

// isHandlerSignature reports whether m matches
// func(ctx context.Context, arg *T) ([]*envelope.Envelope, error), where arg
// is either *envelope.Envelope (catch-all) or any other pointer type.
func isHandlerSignature(m reflect.Method) bool {
	t := m.Type
	if t.NumIn() != 3 || t.NumOut() != 2 {
		return false
	}
	if t.In(1) != ctxType {
		return false
	}
	argType := t.In(2)
	if argType.Kind() != reflect.Ptr {
		return false
	}
	if t.Out(0) != outSliceType {
		return false
	}
	if t.Out(1) != errType {
		return false
	}
	if m.Name == catchAllMethodName {
		return argType == envelopeType
	}
	return argType != envelopeType
}

func companionPriority(agentType reflect.Type, handlerName string) int {
	m, ok := agentType.MethodByName(handlerName + "Priority")
	if !ok {
		return 0
	}
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 || m.Type.Out(0).Kind() != reflect.Int {
		return 0
	}
	// Caller supplies the receiver at call time via reflect.Zero since this
	// helper only needs the declared constant, not per-instance state; agent
	// types are expected to return a literal from these companion methods.
	recv := reflect.Zero(agentType)
	if agentType.Kind() == reflect.Ptr {
		recv = reflect.New(agentType.Elem())
	}
	out := m.Func.Call([]reflect.Value{recv})
	return int(out[0].Int())
}

func companionAllowSelfHandling(agentType reflect.Type, handlerName string) bool {
	m, ok := agentType.MethodByName(handlerName + "AllowSelfHandling")
	if !ok {
		return false
	}
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 || m.Type.Out(0).Kind() != reflect.Bool {
		return false
	}
	recv := reflect.Zero(agentType)
	if agentType.Kind() == reflect.Ptr {
		recv = reflect.New(agentType.Elem())
	}
	out := m.Func.Call([]reflect.Value{recv})
	return out[0].Bool()
}
