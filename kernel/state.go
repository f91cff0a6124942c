package kernel

// LifecycleState defines the Agent Kernel's dispatch state machine.
type LifecycleState string

const (
	StateCreated      LifecycleState = "created"
	StateActivating   LifecycleState = "activating"
	StateActive       LifecycleState = "active"
	StateHandling     LifecycleState = "handling"
	StateDeactivating LifecycleState = "deactivating"
	StateDeactivated  LifecycleState = "deactivated"
)

// validTransitions defines the legal lifecycle transitions.
var validTransitions = map[LifecycleState][]LifecycleState{
	StateCreated:      {StateActivating},
	StateActivating:   {StateActive, StateDeactivated},
	StateActive:       {StateHandling, StateDeactivating},
	StateHandling:     {StateActive, StateDeactivating},
	StateDeactivating: {StateDeactivated},
	StateDeactivated:  {},
}

// CanTransition reports whether the (from, to) transition is legal.
func CanTransition(from, to LifecycleState) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
