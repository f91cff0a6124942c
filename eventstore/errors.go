package eventstore

import "errors"

var (
	// ErrConcurrencyConflict is returned by Append/Confirm when the caller's
	// expected_version does not match the store's current version.
	ErrConcurrencyConflict = errors.New("eventstore: concurrency conflict")

	// ErrNoEvents names the condition of an agent with no recorded history.
	// No function in this package returns it; the stores report that case
	// as version 0 / ok=false instead of an error.
	ErrNoEvents = errors.New("eventstore: no events")
)
