package actor

import "errors"

var (
	// ErrMailboxFull names the saturated-mailbox condition. Enqueue does not
	// return it: under OverflowDrop an envelope arriving at a full mailbox is
	// sent to the dead-letter sink and Enqueue returns nil; under
	// OverflowBlock Enqueue blocks instead.
	ErrMailboxFull = errors.New("actor: mailbox full")

	// ErrPublishAndWaitTimeout is returned by PublishAndWait when no reply
	// arrives before the deadline.
	ErrPublishAndWaitTimeout = errors.New("actor: publish_and_wait timed out waiting for reply")

	// ErrActorStopped is returned by an Enqueue (and so by PublishAndWait)
	// that is blocked on a full mailbox under OverflowBlock when Stop is
	// called. An Enqueue made once the actor is stopping discards the
	// envelope and returns nil.
	ErrActorStopped = errors.New("actor: stopped")

	// ErrUnknownAgent is returned by Manager lookups for an id with no
	// registered Actor.
	ErrUnknownAgent = errors.New("actor: unknown agent id")

	// ErrAlreadyRegistered is returned by Manager.Register for an id that
	// already has an Actor.
	ErrAlreadyRegistered = errors.New("actor: agent id already registered")
)
