package actor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/agentmesh/core/envelope"
	"github.com/agentmesh/core/kernel"
)

// DefaultMailboxCapacity is the per-actor bounded queue size (4.5.4).
const DefaultMailboxCapacity = 1000

// Kernel is the subset of kernel.GAgentBase[S] that Actor depends on. Any
// *kernel.GAgentBase[S] satisfies this regardless of S, since none of these
// methods mention the state type.
type Kernel interface {
	ID() envelope.AgentID
	Describe() string
	LifecycleState() kernel.LifecycleState
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
	Handle(ctx context.Context, e *envelope.Envelope) ([]*envelope.Envelope, error)
}

// OverflowPolicy selects what Enqueue does when the mailbox is full.
type OverflowPolicy int

const (
	// OverflowBlock makes Enqueue block (subject to ctx) until space frees
	// up. The preferred default: slows the publisher down rather than
	// silently losing an envelope.
	OverflowBlock OverflowPolicy = iota
	// OverflowDrop makes Enqueue drop the envelope immediately and report a
	// DeadLetter with reason "mailbox full" instead of blocking.
	OverflowDrop
)

// DeadLetter records an envelope that could not be delivered or handled:
// the target mailbox was saturated (drop policy), the target does not
// exist, or the kernel's commit retries were exhausted.
type DeadLetter struct {
	Target   envelope.AgentID
	Envelope *envelope.Envelope
	Reason   string
	Time     time.Time
}

// ActorOptions configures a new Actor.
type ActorOptions struct {
	MailboxCapacity int
	Overflow        OverflowPolicy
	RetryPolicy     kernel.RetryPolicy
	DeadLetters     chan<- DeadLetter
	Logger          *zap.Logger
}

type waiter struct {
	request *envelope.Envelope
	reply   chan *envelope.Envelope
}

// Actor wraps a Kernel with a single-reader, FIFO, bounded mailbox: at most
// one envelope is ever being handled for this agent at a time, satisfying
// the kernel's single-threaded-dispatch guarantee (4.4.3, 5).
type Actor struct {
	kernel Kernel

	mailbox     chan *envelope.Envelope
	overflow    OverflowPolicy
	retryPolicy kernel.RetryPolicy
	deadLetters chan<- DeadLetter
	logger      *zap.Logger

	deactivating atomic.Bool
	stopCh       chan struct{}
	doneCh       chan struct{}
	startOnce    sync.Once
	stopOnce     sync.Once

	waitersMu sync.Mutex
	waiters   map[string]*waiter
}

// NewActor wraps k in an Actor. Call Start before Enqueue.
func NewActor(k Kernel, opts ActorOptions) *Actor {
	capacity := opts.MailboxCapacity
	if capacity <= 0 {
		capacity = DefaultMailboxCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retryPolicy := opts.RetryPolicy
	if retryPolicy == (kernel.RetryPolicy{}) {
		retryPolicy = kernel.DefaultRetryPolicy()
	}

	return &Actor{
		kernel:      k,
		mailbox:     make(chan *envelope.Envelope, capacity),
		overflow:    opts.Overflow,
		retryPolicy: retryPolicy,
		deadLetters: opts.DeadLetters,
		logger:      logger.With(zap.String("component", "actor"), zap.String("agent_id", k.ID().String())),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		waiters:     make(map[string]*waiter),
	}
}

// ID returns the wrapped kernel's agent id.
func (a *Actor) ID() envelope.AgentID { return a.kernel.ID() }

// Start activates the kernel and spawns the dispatch loop.
func (a *Actor) Start(ctx context.Context) error {
	if err := a.kernel.Activate(ctx); err != nil {
		return err
	}
	a.startOnce.Do(func() {
		go a.run(ctx)
	})
	return nil
}

// Stop marks the actor deactivating (so further Enqueue calls are
// discarded per 4.5.4), stops the dispatch loop, and deactivates the
// kernel. Safe to call more than once.
func (a *Actor) Stop(ctx context.Context) error {
	var err error
	a.stopOnce.Do(func() {
		a.deactivating.Store(true)
		close(a.stopCh)
		<-a.doneCh
		err = a.kernel.Deactivate(ctx)
	})
	return err
}

// Enqueue places e into the mailbox. It returns once queued; processing
// happens asynchronously. An envelope submitted while the actor is
// stopping is silently discarded, matching 4.5.4's cancellation-during-
// deactivate rule.
func (a *Actor) Enqueue(ctx context.Context, e *envelope.Envelope) error {
	if a.deactivating.Load() {
		return nil
	}

	select {
	case a.mailbox <- e:
		return nil
	default:
	}

	if a.overflow == OverflowDrop {
		a.sendDeadLetter(e, "mailbox full (drop policy)")
		return nil
	}

	select {
	case a.mailbox <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.stopCh:
		return ErrActorStopped
	}
}

// PublishAndWait enqueues e (assigning a CorrelationID if it has none) and
// blocks until a distinct envelope carrying the same CorrelationID is
// dequeued by this actor's loop, or timeout/ctx cancellation occurs. The
// original request is matched by pointer identity so it is never mistaken
// for its own reply when it reaches the front of the mailbox.
func (a *Actor) PublishAndWait(ctx context.Context, e *envelope.Envelope, timeout time.Duration) (*envelope.Envelope, error) {
	if e.CorrelationID == "" {
		e.CorrelationID = envelope.NewAgentID().String()
	}

	w := &waiter{request: e, reply: make(chan *envelope.Envelope, 1)}
	a.waitersMu.Lock()
	a.waiters[e.CorrelationID] = w
	a.waitersMu.Unlock()
	defer func() {
		a.waitersMu.Lock()
		delete(a.waiters, e.CorrelationID)
		a.waitersMu.Unlock()
	}()

	if err := a.Enqueue(ctx, e); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-w.reply:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrPublishAndWaitTimeout
	}
}

func (a *Actor) run(ctx context.Context) {
	defer close(a.doneCh)
	for {
		select {
		case e := <-a.mailbox:
			if a.dispatch(ctx, e) {
				// The kernel already deactivated itself (Fatal HandlerError);
				// stop accepting new work and end the loop. a.stopCh is left
				// open so a later explicit Stop still completes normally.
				a.deactivating.Store(true)
				return
			}
		case <-a.stopCh:
			return
		}
	}
}

// dispatch hands e to the kernel and reports whether the actor must stop:
// true once the kernel has fatally deactivated itself and will refuse any
// further Handle call (4.4.5/7.2).
func (a *Actor) dispatch(ctx context.Context, e *envelope.Envelope) bool {
	if a.tryDeliverReply(e) {
		return false
	}

	_, err := a.handleWithRetry(ctx, e)
	if err == nil {
		return false
	}

	a.logger.Error("handle failed after retries", zap.Error(err))
	a.sendDeadLetter(e, err.Error())

	var he *kernel.HandlerError
	if errors.As(err, &he) && he.Fatal {
		a.logger.Warn("agent deactivated after fatal handler error, stopping actor")
		return true
	}
	return false
}

// tryDeliverReply reports whether e matches a pending PublishAndWait
// waiter and, if so, delivers it and reports true (e is not passed to the
// kernel in that case).
func (a *Actor) tryDeliverReply(e *envelope.Envelope) bool {
	if e.CorrelationID == "" {
		return false
	}
	a.waitersMu.Lock()
	w, ok := a.waiters[e.CorrelationID]
	if ok && w.request == e {
		ok = false // the original request reaching the front of its own mailbox is not a reply
	}
	a.waitersMu.Unlock()
	if !ok {
		return false
	}
	select {
	case w.reply <- e:
	default:
	}
	return true
}

// handleWithRetry retries kernel.Handle while it keeps returning a plain
// (non-lifecycle, non-fatal) error — the store/commit-error class from
// 4.4.5, which the kernel does not retry itself since it only classifies
// and retries *kernel.HandlerError produced by handler code.
func (a *Actor) handleWithRetry(ctx context.Context, e *envelope.Envelope) ([]*envelope.Envelope, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.retryPolicy.Base
	b.MaxInterval = a.retryPolicy.Max
	b.RandomizationFactor = 0.2

	return backoff.Retry(ctx, func() ([]*envelope.Envelope, error) {
		out, err := a.kernel.Handle(ctx, e)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, kernel.ErrAgentBusy) {
			return out, backoff.Permanent(err)
		}
		var he *kernel.HandlerError
		if errors.As(err, &he) && he.Fatal {
			return out, backoff.Permanent(err)
		}
		return out, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(a.retryPolicy.MaxRetries+1)))
}

func (a *Actor) sendDeadLetter(e *envelope.Envelope, reason string) {
	if a.deadLetters == nil {
		return
	}
	dl := DeadLetter{Target: a.kernel.ID(), Envelope: e, Reason: reason, Time: time.Now()}
	select {
	case a.deadLetters <- dl:
	default:
		a.logger.Warn("dead letter channel full, dropping", zap.String("reason", reason))
	}
}
