package kernel

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds the exponential backoff used for retryable handler
// errors: delay = min(2^attempt * Base, Max), randomized by ±20% (jitter can
// shorten a delay as well as lengthen it), retried up to MaxRetries times
// (default 3).
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
	Max        time.Duration
}

// DefaultRetryPolicy is used whenever Options.RetryPolicy is left zero.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Base:       100 * time.Millisecond,
		Max:        60 * time.Second,
	}
}

// invokeWithRetry calls op once, then retries it while op returns a
// *HandlerError with Retryable=true, up to p.MaxRetries additional
// attempts. A non-retryable (or Fatal) HandlerError, or any other error
// type, is returned immediately without retry.
func invokeWithRetry[T any](ctx context.Context, p RetryPolicy, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Base
	b.Multiplier = 2
	b.MaxInterval = p.Max
	b.RandomizationFactor = 0.2

	wrapped := func() (T, error) {
		out, err := op()
		if err == nil {
			return out, nil
		}
		var he *HandlerError
		if herr, ok := err.(*HandlerError); ok {
			he = herr
		}
		if he == nil || !he.Retryable || he.Fatal {
			return out, backoff.Permanent(err)
		}
		return out, err
	}

	return backoff.Retry(ctx, wrapped, backoff.WithBackOff(b), backoff.WithMaxTries(uint(p.MaxRetries+1)))
}
