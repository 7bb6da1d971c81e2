// Package poll re-fetches a value until it satisfies a predicate or a
// wall-clock deadline passes.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

var ErrTimeout = errors.New("poll timed out")

var errNotReady = errors.New("value not ready")

type Options struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Until calls fetch every opts.Interval until ready reports true for the
// fetched value. When opts.Timeout elapses first, it returns the last value
// fetched successfully together with ErrTimeout. Fetch errors are retried.
// Cancelling ctx stops polling and returns ctx's error.
func Until[T any](ctx context.Context, fetch func(ctx context.Context) (T, error), ready func(T) bool, opts Options) (T, error) {
	var last T
	var lastErr error
	attempts := 0

	operation := func() (T, error) {
		attempts++
		value, err := fetch(ctx)
		if err != nil {
			lastErr = err
			log.Debugf("poll attempt %d failed: %v", attempts, err)
			return value, err
		}
		last = value
		lastErr = nil
		if !ready(value) {
			return value, errNotReady
		}
		return value, nil
	}

	value, err := backoff.RetryWithData(operation, backoff.WithContext(constantUntil(opts), ctx))
	if err == nil {
		log.Debugf("poll succeeded after %d attempt(s)", attempts)
		return value, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return last, ctxErr
	}
	if lastErr != nil {
		return last, fmt.Errorf("%w after %d attempt(s): %w", ErrTimeout, attempts, lastErr)
	}
	return last, fmt.Errorf("%w after %d attempt(s)", ErrTimeout, attempts)
}

// constantUntil is an exponential backoff flattened to a constant interval,
// which keeps MaxElapsedTime as the deadline. A non-positive timeout means a
// single attempt.
func constantUntil(opts Options) backoff.BackOff {
	if opts.Timeout <= 0 {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 0)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.Interval
	b.MaxInterval = opts.Interval
	b.Multiplier = 1
	b.RandomizationFactor = 0
	b.MaxElapsedTime = opts.Timeout
	b.Reset()
	return b
}
