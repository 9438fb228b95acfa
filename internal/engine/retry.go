package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/stepflow-ai/stepflow/internal/core"
)

// DefaultBackoff is the fixed delay between attempts. Backoff is
// deliberately not exponential: the bound on attempts is small and the
// dominant failure modes (CLI crash, timeout) gain nothing from longer
// waits.
const DefaultBackoff = time.Second

// RetryPolicy bounds repeated attempts of one operation with a fixed
// inter-attempt delay.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// NewRetryPolicy builds the policy for a step: retryCount retries after
// the first attempt, with the default fixed backoff.
func NewRetryPolicy(retryCount int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: retryCount + 1,
		Delay:       DefaultBackoff,
	}
}

// RetryableFunc is one attempt of the operation under retry.
type RetryableFunc func(ctx context.Context) error

// RetryNotifyFunc is called after each failed attempt that will be
// retried, before the backoff delay.
type RetryNotifyFunc func(attempt int, err error)

// Execute runs fn up to MaxAttempts times. Non-retryable errors stop the
// loop immediately; exhaustion returns a RetryExhaustedError wrapping the
// last attempt's error. Inputs never change between attempts.
func (p *RetryPolicy) Execute(ctx context.Context, fn RetryableFunc, notify RetryNotifyFunc) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !core.IsRetryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		if notify != nil {
			notify(attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}

	return &RetryExhaustedError{
		Attempts: p.MaxAttempts,
		LastErr:  lastErr,
	}
}

// RetryExhaustedError indicates all attempts failed. It unwraps to the
// last attempt's error so category checks still work.
type RetryExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.LastErr
}

// IsRetryExhausted checks if an error is a RetryExhaustedError.
func IsRetryExhausted(err error) bool {
	_, ok := err.(*RetryExhaustedError)
	return ok
}
