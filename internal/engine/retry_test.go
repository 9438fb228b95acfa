package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stepflow-ai/stepflow/internal/core"
)

func TestRetryPolicy_SuccessFirstTry(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 3, Delay: 0}
	calls := 0
	err := policy.Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicy_Exhaustion(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 3, Delay: 0}
	calls := 0
	notified := 0
	lastErr := core.ErrCliExecution(1, "always broken")

	err := policy.Execute(context.Background(), func(context.Context) error {
		calls++
		return lastErr
	}, func(int, error) {
		notified++
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if notified != 2 {
		t.Errorf("notify called %d times, want 2 (failed non-final attempts)", notified)
	}
	if !IsRetryExhausted(err) {
		t.Fatalf("error = %v, want RetryExhaustedError", err)
	}
	if !errors.Is(err, lastErr) {
		t.Error("exhaustion error must unwrap to the last attempt's error")
	}
}

func TestRetryPolicy_NonRetryableStops(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 5, Delay: 0}
	calls := 0
	authErr := core.ErrAuth("claude", "bad key")

	err := policy.Execute(context.Background(), func(context.Context) error {
		calls++
		return authErr
	}, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, authErr) {
		t.Errorf("error = %v, want the auth error unchanged", err)
	}
	if IsRetryExhausted(err) {
		t.Error("non-retryable failure is not exhaustion")
	}
}

func TestRetryPolicy_ContextCancelledDuringBackoff(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 3, Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- policy.Execute(ctx, func(context.Context) error {
			return core.ErrTimeout("flaky")
		}, func(int, error) {
			cancel()
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Execute() did not honor cancellation during backoff")
	}
}

func TestNewRetryPolicy(t *testing.T) {
	policy := NewRetryPolicy(2)
	if policy.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want retry_count+1", policy.MaxAttempts)
	}
	if policy.Delay != DefaultBackoff {
		t.Errorf("Delay = %v, want fixed default backoff", policy.Delay)
	}
}
