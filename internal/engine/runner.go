package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/stepflow-ai/stepflow/internal/core"
	"github.com/stepflow-ai/stepflow/internal/logging"
)

// StepRunner executes exactly one step to a terminal outcome. It is the
// only writer of the ExecutionContext and is always invoked from the
// executor's single control flow.
type StepRunner struct {
	clients map[core.Provider]core.ProviderClient
	logger  *logging.Logger
	backoff time.Duration
}

// NewStepRunner creates a runner over the given provider clients.
func NewStepRunner(clients map[core.Provider]core.ProviderClient, logger *logging.Logger) *StepRunner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StepRunner{
		clients: clients,
		logger:  logger,
		backoff: DefaultBackoff,
	}
}

// SetBackoff overrides the inter-attempt delay. Tests use this to avoid
// real sleeps.
func (r *StepRunner) SetBackoff(d time.Duration) {
	r.backoff = d
}

// Run executes one step with bounded retry and per-attempt timeout.
// Retries reuse the identical system prompt and input. On failure the
// returned StepResult records the terminal state and the error names the
// step; the executor decides whether to abort or degrade.
func (r *StepRunner) Run(ctx context.Context, step core.StepSpec, input string, ectx *ExecutionContext) (*core.StepResult, error) {
	client, ok := r.clients[step.Provider]
	if !ok {
		return nil, core.ErrContextInconsistency(
			fmt.Sprintf("no client configured for provider %q (step %q)", step.Provider, step.Name))
	}

	logger := r.logger.WithStep(step.Name)
	policy := &RetryPolicy{MaxAttempts: step.Attempts(), Delay: r.backoff}

	logger.Info("step: starting",
		"provider", step.Provider,
		"tier", step.Tier,
		"max_attempts", policy.MaxAttempts,
		"timeout", step.Timeout,
	)

	var resp *core.ProviderResponse
	start := time.Now()

	err := policy.Execute(ctx, func(ctx context.Context) error {
		if step.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, step.Timeout)
			defer cancel()
		}
		out, execErr := client.Execute(ctx, step.SystemPrompt, input, step.Tier)
		if execErr != nil {
			return execErr
		}
		resp = out
		return nil
	}, func(attempt int, attemptErr error) {
		count := ectx.RecordRetry(step.Name)
		logger.Warn("step: attempt failed, retrying",
			"attempt", attempt,
			"retry_count", count,
			"error", attemptErr,
		)
	})

	duration := time.Since(start)
	retries := ectx.RetryCount(step.Name)

	if err != nil {
		logger.Error("step: failed",
			"duration", duration,
			"retry_count", retries,
			"error", err,
		)
		result := &core.StepResult{
			StepName:   step.Name,
			Status:     core.StepStatusFailed,
			Duration:   duration,
			RetryCount: retries,
			Error:      err.Error(),
		}
		return result, fmt.Errorf("step %q: %w", step.Name, err)
	}

	ectx.RecordOutput(StepOutput{
		StepName: step.Name,
		Content:  resp.Content,
		Usage:    resp.Usage,
		Duration: duration,
	})

	status := core.StepStatusSuccess
	if retries > 0 {
		status = core.StepStatusRetried
	}

	logger.Info("step: completed",
		"status", status,
		"duration", duration,
		"retry_count", retries,
		"tokens_in", resp.Usage.InputTokens,
		"tokens_out", resp.Usage.OutputTokens,
		"model", resp.Model,
		"stop_reason", resp.StopReason,
	)

	content := resp.Content
	return &core.StepResult{
		StepName:   step.Name,
		Status:     status,
		Attempts:   retries,
		Output:     &content,
		Usage:      resp.Usage,
		Duration:   duration,
		RetryCount: retries,
	}, nil
}
