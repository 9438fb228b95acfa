package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/stepflow-ai/stepflow/internal/core"
	"github.com/stepflow-ai/stepflow/internal/logging"
)

// Executor drives the sequential execution of one workflow. Steps run
// strictly in definition order, never concurrently: step i+1's input is
// exactly step i's output content.
type Executor struct {
	def    *core.WorkflowDefinition
	runner *StepRunner
	logger *logging.Logger

	initialInput   string
	partialResults bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithInitialInput seeds the first step's user input.
func WithInitialInput(input string) Option {
	return func(e *Executor) {
		e.initialInput = input
	}
}

// WithPartialResults switches the failure mode: instead of aborting with
// an error, a failed step is recorded, the remaining steps are marked
// skipped, and a partial WorkflowResult is returned. Fail-fast stays the
// default.
func WithPartialResults(enabled bool) Option {
	return func(e *Executor) {
		e.partialResults = enabled
	}
}

// WithLogger sets the executor's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New binds an executor to one immutable workflow definition. The
// definition is validated by the config loader; the executor trusts its
// invariants.
func New(def *core.WorkflowDefinition, runner *StepRunner, opts ...Option) *Executor {
	e := &Executor{
		def:    def,
		runner: runner,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithWorkflow(def.Name)
	return e
}

// Execute runs every step in order, chaining outputs. In the default
// fail-fast mode an unrecoverable step failure aborts immediately: no
// later steps run and the returned error names the failing step. No
// partial WorkflowResult is fabricated on that path.
func (e *Executor) Execute(ctx context.Context) (*core.WorkflowResult, error) {
	ectx := NewExecutionContext(e.def.Name)
	total := len(e.def.Steps)

	e.logger.Info("workflow: starting",
		"run_id", ectx.RunID(),
		"steps", total,
	)

	results := make([]core.StepResult, 0, total)
	currentInput := e.initialInput

	for i, step := range e.def.Steps {
		result, err := e.runner.Run(ctx, step, currentInput, ectx)
		if err != nil {
			if e.partialResults {
				return e.partialResult(ectx, results, result, i, err), nil
			}
			e.logger.Error("workflow: aborting",
				"run_id", ectx.RunID(),
				"failed_step", step.Name,
				"completed", i,
				"total", total,
			)
			return nil, fmt.Errorf("workflow %q: %w", e.def.Name, err)
		}

		result.Index = i
		results = append(results, *result)
		currentInput = *result.Output
	}

	endTime := time.Now()
	workflowResult := &core.WorkflowResult{
		WorkflowName:  e.def.Name,
		RunID:         ectx.RunID(),
		Status:        core.WorkflowStatusSuccess,
		Steps:         results,
		StartTime:     ectx.StartTime(),
		EndTime:       endTime,
		TotalDuration: endTime.Sub(ectx.StartTime()),
		TotalTokens:   ectx.TotalTokens(),
	}

	e.logger.Info("workflow: completed",
		"run_id", ectx.RunID(),
		"duration", workflowResult.TotalDuration,
		"total_tokens", workflowResult.TotalTokens.Total(),
	)
	return workflowResult, nil
}

// partialResult assembles the explicit degraded-mode result: the failed
// step is recorded as-is and every remaining step is marked skipped.
func (e *Executor) partialResult(ectx *ExecutionContext, completed []core.StepResult, failed *core.StepResult, failedIndex int, err error) *core.WorkflowResult {
	total := len(e.def.Steps)
	results := completed

	if failed != nil {
		failed.Index = failedIndex
		results = append(results, *failed)
	}
	for i := failedIndex + 1; i < total; i++ {
		results = append(results, core.StepResult{
			StepName: e.def.Steps[i].Name,
			Index:    i,
			Status:   core.StepStatusSkipped,
		})
	}

	status := core.WorkflowStatusPartialSuccess
	if failedIndex == 0 {
		// Nothing completed; there is no partial success to report.
		status = core.WorkflowStatusFailed
	}

	endTime := time.Now()
	result := &core.WorkflowResult{
		WorkflowName:  e.def.Name,
		RunID:         ectx.RunID(),
		Status:        status,
		Completed:     failedIndex,
		Total:         total,
		Steps:         results,
		StartTime:     ectx.StartTime(),
		EndTime:       endTime,
		TotalDuration: endTime.Sub(ectx.StartTime()),
		TotalTokens:   ectx.TotalTokens(),
		Error:         err.Error(),
	}

	e.logger.Warn("workflow: degraded to partial result",
		"run_id", ectx.RunID(),
		"status", status,
		"completed", failedIndex,
		"total", total,
		"error", err,
	)
	return result
}
