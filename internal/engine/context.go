// Package engine drives workflow execution: it sequences steps, chains
// each step's output into the next step's input, and bounds every step
// with retry and timeout policy.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/stepflow-ai/stepflow/internal/core"
)

// StepOutput records one completed step inside the execution context.
// Entries are append-only; insertion order equals execution order.
type StepOutput struct {
	StepName string
	Content  string
	Usage    core.TokenUsage
	Duration time.Duration
}

// ExecutionContext is the mutable session state of one workflow run. It
// has exactly one writer, the step runner invoked from the executor's
// single control flow, so no locking is needed. It is never shared
// across concurrent runs.
type ExecutionContext struct {
	runID        string
	workflowName string
	startTime    time.Time

	outputs     []StepOutput
	retries     map[string]int
	totalTokens core.TokenUsage
}

// NewExecutionContext creates the context for one run.
func NewExecutionContext(workflowName string) *ExecutionContext {
	return &ExecutionContext{
		runID:        uuid.NewString(),
		workflowName: workflowName,
		startTime:    time.Now(),
		retries:      make(map[string]int),
	}
}

// RunID returns the unique identifier of this run.
func (c *ExecutionContext) RunID() string {
	return c.runID
}

// WorkflowName returns the name of the executing workflow.
func (c *ExecutionContext) WorkflowName() string {
	return c.workflowName
}

// StartTime returns when the run started.
func (c *ExecutionContext) StartTime() time.Time {
	return c.startTime
}

// RecordOutput appends a completed step's output and accumulates its
// token usage into the run totals.
func (c *ExecutionContext) RecordOutput(out StepOutput) {
	c.outputs = append(c.outputs, out)
	c.totalTokens = c.totalTokens.Add(out.Usage)
}

// RecordRetry increments the retry counter for a step and returns the
// new count.
func (c *ExecutionContext) RecordRetry(stepName string) int {
	c.retries[stepName]++
	return c.retries[stepName]
}

// RetryCount returns how many retries a step has consumed.
func (c *ExecutionContext) RetryCount(stepName string) int {
	return c.retries[stepName]
}

// LastOutput returns the most recently recorded output.
func (c *ExecutionContext) LastOutput() (StepOutput, bool) {
	if len(c.outputs) == 0 {
		return StepOutput{}, false
	}
	return c.outputs[len(c.outputs)-1], true
}

// Output returns the recorded output of a named step.
func (c *ExecutionContext) Output(stepName string) (StepOutput, bool) {
	for _, out := range c.outputs {
		if out.StepName == stepName {
			return out, true
		}
	}
	return StepOutput{}, false
}

// Outputs returns a copy of the step history in execution order.
func (c *ExecutionContext) Outputs() []StepOutput {
	outputs := make([]StepOutput, len(c.outputs))
	copy(outputs, c.outputs)
	return outputs
}

// StepCount returns how many steps have completed.
func (c *ExecutionContext) StepCount() int {
	return len(c.outputs)
}

// TotalTokens returns the cumulative token usage of the run.
func (c *ExecutionContext) TotalTokens() core.TokenUsage {
	return c.totalTokens
}

// Elapsed returns the wall time since the run started.
func (c *ExecutionContext) Elapsed() time.Duration {
	return time.Since(c.startTime)
}
