package core

import (
	"encoding/json"
	"time"
)

// StepStatus is the terminal outcome of one step.
type StepStatus string

const (
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
	// StepStatusRetried means the step eventually succeeded after one
	// or more retries; StepResult.Attempts carries the retry count.
	StepStatusRetried StepStatus = "retried"
	// StepStatusSkipped marks steps never attempted because an earlier
	// step failed (partial-results mode only).
	StepStatusSkipped StepStatus = "skipped"
)

// Completed reports whether the step produced usable output.
func (s StepStatus) Completed() bool {
	return s == StepStatusSuccess || s == StepStatusRetried
}

// WorkflowStatus is the overall outcome of a workflow run.
type WorkflowStatus string

const (
	WorkflowStatusSuccess        WorkflowStatus = "success"
	WorkflowStatusPartialSuccess WorkflowStatus = "partial_success"
	WorkflowStatusFailed         WorkflowStatus = "failed"
)

// StepResult records the terminal outcome of one step, in execution order
// inside WorkflowResult.Steps.
type StepResult struct {
	StepName string     `json:"step_name"`
	Index    int        `json:"index"`
	Status   StepStatus `json:"status"`
	// Attempts is the number of retries consumed before success;
	// only meaningful when Status is retried.
	Attempts   int           `json:"attempts,omitempty"`
	Output     *string       `json:"output,omitempty"`
	Usage      TokenUsage    `json:"token_usage"`
	Duration   time.Duration `json:"duration_ns"`
	RetryCount int           `json:"retry_count"`
	Error      string        `json:"error,omitempty"`
}

// WorkflowResult is the terminal, immutable record of one execution,
// produced once per Execute call and handed to telemetry.
type WorkflowResult struct {
	WorkflowName string         `json:"workflow_name"`
	RunID        string         `json:"run_id"`
	Status       WorkflowStatus `json:"status"`
	// Completed/Total describe partial runs; both zero otherwise.
	Completed     int           `json:"completed,omitempty"`
	Total         int           `json:"total,omitempty"`
	Steps         []StepResult  `json:"steps"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	TotalDuration time.Duration `json:"total_duration_ns"`
	TotalTokens   TokenUsage    `json:"total_tokens"`
	Error         string        `json:"error,omitempty"`
}

// IsSuccess reports whether every step completed.
func (r *WorkflowResult) IsSuccess() bool {
	return r.Status == WorkflowStatusSuccess
}

// CompletedSteps counts steps that produced output.
func (r *WorkflowResult) CompletedSteps() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status.Completed() {
			n++
		}
	}
	return n
}

// FinalOutput returns the output of the last completed step, which is
// the workflow's end product under output chaining.
func (r *WorkflowResult) FinalOutput() string {
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if r.Steps[i].Status.Completed() && r.Steps[i].Output != nil {
			return *r.Steps[i].Output
		}
	}
	return ""
}

// ToJSON serializes the result as one pretty-printed JSON document.
func (r *WorkflowResult) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ResultFromJSON deserializes a WorkflowResult document.
func ResultFromJSON(data []byte) (*WorkflowResult, error) {
	var r WorkflowResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
