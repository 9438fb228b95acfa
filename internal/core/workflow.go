package core

import (
	"fmt"
	"time"
)

// Provider identifies which coding-agent CLI backs a step.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic" // claude CLI
	ProviderOpenAI    Provider = "openai"    // codex CLI
)

// Providers lists all supported providers.
func Providers() []Provider {
	return []Provider{ProviderAnthropic, ProviderOpenAI}
}

// Valid reports whether the provider is one of the supported backends.
func (p Provider) Valid() bool {
	return p == ProviderAnthropic || p == ProviderOpenAI
}

func (p Provider) String() string { return string(p) }

// ModelTier abstracts model capability so workflows do not hardcode
// provider-specific model names.
type ModelTier string

const (
	TierHeavy  ModelTier = "heavy"  // complex reasoning
	TierMedium ModelTier = "medium" // general tasks
	TierLight  ModelTier = "light"  // cheap, simple tasks
)

// Tiers lists all model tiers.
func Tiers() []ModelTier {
	return []ModelTier{TierHeavy, TierMedium, TierLight}
}

// Valid reports whether the tier is a known tier.
func (t ModelTier) Valid() bool {
	return t == TierHeavy || t == TierMedium || t == TierLight
}

func (t ModelTier) String() string { return string(t) }

// StepSpec describes one agent invocation in a workflow.
type StepSpec struct {
	Name         string        `json:"name"`
	SystemPrompt string        `json:"system_prompt"`
	Provider     Provider      `json:"provider"`
	Tier         ModelTier     `json:"model_tier"`
	// Timeout bounds each individual attempt of this step. Zero means
	// the attempt may run until the provider CLI exits.
	Timeout time.Duration `json:"timeout,omitempty"`
	// RetryCount is the number of retries after the first attempt.
	// Zero means a single attempt.
	RetryCount int `json:"retry_count,omitempty"`
}

// Attempts returns the total number of attempts this step may consume.
func (s StepSpec) Attempts() int {
	return s.RetryCount + 1
}

// WorkflowDefinition is an immutable, validated workflow. It is produced
// by the config loader; the engine trusts its invariants (at least one
// step, unique step names, non-empty prompts) and does not re-validate.
type WorkflowDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Version     string     `json:"version,omitempty"`
	Steps       []StepSpec `json:"steps"`
}

// Step returns the step with the given name.
func (w *WorkflowDefinition) Step(name string) (StepSpec, bool) {
	for _, s := range w.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepSpec{}, false
}

// Validate checks the definition invariants. The loader calls this once
// before handing the definition to the engine.
func (w *WorkflowDefinition) Validate() error {
	if w.Name == "" {
		return ErrValidation(CodeInvalidConfig, "workflow name is required")
	}
	if len(w.Steps) == 0 {
		return ErrValidation(CodeEmptyWorkflow, fmt.Sprintf("workflow %q has no steps", w.Name))
	}
	seen := make(map[string]bool, len(w.Steps))
	for i, s := range w.Steps {
		if s.Name == "" {
			return ErrValidation(CodeInvalidConfig, fmt.Sprintf("step %d has no name", i))
		}
		if seen[s.Name] {
			return ErrValidation(CodeDuplicateStep, fmt.Sprintf("duplicate step name %q", s.Name))
		}
		seen[s.Name] = true
		if s.SystemPrompt == "" {
			return ErrValidation(CodeEmptyPrompt, fmt.Sprintf("step %q has an empty system prompt", s.Name))
		}
		if !s.Provider.Valid() {
			return ErrValidation(CodeInvalidConfig, fmt.Sprintf("step %q has unknown provider %q", s.Name, s.Provider))
		}
		if !s.Tier.Valid() {
			return ErrValidation(CodeInvalidConfig, fmt.Sprintf("step %q has unknown model tier %q", s.Name, s.Tier))
		}
		if s.Timeout < 0 {
			return ErrValidation(CodeInvalidTimeout, fmt.Sprintf("step %q has negative timeout", s.Name))
		}
		if s.RetryCount < 0 {
			return ErrValidation(CodeInvalidConfig, fmt.Sprintf("step %q has negative retry count", s.Name))
		}
	}
	return nil
}
