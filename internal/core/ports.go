package core

import (
	"context"
)

// ProviderClient defines the contract for coding-agent CLI bridges.
// Implementations spawn the backing CLI as a child process; they never
// retry internally; every retry is a fresh spawn driven by the engine.
type ProviderClient interface {
	// Name returns the provider identifier (e.g. "claude", "codex").
	Name() string

	// Ping checks that the CLI is installed and responsive.
	Ping(ctx context.Context) error

	// Execute runs one prompt through the CLI and parses its output.
	// The call must honor ctx cancellation by terminating the child
	// process; no orphans may survive a timeout.
	Execute(ctx context.Context, systemPrompt, userInput string, tier ModelTier) (*ProviderResponse, error)
}

// TokenUsage records token consumption for one provider call, or the
// accumulated totals of a run.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the sum of input and output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Add accumulates another usage into this one.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// StopReason classifies why a provider call's generation ended.
type StopReason string

const (
	StopEndTurn       StopReason = "end_turn"
	StopMaxTokens     StopReason = "max_tokens"
	StopStopSequence  StopReason = "stop_sequence"
	StopContentFilter StopReason = "content_filter"
	StopToolUse       StopReason = "tool_use"
	StopUnknown       StopReason = "unknown"
)

// ParseStopReason maps a wire-format stop reason to the enum, defaulting
// to StopUnknown for anything unrecognized.
func ParseStopReason(s string) StopReason {
	switch s {
	case "end_turn":
		return StopEndTurn
	case "max_tokens":
		return StopMaxTokens
	case "stop_sequence":
		return StopStopSequence
	case "content_filter":
		return StopContentFilter
	case "tool_use":
		return StopToolUse
	default:
		return StopUnknown
	}
}

// ProviderResponse is the provider-independent result of one CLI call.
type ProviderResponse struct {
	Content    string     `json:"content"`
	Usage      TokenUsage `json:"usage"`
	StopReason StopReason `json:"stop_reason"`
	Model      string     `json:"model"`
}
