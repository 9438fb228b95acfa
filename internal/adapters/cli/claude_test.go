package cli

import (
	"strings"
	"testing"

	"github.com/stepflow-ai/stepflow/internal/core"
)

func TestParseClaudeOutput(t *testing.T) {
	stdout := `{
		"text": "The function leaks a file descriptor.",
		"metadata": {
			"model": "claude-opus-4",
			"tokens": {"input": 120, "output": 45}
		}
	}`

	resp, err := parseClaudeOutput(stdout, "claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("parseClaudeOutput() error: %v", err)
	}
	if resp.Content != "The function leaks a file descriptor." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 45 {
		t.Errorf("usage = %+v, want 120/45", resp.Usage)
	}
	if resp.Model != "claude-opus-4" {
		t.Errorf("model = %q, want document model", resp.Model)
	}
	if resp.StopReason != core.StopEndTurn {
		t.Errorf("stop reason = %q, want end_turn default", resp.StopReason)
	}
}

func TestParseClaudeOutput_FallbackModel(t *testing.T) {
	stdout := `{"text": "ok", "metadata": {"tokens": {"input": 1, "output": 2}}}`
	resp, err := parseClaudeOutput(stdout, "claude-haiku")
	if err != nil {
		t.Fatalf("parseClaudeOutput() error: %v", err)
	}
	if resp.Model != "claude-haiku" {
		t.Errorf("model = %q, want resolved fallback", resp.Model)
	}
}

func TestParseClaudeOutput_ExplicitStopReason(t *testing.T) {
	stdout := `{"text": "truncated", "stop_reason": "max_tokens", "metadata": {"tokens": {"input": 5, "output": 9}}}`
	resp, err := parseClaudeOutput(stdout, "claude-opus-4")
	if err != nil {
		t.Fatalf("parseClaudeOutput() error: %v", err)
	}
	if resp.StopReason != core.StopMaxTokens {
		t.Errorf("stop reason = %q, want max_tokens", resp.StopReason)
	}
}

func TestParseClaudeOutput_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
	}{
		{"not json", "command output: done"},
		{"truncated json", `{"text": "partial`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseClaudeOutput(tt.stdout, "claude-opus-4")
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !core.IsCategory(err, core.ErrCatExecution) {
				t.Errorf("category = %s, want execution", core.GetCategory(err))
			}
			var domErr *core.DomainError
			if !asDomainError(err, &domErr) || domErr.Code != core.CodeMalformedOutput {
				t.Errorf("error = %v, want MALFORMED_OUTPUT", err)
			}
			if core.IsRetryable(err) {
				t.Error("malformed output must not be retryable")
			}
		})
	}
}

func TestParseClaudeOutput_DiagnosticIncludesSnippet(t *testing.T) {
	_, err := parseClaudeOutput("garbage output here", "claude-opus-4")
	if err == nil || !strings.Contains(err.Error(), "garbage output") {
		t.Errorf("diagnostic missing stdout snippet: %v", err)
	}
}
