package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stepflow-ai/stepflow/internal/core"
)

func asDomainError(err error, target **core.DomainError) bool {
	return errors.As(err, target)
}

func TestParseCodexStream(t *testing.T) {
	stdout := strings.Join([]string{
		`{"type": "started"}`,
		`{"type": "item.completed", "role": "assistant", "content": "X"}`,
		`{"type": "turn.completed", "usage": {"input_tokens": 10, "output_tokens": 5}}`,
	}, "\n")

	resp, err := parseCodexStream(stdout, "gpt-4o")
	if err != nil {
		t.Fatalf("parseCodexStream() error: %v", err)
	}
	if resp.Content != "X" {
		t.Errorf("content = %q, want X", resp.Content)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 5 {
		t.Errorf("usage = %+v, want 10/5", resp.Usage)
	}
}

func TestParseCodexStream_LastAssistantMessageWins(t *testing.T) {
	stdout := strings.Join([]string{
		`{"type": "item.completed", "role": "assistant", "content": "draft"}`,
		`{"type": "item.completed", "role": "tool", "content": "ls output"}`,
		`{"type": "item.completed", "role": "assistant", "content": "final answer"}`,
		`{"type": "turn.completed", "usage": {"input_tokens": 30, "output_tokens": 12}}`,
	}, "\n")

	resp, err := parseCodexStream(stdout, "gpt-4o")
	if err != nil {
		t.Fatalf("parseCodexStream() error: %v", err)
	}
	if resp.Content != "final answer" {
		t.Errorf("content = %q, want last assistant message", resp.Content)
	}
}

func TestParseCodexStream_MissingUsageEvent(t *testing.T) {
	stdout := strings.Join([]string{
		`{"type": "started"}`,
		`{"type": "item.completed", "role": "assistant", "content": "X"}`,
	}, "\n")

	_, err := parseCodexStream(stdout, "gpt-4o")
	var domErr *core.DomainError
	if !asDomainError(err, &domErr) || domErr.Code != core.CodeMalformedOutput {
		t.Fatalf("error = %v, want MALFORMED_OUTPUT", err)
	}
}

func TestParseCodexStream_UnparseableLine(t *testing.T) {
	stdout := strings.Join([]string{
		`{"type": "started"}`,
		`not json at all`,
		`{"type": "turn.completed", "usage": {"input_tokens": 1, "output_tokens": 1}}`,
	}, "\n")

	_, err := parseCodexStream(stdout, "gpt-4o")
	var domErr *core.DomainError
	if !asDomainError(err, &domErr) || domErr.Code != core.CodeMalformedOutput {
		t.Fatalf("error = %v, want MALFORMED_OUTPUT", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("diagnostic should name the offending line: %v", err)
	}
}

func TestParseCodexStream_UnknownEventTypesIgnored(t *testing.T) {
	stdout := strings.Join([]string{
		`{"type": "session.created", "session_id": "abc"}`,
		`{"type": "item.started"}`,
		`{"type": "item.completed", "role": "assistant", "content": "ok"}`,
		`{"type": "token.count", "count": 99}`,
		`{"type": "turn.completed", "usage": {"input_tokens": 4, "output_tokens": 2}}`,
	}, "\n")

	resp, err := parseCodexStream(stdout, "gpt-4o")
	if err != nil {
		t.Fatalf("parseCodexStream() error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q, want ok", resp.Content)
	}
}

func TestParseCodexStream_ModelFromTurnStarted(t *testing.T) {
	stdout := strings.Join([]string{
		`{"type": "turn.started", "model": "gpt-4o-2024"}`,
		`{"type": "item.completed", "role": "assistant", "content": "ok"}`,
		`{"type": "turn.completed", "usage": {"input_tokens": 4, "output_tokens": 2}}`,
	}, "\n")

	resp, err := parseCodexStream(stdout, "gpt-4o")
	if err != nil {
		t.Fatalf("parseCodexStream() error: %v", err)
	}
	if resp.Model != "gpt-4o-2024" {
		t.Errorf("model = %q, want stream-reported model", resp.Model)
	}
}

func TestParseCodexStream_NoAssistantMessage(t *testing.T) {
	stdout := `{"type": "turn.completed", "usage": {"input_tokens": 1, "output_tokens": 0}}`

	_, err := parseCodexStream(stdout, "gpt-4o")
	var domErr *core.DomainError
	if !asDomainError(err, &domErr) || domErr.Code != core.CodeMalformedOutput {
		t.Fatalf("error = %v, want MALFORMED_OUTPUT", err)
	}
}

func TestParseCodexStream_BlankLinesSkipped(t *testing.T) {
	stdout := "\n" + `{"type": "item.completed", "role": "assistant", "content": "ok"}` + "\n\n" +
		`{"type": "turn.completed", "usage": {"input_tokens": 2, "output_tokens": 3}}` + "\n"

	resp, err := parseCodexStream(stdout, "gpt-4o")
	if err != nil {
		t.Fatalf("parseCodexStream() error: %v", err)
	}
	if resp.Usage.OutputTokens != 3 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}
