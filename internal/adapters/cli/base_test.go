package cli

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stepflow-ai/stepflow/internal/core"
)

func TestClassifyError(t *testing.T) {
	adapter := NewBaseAdapter("claude", claudeInstallPkg, Config{})

	tests := []struct {
		name         string
		stderr       string
		wantCategory core.ErrorCategory
		wantRetry    bool
	}{
		{"rate limit phrase", "Error: rate limit exceeded, slow down", core.ErrCatRateLimit, true},
		{"http 429", "request failed with status 429", core.ErrCatRateLimit, true},
		{"too many requests", "Too Many Requests", core.ErrCatRateLimit, true},
		{"quota", "monthly quota exhausted", core.ErrCatRateLimit, true},
		{"auth failed", "Authentication failed, please run claude login", core.ErrCatAuth, false},
		{"unauthorized", "401 Unauthorized", core.ErrCatAuth, false},
		{"invalid api key", "Invalid API key provided", core.ErrCatAuth, false},
		{"login required", "please login first", core.ErrCatAuth, false},
		{"generic crash", "panic: index out of range", core.ErrCatExecution, true},
		{"empty stderr", "", core.ErrCatExecution, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := adapter.classifyError(&CommandResult{Stderr: tt.stderr, ExitCode: 1})
			if core.GetCategory(err) != tt.wantCategory {
				t.Errorf("category = %s, want %s", core.GetCategory(err), tt.wantCategory)
			}
			if core.IsRetryable(err) != tt.wantRetry {
				t.Errorf("IsRetryable = %v, want %v", core.IsRetryable(err), tt.wantRetry)
			}
		})
	}
}

func TestJoinPrompt(t *testing.T) {
	if got := joinPrompt("system", "input"); got != "system\n\ninput" {
		t.Errorf("joinPrompt() = %q", got)
	}
	if got := joinPrompt("system", ""); got != "system" {
		t.Errorf("joinPrompt() with empty input = %q", got)
	}
}

func TestCheckAvailability_MissingBinary(t *testing.T) {
	adapter := NewBaseAdapter("definitely-not-a-real-cli-binary", "@example/pkg", Config{})
	err := adapter.CheckAvailability(context.Background())
	if err == nil {
		t.Fatal("expected CLI_NOT_FOUND for missing binary")
	}
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Errorf("category = %s, want not_found", core.GetCategory(err))
	}
	if core.IsRetryable(err) {
		t.Error("CLI_NOT_FOUND must not be retryable")
	}
}

func TestExecuteCommand_CapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test spawns sh")
	}
	adapter := NewBaseAdapter("sh", "", Config{})

	result, err := adapter.ExecuteCommand(context.Background(), []string{"-c", "echo hello"})
	if err != nil {
		t.Fatalf("ExecuteCommand() error: %v", err)
	}
	if result.Stdout != "hello\n" {
		t.Errorf("stdout = %q", result.Stdout)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d", result.ExitCode)
	}
}

func TestExecuteCommand_NonZeroExitClassified(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test spawns sh")
	}
	adapter := NewBaseAdapter("sh", "", Config{})

	_, err := adapter.ExecuteCommand(context.Background(),
		[]string{"-c", "echo 'rate limit exceeded' >&2; exit 1"})
	if !core.IsCategory(err, core.ErrCatRateLimit) {
		t.Errorf("error = %v, want rate limit classification", err)
	}
}

func TestExecuteCommand_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test spawns sleep")
	}
	adapter := NewBaseAdapter("sleep", "", Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := adapter.ExecuteCommand(ctx, []string{"5"})
	elapsed := time.Since(start)

	if !core.IsCategory(err, core.ErrCatTimeout) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if !core.IsRetryable(err) {
		t.Error("timeout must be retryable")
	}
	// The child must have been killed, not waited for.
	if elapsed > 2*time.Second {
		t.Errorf("command outlived its deadline: %v", elapsed)
	}
}

func TestExecuteCommand_Cancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test spawns sleep")
	}
	adapter := NewBaseAdapter("sleep", "", Config{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := adapter.ExecuteCommand(ctx, []string{"5"})
	if !core.IsCategory(err, core.ErrCatState) {
		t.Errorf("error = %v, want cancelled state error", err)
	}
	if core.IsRetryable(err) {
		t.Error("cancellation must not be retryable")
	}
}

func TestExecuteCommand_CheckBinary(t *testing.T) {
	adapter := NewBaseAdapter("definitely-not-a-real-cli-binary", "@example/pkg",
		Config{CheckBinary: true})
	_, err := adapter.ExecuteCommand(context.Background(), nil)
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Errorf("error = %v, want CLI_NOT_FOUND from preflight check", err)
	}
}
