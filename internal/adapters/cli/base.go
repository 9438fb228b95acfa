// Package cli contains the provider CLI bridges. Each adapter spawns its
// backing coding-agent CLI as a child process, parses the machine-readable
// output and converts failures into domain errors. Adapters never retry;
// every retry is a fresh spawn driven by the engine.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/stepflow-ai/stepflow/internal/core"
	"github.com/stepflow-ai/stepflow/internal/diagnostics"
	"github.com/stepflow-ai/stepflow/internal/logging"
)

// Config holds bridge configuration shared by both adapters.
type Config struct {
	// WorkDir is the working directory for spawned CLIs. Empty means the
	// current directory.
	WorkDir string

	// CheckBinary enables a LookPath existence check before each spawn,
	// turning a generic start failure into a CLI_NOT_FOUND error that
	// names the command and its install source.
	CheckBinary bool

	// Preflight, when set, refuses to spawn on a resource-starved host.
	Preflight *diagnostics.Checker

	Logger *logging.Logger
}

// BaseAdapter provides the subprocess plumbing shared by both bridges.
type BaseAdapter struct {
	command    string
	installPkg string
	cfg        Config
	logger     *logging.Logger
}

// NewBaseAdapter creates the shared adapter layer for one CLI command.
func NewBaseAdapter(command, installPkg string, cfg Config) *BaseAdapter {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BaseAdapter{
		command:    command,
		installPkg: installPkg,
		cfg:        cfg,
		logger:     logger.WithProvider(command),
	}
}

// Command returns the CLI command name the adapter spawns.
func (b *BaseAdapter) Command() string {
	return b.command
}

// CommandResult holds the raw outcome of one CLI execution.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CheckAvailability verifies the CLI binary is resolvable on PATH.
func (b *BaseAdapter) CheckAvailability(_ context.Context) error {
	if _, err := exec.LookPath(b.command); err != nil {
		return core.ErrCliNotFound(b.command, b.installPkg)
	}
	return nil
}

// ExecuteCommand spawns the CLI with the given arguments and waits for it
// to exit. Context cancellation kills the whole process group so no
// orphaned children survive a timeout.
func (b *BaseAdapter) ExecuteCommand(ctx context.Context, args []string) (*CommandResult, error) {
	if b.cfg.CheckBinary {
		if err := b.CheckAvailability(ctx); err != nil {
			return nil, err
		}
	}

	if b.cfg.Preflight != nil {
		preflight := b.cfg.Preflight.Run()
		if !preflight.OK {
			return nil, core.ErrExecution(core.CodePreflightFailed,
				fmt.Sprintf("preflight check failed: %v", preflight.Errors))
		}
		for _, w := range preflight.Warnings {
			b.logger.Warn("preflight warning before spawn", "warning", w)
		}
	}

	// #nosec G204 -- command name is fixed per adapter, args come from validated config
	cmd := exec.CommandContext(ctx, b.command, args...)
	if b.cfg.WorkDir != "" {
		cmd.Dir = b.cfg.WorkDir
	}
	configureCommand(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.logger.Debug("cli: spawning", "args", args, "work_dir", cmd.Dir)

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := &CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if ctx.Err() == context.DeadlineExceeded {
		b.logger.Error("cli: attempt timed out",
			"duration", duration,
			"stderr_preview", truncateForLog(result.Stderr, 500),
		)
		return result, core.ErrTimeout(fmt.Sprintf("%s timed out after %v", b.command, duration.Round(time.Millisecond)))
	}
	if ctx.Err() == context.Canceled {
		b.logger.Info("cli: attempt cancelled", "duration", duration)
		return result, core.ErrState(core.CodeCancelled, "execution cancelled")
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			b.logger.Error("cli: command failed",
				"exit_code", result.ExitCode,
				"duration", duration,
				"stderr", truncateForLog(result.Stderr, 2000),
			)
			return result, b.classifyError(result)
		}
		return result, fmt.Errorf("starting %s: %w", b.command, err)
	}

	b.logger.Debug("cli: command completed",
		"duration", duration,
		"stdout_length", len(result.Stdout),
	)
	return result, nil
}

// GetVersion retrieves the CLI version string, mainly for doctor checks.
func (b *BaseAdapter) GetVersion(ctx context.Context) (string, error) {
	result, err := b.ExecuteCommand(ctx, []string{"--version"})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(result.Stdout)
	if out == "" {
		out = strings.TrimSpace(result.Stderr)
	}
	return out, nil
}

// classifyError converts a non-zero exit into a domain error by scanning
// stderr. The raw diagnostic is always preserved for operator action.
func (b *BaseAdapter) classifyError(result *CommandResult) error {
	diagnostic := strings.TrimSpace(result.Stderr)
	if diagnostic == "" {
		diagnostic = "(no error output captured)"
	}
	lower := strings.ToLower(diagnostic)

	if containsAny(lower, []string{"rate limit", "too many requests", "429", "quota"}) {
		return core.ErrRateLimit(diagnostic)
	}
	if containsAny(lower, []string{"authentication", "unauthorized", "login", "api key", "invalid api key"}) {
		return core.ErrAuth(b.command, diagnostic)
	}
	return core.ErrCliExecution(result.ExitCode, diagnostic)
}

// joinPrompt concatenates the system prompt and user input with a blank
// line between them. An empty user input yields just the system prompt.
func joinPrompt(systemPrompt, userInput string) string {
	if userInput == "" {
		return systemPrompt
	}
	return systemPrompt + "\n\n" + userInput
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... [truncated]"
}
