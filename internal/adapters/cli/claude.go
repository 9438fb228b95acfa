package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stepflow-ai/stepflow/internal/core"
)

const claudeInstallPkg = "@anthropic-ai/claude-code"

// ClaudeAdapter bridges the claude CLI. The CLI emits a single JSON
// document on stdout when invoked with --output-format json.
type ClaudeAdapter struct {
	*BaseAdapter
}

// NewClaudeAdapter creates the Anthropic bridge.
func NewClaudeAdapter(cfg Config) *ClaudeAdapter {
	return &ClaudeAdapter{
		BaseAdapter: NewBaseAdapter("claude", claudeInstallPkg, cfg),
	}
}

// Name returns the provider identifier.
func (c *ClaudeAdapter) Name() string {
	return "claude"
}

// Ping checks that the claude CLI is installed and responsive.
func (c *ClaudeAdapter) Ping(ctx context.Context) error {
	if err := c.CheckAvailability(ctx); err != nil {
		return err
	}
	_, err := c.GetVersion(ctx)
	return err
}

// Execute runs one prompt through the claude CLI.
func (c *ClaudeAdapter) Execute(ctx context.Context, systemPrompt, userInput string, tier core.ModelTier) (*core.ProviderResponse, error) {
	model := core.ResolveModel(core.ProviderAnthropic, tier)
	args := []string{
		"-p", joinPrompt(systemPrompt, userInput),
		"--output-format", "json",
		"--model", model,
	}

	result, err := c.ExecuteCommand(ctx, args)
	if err != nil {
		return nil, err
	}
	return parseClaudeOutput(result.Stdout, model)
}

// claudeDocument mirrors the claude CLI's JSON output shape.
type claudeDocument struct {
	Text     string `json:"text"`
	Metadata struct {
		Model  string `json:"model"`
		Tokens struct {
			Input  int `json:"input"`
			Output int `json:"output"`
		} `json:"tokens"`
	} `json:"metadata"`
	StopReason string `json:"stop_reason"`
}

// parseClaudeOutput parses the single JSON document the CLI prints on a
// zero exit. The fallbackModel fills in when the document omits its own.
func parseClaudeOutput(stdout, fallbackModel string) (*core.ProviderResponse, error) {
	var doc claudeDocument
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &doc); err != nil {
		return nil, core.ErrMalformedOutput(
			fmt.Sprintf("claude output is not valid JSON: %v (stdout: %s)", err, truncateForLog(stdout, 200)))
	}

	model := doc.Metadata.Model
	if model == "" {
		model = fallbackModel
	}

	stop := core.StopEndTurn
	if doc.StopReason != "" {
		stop = core.ParseStopReason(doc.StopReason)
	}

	return &core.ProviderResponse{
		Content: doc.Text,
		Usage: core.TokenUsage{
			InputTokens:  doc.Metadata.Tokens.Input,
			OutputTokens: doc.Metadata.Tokens.Output,
		},
		StopReason: stop,
		Model:      model,
	}, nil
}

var _ core.ProviderClient = (*ClaudeAdapter)(nil)
