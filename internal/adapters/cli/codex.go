package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stepflow-ai/stepflow/internal/core"
)

const codexInstallPkg = "@openai/codex"

// CodexAdapter bridges the codex CLI. With --json the CLI streams
// newline-delimited JSON events on stdout; the adapter collects the final
// assistant message and the terminal usage totals from the stream.
type CodexAdapter struct {
	*BaseAdapter
}

// NewCodexAdapter creates the OpenAI bridge.
func NewCodexAdapter(cfg Config) *CodexAdapter {
	return &CodexAdapter{
		BaseAdapter: NewBaseAdapter("codex", codexInstallPkg, cfg),
	}
}

// Name returns the provider identifier.
func (c *CodexAdapter) Name() string {
	return "codex"
}

// Ping checks that the codex CLI is installed and responsive.
func (c *CodexAdapter) Ping(ctx context.Context) error {
	if err := c.CheckAvailability(ctx); err != nil {
		return err
	}
	_, err := c.GetVersion(ctx)
	return err
}

// Execute runs one prompt through the codex CLI.
func (c *CodexAdapter) Execute(ctx context.Context, systemPrompt, userInput string, tier core.ModelTier) (*core.ProviderResponse, error) {
	model := core.ResolveModel(core.ProviderOpenAI, tier)
	args := []string{
		"exec", "--json",
		"--model", model,
		joinPrompt(systemPrompt, userInput),
	}

	result, err := c.ExecuteCommand(ctx, args)
	if err != nil {
		return nil, err
	}
	return parseCodexStream(result.Stdout, model)
}

// codexEvent is one line of the codex event stream. The type field
// discriminates; fields not relevant to a given type stay zero.
type codexEvent struct {
	Type       string `json:"type"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// parseCodexStream scans the whole event stream. The result content is the
// last assistant item.completed event; token totals come from the terminal
// turn.completed usage event. A stream that ends without usage totals, or
// any unparseable line, is malformed. Unknown event types are ignored so
// new CLI versions don't break parsing.
func parseCodexStream(stdout, fallbackModel string) (*core.ProviderResponse, error) {
	var (
		content  string
		haveText bool
		usage    *core.TokenUsage
		model    = fallbackModel
		stop     = core.StopEndTurn
		lineNo   int
	)

	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event codexEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, core.ErrMalformedOutput(
				fmt.Sprintf("codex stream line %d is not valid JSON: %v (line: %s)", lineNo, err, truncateForLog(line, 200)))
		}

		switch event.Type {
		case "item.completed":
			// Non-assistant items (tool calls, reasoning) carry no
			// result text.
			if event.Role == "assistant" || event.Role == "" {
				if event.Content != "" {
					content = event.Content
					haveText = true
				}
			}
		case "turn.started":
			if event.Model != "" {
				model = event.Model
			}
		case "turn.completed":
			if event.Usage != nil {
				usage = &core.TokenUsage{
					InputTokens:  event.Usage.InputTokens,
					OutputTokens: event.Usage.OutputTokens,
				}
			}
			if event.StopReason != "" {
				stop = core.ParseStopReason(event.StopReason)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, core.ErrMalformedOutput(fmt.Sprintf("reading codex stream: %v", err))
	}

	if usage == nil {
		return nil, core.ErrMalformedOutput("codex stream ended without a turn.completed usage event")
	}
	if !haveText {
		return nil, core.ErrMalformedOutput("codex stream contained no assistant message")
	}

	return &core.ProviderResponse{
		Content:    content,
		Usage:      *usage,
		StopReason: stop,
		Model:      model,
	}, nil
}

var _ core.ProviderClient = (*CodexAdapter)(nil)
