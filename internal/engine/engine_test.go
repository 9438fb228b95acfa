package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/stepflow-ai/stepflow/internal/core"
)

// mockClient is a scriptable ProviderClient for engine tests. Each call
// pops the next scripted behavior; the last entry repeats when the
// script runs out.
type mockClient struct {
	mu       sync.Mutex
	script   []mockCall
	calls    int
	inputs   []string
	lastTier core.ModelTier
}

type mockCall struct {
	resp  *core.ProviderResponse
	err   error
	block bool // wait for ctx cancellation instead of returning
}

func respond(content string, in, out int) mockCall {
	return mockCall{resp: &core.ProviderResponse{
		Content:    content,
		Usage:      core.TokenUsage{InputTokens: in, OutputTokens: out},
		StopReason: core.StopEndTurn,
		Model:      "mock-model",
	}}
}

func fail(err error) mockCall {
	return mockCall{err: err}
}

func block() mockCall {
	return mockCall{block: true}
}

func newMockClient(script ...mockCall) *mockClient {
	return &mockClient{script: script}
}

func (m *mockClient) Name() string { return "mock" }

func (m *mockClient) Ping(context.Context) error { return nil }

func (m *mockClient) Execute(ctx context.Context, _, userInput string, tier core.ModelTier) (*core.ProviderResponse, error) {
	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	call := m.script[idx]
	m.calls++
	m.inputs = append(m.inputs, userInput)
	m.lastTier = tier
	m.mu.Unlock()

	if call.block {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, core.ErrTimeout("mock provider timed out")
		}
		return nil, core.ErrState(core.CodeCancelled, "execution cancelled")
	}
	if call.err != nil {
		return nil, call.err
	}
	return call.resp, nil
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockClient) inputAt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[i]
}

// singleStepDef builds a one-step workflow bound to the anthropic mock.
func singleStepDef(retryCount int) *core.WorkflowDefinition {
	return &core.WorkflowDefinition{
		Name: "test-workflow",
		Steps: []core.StepSpec{
			{
				Name:         "only",
				SystemPrompt: "Do the thing.",
				Provider:     core.ProviderAnthropic,
				Tier:         core.TierMedium,
				RetryCount:   retryCount,
			},
		},
	}
}

func clientsFor(m *mockClient) map[core.Provider]core.ProviderClient {
	return map[core.Provider]core.ProviderClient{
		core.ProviderAnthropic: m,
		core.ProviderOpenAI:    m,
	}
}

func fastRunner(m *mockClient) *StepRunner {
	runner := NewStepRunner(clientsFor(m), nil)
	runner.SetBackoff(0)
	return runner
}

func stepSpec(name string, retryCount int) core.StepSpec {
	return core.StepSpec{
		Name:         name,
		SystemPrompt: fmt.Sprintf("Prompt for %s.", name),
		Provider:     core.ProviderAnthropic,
		Tier:         core.TierMedium,
		RetryCount:   retryCount,
	}
}
