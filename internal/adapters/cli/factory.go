package cli

import (
	"fmt"

	"github.com/stepflow-ai/stepflow/internal/core"
)

// New maps a provider tag to its concrete bridge. The mapping is closed;
// adding a provider means adding an adapter here, not registering a plugin.
func New(provider core.Provider, cfg Config) (core.ProviderClient, error) {
	switch provider {
	case core.ProviderAnthropic:
		return NewClaudeAdapter(cfg), nil
	case core.ProviderOpenAI:
		return NewCodexAdapter(cfg), nil
	default:
		return nil, core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("unknown provider %q", provider))
	}
}

// NewAll builds one client per supported provider, sharing the same
// configuration. Used by commands that need both bridges (doctor).
func NewAll(cfg Config) map[core.Provider]core.ProviderClient {
	clients := make(map[core.Provider]core.ProviderClient, 2)
	for _, p := range core.Providers() {
		client, err := New(p, cfg)
		if err != nil {
			continue
		}
		clients[p] = client
	}
	return clients
}
