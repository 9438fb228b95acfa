package core

import "testing"

func TestResolveModel_Total(t *testing.T) {
	// Every supported (provider, tier) pair must resolve to a non-empty,
	// stable model name.
	for _, provider := range Providers() {
		for _, tier := range Tiers() {
			first := ResolveModel(provider, tier)
			if first == "" {
				t.Errorf("ResolveModel(%s, %s) = empty string", provider, tier)
			}
			second := ResolveModel(provider, tier)
			if first != second {
				t.Errorf("ResolveModel(%s, %s) unstable: %q then %q", provider, tier, first, second)
			}
		}
	}
}

func TestResolveModel_Mapping(t *testing.T) {
	tests := []struct {
		provider Provider
		tier     ModelTier
		want     string
	}{
		{ProviderAnthropic, TierHeavy, "claude-opus-4"},
		{ProviderAnthropic, TierMedium, "claude-sonnet-4-5"},
		{ProviderAnthropic, TierLight, "claude-haiku"},
		{ProviderOpenAI, TierHeavy, "o1"},
		{ProviderOpenAI, TierMedium, "gpt-4o"},
		{ProviderOpenAI, TierLight, "gpt-4o-mini"},
	}

	for _, tt := range tests {
		if got := ResolveModel(tt.provider, tt.tier); got != tt.want {
			t.Errorf("ResolveModel(%s, %s) = %q, want %q", tt.provider, tt.tier, got, tt.want)
		}
	}
}

func TestResolveModel_UnknownTierFallsBackToMedium(t *testing.T) {
	if got := ResolveModel(ProviderAnthropic, ModelTier("turbo")); got != "claude-sonnet-4-5" {
		t.Errorf("unknown tier resolved to %q, want medium fallback", got)
	}
	if got := ResolveModel(ProviderOpenAI, ModelTier("")); got != "gpt-4o" {
		t.Errorf("empty tier resolved to %q, want medium fallback", got)
	}
}

func TestProviderAndTierValidity(t *testing.T) {
	if !ProviderAnthropic.Valid() || !ProviderOpenAI.Valid() {
		t.Error("supported providers must be valid")
	}
	if Provider("gemini").Valid() {
		t.Error("unsupported provider must be invalid")
	}
	if !TierHeavy.Valid() || !TierMedium.Valid() || !TierLight.Valid() {
		t.Error("supported tiers must be valid")
	}
	if ModelTier("xl").Valid() {
		t.Error("unsupported tier must be invalid")
	}
}
