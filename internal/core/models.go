package core

// Concrete model identifiers per provider. These match what the CLIs
// accept today; they may drift as the vendors rename models.
const (
	anthropicHeavy  = "claude-opus-4"
	anthropicMedium = "claude-sonnet-4-5"
	anthropicLight  = "claude-haiku"

	openaiHeavy  = "o1"
	openaiMedium = "gpt-4o"
	openaiLight  = "gpt-4o-mini"
)

// ResolveModel maps a (provider, tier) pair to the concrete model name
// passed to the CLI. It is total over the 2x3 supported combinations;
// an unvalidated tier falls back to the provider's medium model so the
// function never returns an empty string.
func ResolveModel(provider Provider, tier ModelTier) string {
	switch provider {
	case ProviderAnthropic:
		switch tier {
		case TierHeavy:
			return anthropicHeavy
		case TierLight:
			return anthropicLight
		default:
			return anthropicMedium
		}
	case ProviderOpenAI:
		switch tier {
		case TierHeavy:
			return openaiHeavy
		case TierLight:
			return openaiLight
		default:
			return openaiMedium
		}
	default:
		return anthropicMedium
	}
}
