package config

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/stepflow-ai/stepflow/internal/core"
)

// invalidEnumError builds a validation error for an unknown enum value,
// with a "did you mean" hint when a close match exists.
func invalidEnumError(field, value, stepName string, index int, valid []string) error {
	name := stepName
	if name == "" {
		name = fmt.Sprintf("#%d", index)
	}
	msg := fmt.Sprintf("step %q has unknown %s %q (valid: %v)", name, field, value, valid)
	if suggestion := suggest(value, valid); suggestion != "" {
		msg += fmt.Sprintf(", did you mean %q?", suggestion)
	}
	return core.ErrValidation(core.CodeInvalidConfig, msg)
}

// suggest returns the closest valid candidate for a misspelled value, or
// empty when nothing matches.
func suggest(value string, candidates []string) string {
	matches := fuzzy.Find(value, candidates)
	if len(matches) == 0 {
		return ""
	}
	return candidates[matches[0].Index]
}
