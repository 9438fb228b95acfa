// Package telemetry persists workflow results: one-shot JSON exports for
// downstream tooling and a sqlite-backed run history.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/stepflow-ai/stepflow/internal/core"
)

// WriteResult serializes a WorkflowResult to one JSON document and writes
// it atomically. A crash mid-write never leaves a truncated file behind.
func WriteResult(path string, result *core.WorkflowResult) error {
	data, err := result.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing result: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing result to %s: %w", path, err)
	}
	return nil
}

// ReadResult loads a previously exported WorkflowResult document.
func ReadResult(path string) (*core.WorkflowResult, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI argument
	if err != nil {
		return nil, fmt.Errorf("reading result from %s: %w", path, err)
	}
	result, err := core.ResultFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing result from %s: %w", path, err)
	}
	return result, nil
}
