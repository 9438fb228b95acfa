// Package config loads and validates workflow definition files. It is
// the collaborator that produces the immutable WorkflowDefinition the
// engine trusts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stepflow-ai/stepflow/internal/core"
)

// workflowFile is the on-disk shape of a workflow definition. TOML files
// use a [workflow] table and a [[steps]] array; YAML mirrors the same
// structure.
type workflowFile struct {
	Workflow workflowMeta `mapstructure:"workflow" yaml:"workflow"`
	Steps    []stepEntry  `mapstructure:"steps" yaml:"steps"`
}

type workflowMeta struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description"`
	Version     string `mapstructure:"version" yaml:"version"`
}

type stepEntry struct {
	Name           string `mapstructure:"name" yaml:"name"`
	SystemPrompt   string `mapstructure:"system_prompt" yaml:"system_prompt"`
	Provider       string `mapstructure:"provider" yaml:"provider"`
	ModelTier      string `mapstructure:"model_tier" yaml:"model_tier"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	RetryCount     int    `mapstructure:"retry_count" yaml:"retry_count"`
}

// LoadWorkflow reads a workflow definition from a TOML or YAML file,
// validates it, and returns the immutable definition.
func LoadWorkflow(path string) (*core.WorkflowDefinition, error) {
	var file workflowFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading workflow file %s: %w", path, err)
		}
		if err := v.Unmarshal(&file); err != nil {
			return nil, fmt.Errorf("parsing workflow file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI argument
		if err != nil {
			return nil, fmt.Errorf("reading workflow file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing workflow file %s: %w", path, err)
		}
	default:
		return nil, core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("unsupported workflow file extension %q (want .toml, .yaml or .yml)", filepath.Ext(path)))
	}

	return buildDefinition(&file)
}

// buildDefinition maps the file DTO onto the domain definition and runs
// full validation, including fuzzy suggestions for misspelled enums.
func buildDefinition(file *workflowFile) (*core.WorkflowDefinition, error) {
	def := &core.WorkflowDefinition{
		Name:        file.Workflow.Name,
		Description: file.Workflow.Description,
		Version:     file.Workflow.Version,
		Steps:       make([]core.StepSpec, 0, len(file.Steps)),
	}

	for i, entry := range file.Steps {
		provider := core.Provider(strings.ToLower(strings.TrimSpace(entry.Provider)))
		if entry.Provider != "" && !provider.Valid() {
			return nil, invalidEnumError("provider", entry.Provider, entry.Name, i, providerNames())
		}
		tier := core.ModelTier(strings.ToLower(strings.TrimSpace(entry.ModelTier)))
		if entry.ModelTier != "" && !tier.Valid() {
			return nil, invalidEnumError("model tier", entry.ModelTier, entry.Name, i, tierNames())
		}
		if entry.TimeoutSeconds < 0 {
			return nil, core.ErrValidation(core.CodeInvalidTimeout,
				fmt.Sprintf("step %q has negative timeout_seconds", entry.Name))
		}

		def.Steps = append(def.Steps, core.StepSpec{
			Name:         entry.Name,
			SystemPrompt: entry.SystemPrompt,
			Provider:     provider,
			Tier:         tier,
			Timeout:      time.Duration(entry.TimeoutSeconds) * time.Second,
			RetryCount:   entry.RetryCount,
		})
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func providerNames() []string {
	providers := core.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = string(p)
	}
	return names
}

func tierNames() []string {
	tiers := core.Tiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = string(t)
	}
	return names
}
