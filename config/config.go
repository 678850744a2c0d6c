// Package config provides configuration loading and management for commitai.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete commitai configuration.
type Config struct {
	// Provider names the active AI provider ("ollama", "openai", "anthropic", "gemini").
	Provider  string                    `yaml:"provider"`
	Providers map[string]ProviderConfig `yaml:"providers"`

	CommitFormat CommitFormatConfig `yaml:"commit_format"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Prompt       PromptConfig       `yaml:"prompt"`
	Generation   GenerationConfig   `yaml:"generation"`

	// FallbackMessage is returned verbatim when generation fails.
	FallbackMessage string `yaml:"fallback_message"`
}

// ProviderConfig holds per-provider connection settings.
type ProviderConfig struct {
	// Enabled is a pointer so merging can tell an explicit false from an
	// unset value. Unset means disabled.
	Enabled *bool  `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

// IsEnabled reports whether the provider is explicitly enabled.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled != nil && *p.Enabled
}

// CommitFormatConfig configures the conventional-commit output format.
type CommitFormatConfig struct {
	// Types is the allowed set of conventional-commit types.
	Types []string `yaml:"types"`
	// MaxTitleLength bounds the title line.
	MaxTitleLength int `yaml:"max_title_length"`
	// IncludeBody controls whether a body paragraph is kept. A pointer so
	// merging can tell an explicit false from an unset value.
	IncludeBody *bool `yaml:"include_body"`
}

// BodyIncluded reports whether a body paragraph should be kept. Unset
// defaults to true.
func (c CommitFormatConfig) BodyIncluded() bool {
	return c.IncludeBody == nil || *c.IncludeBody
}

// AnalysisConfig configures diff analysis limits.
type AnalysisConfig struct {
	// MaxDiffLines caps the staged diff text sent to the model.
	MaxDiffLines int `yaml:"max_diff_lines"`
	// IncludeFileList adds the changed-file list to the prompt. A pointer
	// so merging can tell an explicit false from an unset value.
	IncludeFileList *bool `yaml:"include_file_list"`
}

// FileListIncluded reports whether the changed-file list goes into the
// prompt. Unset defaults to true.
func (a AnalysisConfig) FileListIncluded() bool {
	return a.IncludeFileList == nil || *a.IncludeFileList
}

// PromptConfig holds user-customizable prompt fields.
type PromptConfig struct {
	SystemMessage     string    `yaml:"system_message"`
	ReasoningTemplate string    `yaml:"reasoning_template"`
	Examples          []Example `yaml:"examples,omitempty"`
}

// Example is a few-shot example included in the prompt.
type Example struct {
	Diff      string `yaml:"diff"`
	Reasoning string `yaml:"reasoning,omitempty"`
	Output    string `yaml:"output"`
}

// GenerationConfig bounds the generation loop.
type GenerationConfig struct {
	// MaxAttempts is the total number of provider calls before falling back.
	MaxAttempts int `yaml:"max_attempts"`
	// Temperature is the sampling temperature sent to the provider. A
	// pointer so an explicit 0 is distinguishable from unset.
	Temperature *float64 `yaml:"temperature"`
	// RequestTimeout bounds each provider HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// GitTimeout bounds each git subprocess invocation.
	GitTimeout time.Duration `yaml:"git_timeout"`
}

// DefaultSystemMessage is used when prompt.system_message is empty.
const DefaultSystemMessage = "You are an expert software engineer who writes clear, concise, " +
	"and meaningful git commit messages following conventional commit standards."

// DefaultConfig returns a Config with documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: "ollama",
		Providers: map[string]ProviderConfig{
			"ollama": {
				Enabled: boolPtr(true),
				BaseURL: "http://localhost:11434",
				Model:   "llama3.2",
			},
			"openai": {
				Model: "gpt-4o-mini",
			},
			"anthropic": {
				Model: "claude-3-5-sonnet-20241022",
			},
			"gemini": {
				Model: "gemini-pro",
			},
		},
		CommitFormat: CommitFormatConfig{
			Types:          []string{"feat", "fix", "docs", "style", "refactor", "test", "chore", "perf"},
			MaxTitleLength: 72,
			IncludeBody:    boolPtr(true),
		},
		Analysis: AnalysisConfig{
			MaxDiffLines:    500,
			IncludeFileList: boolPtr(true),
		},
		Prompt: PromptConfig{
			SystemMessage: DefaultSystemMessage,
		},
		Generation: GenerationConfig{
			MaxAttempts:    2,
			Temperature:    floatPtr(0.2),
			RequestTimeout: 30 * time.Second,
			GitTimeout:     10 * time.Second,
		},
		FallbackMessage: "chore: update files",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if _, ok := c.Providers[c.Provider]; !ok {
		return fmt.Errorf("provider %q has no configuration", c.Provider)
	}
	if len(c.CommitFormat.Types) == 0 {
		return fmt.Errorf("commit_format.types must not be empty")
	}
	if c.CommitFormat.MaxTitleLength <= 0 {
		return fmt.Errorf("commit_format.max_title_length must be positive")
	}
	if c.Analysis.MaxDiffLines <= 0 {
		return fmt.Errorf("analysis.max_diff_lines must be positive")
	}
	if c.Generation.MaxAttempts <= 0 {
		return fmt.Errorf("generation.max_attempts must be positive")
	}
	if c.FallbackMessage == "" {
		return fmt.Errorf("fallback_message is required")
	}
	return nil
}

// ActiveProvider returns the configuration for the enabled provider.
func (c *Config) ActiveProvider() ProviderConfig {
	return c.Providers[c.Provider]
}

// HasType reports whether t is in the configured type set.
func (c *Config) HasType(t string) bool {
	return slices.Contains(c.CommitFormat.Types, t)
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// ParseYAML parses configuration from YAML data. Unknown keys are rejected
// so that typos in user config surface immediately instead of being
// silently ignored.
func ParseYAML(data []byte) (*Config, error) {
	config := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Provider != "" {
		c.Provider = other.Provider
	}
	for name, pc := range other.Providers {
		base := c.Providers[name]
		if pc.BaseURL != "" {
			base.BaseURL = pc.BaseURL
		}
		if pc.Model != "" {
			base.Model = pc.Model
		}
		if pc.APIKey != "" {
			base.APIKey = pc.APIKey
		}
		if pc.Enabled != nil {
			base.Enabled = pc.Enabled
		}
		c.Providers[name] = base
	}

	if len(other.CommitFormat.Types) > 0 {
		c.CommitFormat.Types = other.CommitFormat.Types
	}
	if other.CommitFormat.MaxTitleLength != 0 {
		c.CommitFormat.MaxTitleLength = other.CommitFormat.MaxTitleLength
	}
	if other.CommitFormat.IncludeBody != nil {
		c.CommitFormat.IncludeBody = other.CommitFormat.IncludeBody
	}

	if other.Analysis.MaxDiffLines != 0 {
		c.Analysis.MaxDiffLines = other.Analysis.MaxDiffLines
	}
	if other.Analysis.IncludeFileList != nil {
		c.Analysis.IncludeFileList = other.Analysis.IncludeFileList
	}

	if other.Prompt.SystemMessage != "" {
		c.Prompt.SystemMessage = other.Prompt.SystemMessage
	}
	if other.Prompt.ReasoningTemplate != "" {
		c.Prompt.ReasoningTemplate = other.Prompt.ReasoningTemplate
	}
	if len(other.Prompt.Examples) > 0 {
		c.Prompt.Examples = other.Prompt.Examples
	}

	if other.Generation.MaxAttempts != 0 {
		c.Generation.MaxAttempts = other.Generation.MaxAttempts
	}
	if other.Generation.Temperature != nil {
		c.Generation.Temperature = other.Generation.Temperature
	}
	if other.Generation.RequestTimeout != 0 {
		c.Generation.RequestTimeout = other.Generation.RequestTimeout
	}
	if other.Generation.GitTimeout != 0 {
		c.Generation.GitTimeout = other.Generation.GitTimeout
	}

	if other.FallbackMessage != "" {
		c.FallbackMessage = other.FallbackMessage
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}
