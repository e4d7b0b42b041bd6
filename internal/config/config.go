// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the forge configuration.
type Config struct {
	LLM    LLMConfig    `toml:"llm"`
	Limits LimitsConfig `toml:"limits"`
	Viz    VizConfig    `toml:"viz"`
	Output OutputConfig `toml:"output"`
}

// LLMConfig contains model endpoint settings.
type LLMConfig struct {
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// LimitsConfig bounds one conversation run. The productive-call and
// rate-limit budgets are configured independently.
type LimitsConfig struct {
	MaxToolCalls        int `toml:"max_tool_calls"`
	MaxRateRetries      int `toml:"max_rate_retries"`
	MaxMalformedRetries int `toml:"max_malformed_retries"`
	BackoffBaseSeconds  int `toml:"backoff_base_seconds"`
}

// VizConfig contains the status dashboard settings.
type VizConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// OutputConfig contains generated-project output settings.
type OutputConfig struct {
	ProjectsDir string `toml:"projects_dir"`
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       "llama-3.3-70b-versatile",
			BaseURL:     "https://api.groq.com/openai/v1",
			Temperature: 0.3,
		},
		Limits: LimitsConfig{
			MaxToolCalls:        25,
			MaxRateRetries:      30,
			MaxMalformedRetries: 2,
			BackoffBaseSeconds:  20,
		},
		Viz: VizConfig{
			Enabled: true,
			// Loopback only: the dashboard exposes internal run state.
			Addr: "127.0.0.1:8000",
		},
		Output: OutputConfig{
			ProjectsDir: "projects",
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file, layered over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// BackoffBase returns the exhaustion backoff base as a duration.
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.Limits.BackoffBaseSeconds) * time.Second
}
