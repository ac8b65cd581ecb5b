package config

import (
	"encoding/json"
	"fmt"
)

// Provider kinds supported by the completion factory.
const (
	ProviderAzureOpenAI = "azure-openai"
	ProviderAnthropic   = "anthropic"
)

// Config represents the main askd configuration.
type Config struct {
	// Server holds the HTTP listener settings
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Provider holds the completion provider settings
	Provider ProviderConfig `json:"provider" mapstructure:"provider"`

	// Prompt settings
	Prompt PromptConfig `json:"prompt" mapstructure:"prompt"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Maintenance holds background job settings
	Maintenance MaintenanceConfig `json:"maintenance" mapstructure:"maintenance"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// ProviderConfig holds completion provider configuration.
type ProviderConfig struct {
	Kind string `json:"kind" mapstructure:"kind"` // azure-openai, anthropic

	// Azure OpenAI
	APIKey     string `json:"api_key" mapstructure:"api_key"`
	Endpoint   string `json:"endpoint" mapstructure:"endpoint"`
	APIVersion string `json:"api_version" mapstructure:"api_version"`
	Deployment string `json:"deployment" mapstructure:"deployment"`

	// Anthropic
	Model string `json:"model" mapstructure:"model"`

	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// PromptConfig holds prompt configuration.
type PromptConfig struct {
	SystemPromptFile string `json:"system_prompt_file" mapstructure:"system_prompt_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// MaintenanceConfig holds background maintenance job configuration.
type MaintenanceConfig struct {
	StatsInterval string `json:"stats_interval" mapstructure:"stats_interval"` // Go duration, e.g. "1m"
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Provider: ProviderConfig{
			Kind:        ProviderAzureOpenAI,
			Temperature: 0.7,
			MaxTokens:   500,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
		Maintenance: MaintenanceConfig{
			StatsInterval: "1m",
		},
	}
}

// String returns a JSON representation of the config with the API key
// masked.
func (c *Config) String() string {
	masked := *c
	if masked.Provider.APIKey != "" {
		masked.Provider.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid. The process must
// refuse to serve traffic when required provider settings are absent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	p := c.Provider
	switch p.Kind {
	case ProviderAzureOpenAI:
		if p.APIKey == "" {
			return fmt.Errorf("missing API key in provider configuration")
		}
		if p.Endpoint == "" {
			return fmt.Errorf("missing endpoint in provider configuration")
		}
		if p.APIVersion == "" {
			return fmt.Errorf("missing API version in provider configuration")
		}
		if p.Deployment == "" {
			return fmt.Errorf("missing deployment name in provider configuration")
		}
	case ProviderAnthropic:
		if p.APIKey == "" {
			return fmt.Errorf("missing API key in provider configuration")
		}
		if p.Model == "" {
			return fmt.Errorf("missing model in provider configuration")
		}
	default:
		return fmt.Errorf("invalid provider kind %q (must be: %s, %s)", p.Kind, ProviderAzureOpenAI, ProviderAnthropic)
	}

	if p.MaxTokens <= 0 {
		return fmt.Errorf("provider max_tokens must be positive")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("provider temperature must be within [0, 2]")
	}

	return nil
}
