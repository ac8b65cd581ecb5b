package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Loader handles configuration loading.
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file and environment.
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".askd", "askd.json")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	// Environment overrides. The AZURE_OPENAI_* names match what the
	// provider's own tooling exports, so a plain .env works unchanged.
	v.SetEnvPrefix("ASKD")
	v.AutomaticEnv()
	bindings := map[string][]string{
		"provider.api_key":     {"ASKD_PROVIDER_API_KEY", "AZURE_OPENAI_API_KEY"},
		"provider.endpoint":    {"ASKD_PROVIDER_ENDPOINT", "AZURE_OPENAI_ENDPOINT"},
		"provider.api_version": {"ASKD_PROVIDER_API_VERSION", "AZURE_OPENAI_API_VERSION"},
		"provider.deployment":  {"ASKD_PROVIDER_DEPLOYMENT", "AZURE_OPENAI_CHAT_DEPLOYMENT_NAME"},
		"provider.kind":        {"ASKD_PROVIDER_KIND"},
		"provider.model":       {"ASKD_PROVIDER_MODEL"},
		"server.host":          {"ASKD_SERVER_HOST"},
		"server.port":          {"ASKD_SERVER_PORT"},
		"logging.level":        {"ASKD_LOG_LEVEL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		// Validate the raw document against the schema before unmarshal
		// so typos fail with a pointed message instead of a zero value.
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := ValidateDocument(data); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
		}

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the config file path.
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".askd", "askd.json")
}

// Load is a convenience function that creates a loader and loads the config.
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}
