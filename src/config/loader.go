package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the configuration file at path, or the default location
// when path is blank. Values from the file override the defaults field
// by field; a missing file at the default location is not an error.
// The ARK_API_KEY environment variable overrides the file's api_key.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file, defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvironmentOverrides(config)

	if err := NewValidator().Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// applyEnvironmentOverrides applies environment variable overrides.
// Only the API key comes from the environment.
func applyEnvironmentOverrides(config *Config) {
	if apiKey := os.Getenv("ARK_API_KEY"); apiKey != "" {
		config.Provider.APIKey = apiKey
	}
}
