package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider.BaseURL != DefaultBaseURL {
		t.Errorf("Expected base URL %s, got %s", DefaultBaseURL, config.Provider.BaseURL)
	}
	if config.Provider.FastModel != DefaultFastModel {
		t.Errorf("Expected fast model %s, got %s", DefaultFastModel, config.Provider.FastModel)
	}
	if config.Provider.AdvancedModel != DefaultAdvancedModel {
		t.Errorf("Expected advanced model %s, got %s", DefaultAdvancedModel, config.Provider.AdvancedModel)
	}
	if config.Provider.TimeoutSeconds != 60 {
		t.Errorf("Expected timeout 60s, got %d", config.Provider.TimeoutSeconds)
	}
	if config.Conversations.TTLSeconds != 3600 {
		t.Errorf("Expected conversation TTL 3600s, got %d", config.Conversations.TTLSeconds)
	}
	if config.Conversations.MaxEntries != 1000 {
		t.Errorf("Expected max entries 1000, got %d", config.Conversations.MaxEntries)
	}
	if config.Server.Addr != ":8080" {
		t.Errorf("Expected addr :8080, got %s", config.Server.Addr)
	}
	if config.Database.Path == "" {
		t.Error("Expected database path to be set")
	}
	if config.Logging.Level != "info" || config.Logging.Format != "text" {
		t.Errorf("Unexpected logging defaults: %+v", config.Logging)
	}
}

func TestConfigValidation(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "invalid log level",
			config: func() *Config {
				c := DefaultConfig()
				c.Logging.Level = "loud"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid log format",
			config: func() *Config {
				c := DefaultConfig()
				c.Logging.Format = "xml"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "missing fast model",
			config: func() *Config {
				c := DefaultConfig()
				c.Provider.FastModel = ""
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative timeout",
			config: func() *Config {
				c := DefaultConfig()
				c.Provider.TimeoutSeconds = -1
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid base url",
			config: func() *Config {
				c := DefaultConfig()
				c.Provider.BaseURL = "not a url"
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"provider": {"api_key": "sk-file", "fast_model": "custom-fast"},
		"server": {"addr": ":9999"}
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("ARK_API_KEY", "")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Provider.FastModel != "custom-fast" {
		t.Errorf("Expected custom-fast, got %s", config.Provider.FastModel)
	}
	if config.Provider.APIKey != "sk-file" {
		t.Errorf("Expected api key from file, got %s", config.Provider.APIKey)
	}
	if config.Server.Addr != ":9999" {
		t.Errorf("Expected :9999, got %s", config.Server.Addr)
	}
	// Fields the file does not mention keep their defaults.
	if config.Provider.AdvancedModel != DefaultAdvancedModel {
		t.Errorf("Expected default advanced model, got %s", config.Provider.AdvancedModel)
	}
	if config.Conversations.TTLSeconds != 3600 {
		t.Errorf("Expected default TTL, got %d", config.Conversations.TTLSeconds)
	}
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"provider": {"api_key": "sk-file"}}`), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("ARK_API_KEY", "sk-env")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Provider.APIKey != "sk-env" {
		t.Errorf("Expected env api key to win, got %s", config.Provider.APIKey)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Error("Expected error for explicitly named missing file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"logging": {"level": "loud"}}`), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for bad log level")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected parse error for malformed JSON")
	}
}
