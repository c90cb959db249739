package config

// Default model tiers on the Volcano Ark platform.
const (
	DefaultFastModel     = "doubao-1.5-pro-32k"
	DefaultAdvancedModel = "doubao-1.5-pro-256k"
)

// DefaultBaseURL is the Ark OpenAI-compatible endpoint.
const DefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// DefaultConfig returns a configuration with sensible defaults. The
// api_key is the only setting without one.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL:        DefaultBaseURL,
			FastModel:      DefaultFastModel,
			AdvancedModel:  DefaultAdvancedModel,
			TimeoutSeconds: 60,
		},
		Conversations: ConversationsConfig{
			TTLSeconds: 3600,
			MaxEntries: 1000,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
