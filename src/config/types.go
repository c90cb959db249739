// Package config loads and validates the feedbot configuration file.
package config

// Config is the complete configuration for feedbot.
type Config struct {
	// Provider configures the Ark chat completion transport.
	Provider ProviderConfig `json:"provider"`

	// Conversations bounds the in-memory conversation cache.
	Conversations ConversationsConfig `json:"conversations"`

	// Server configures the HTTP front.
	Server ServerConfig `json:"server"`

	// Database configures sqlite storage.
	Database DatabaseConfig `json:"database"`

	// Logging configures log output.
	Logging LoggingConfig `json:"logging"`
}

// ProviderConfig holds model provider settings.
type ProviderConfig struct {
	// BaseURL overrides the default Ark endpoint.
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// APIKey for authentication. The ARK_API_KEY environment variable
	// takes precedence when set.
	APIKey string `json:"api_key,omitempty"`

	// FastModel handles everyday turns.
	FastModel string `json:"fast_model" validate:"required"`

	// AdvancedModel handles escalated questions. Falls back to
	// FastModel when blank.
	AdvancedModel string `json:"advanced_model,omitempty"`

	// TimeoutSeconds bounds a single provider call.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" validate:"min=0"`
}

// ConversationsConfig bounds the conversation cache.
type ConversationsConfig struct {
	// TTLSeconds is how long an idle conversation survives.
	TTLSeconds int `json:"ttl_seconds,omitempty" validate:"min=0"`

	// MaxEntries is the occupancy that triggers an expiry sweep.
	MaxEntries int `json:"max_entries,omitempty" validate:"min=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`
}

// DatabaseConfig holds sqlite storage settings.
type DatabaseConfig struct {
	// Path locates the database file.
	Path string `json:"path,omitempty"`

	// FoodCatalog optionally points at a JSON catalog seeded into the
	// food table at startup.
	FoodCatalog string `json:"food_catalog,omitempty"`
}

// LoggingConfig defines log output settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level,omitempty" validate:"log_level"`

	// Format is the output format (text, json).
	Format string `json:"format,omitempty" validate:"log_format"`
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return e.Message
}
