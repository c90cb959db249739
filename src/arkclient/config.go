package arkclient

import (
	"log/slog"
)

// Config holds configuration for the Ark client
type Config struct {
	APIKey  string       // Ark API key
	BaseURL string       // Base URL for the Ark API
	Logger  *slog.Logger // Logger for debugging
}
