package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "feedbot", "config.json")
}

// DefaultDatabasePath keeps the sqlite file under the XDG state
// directory, following the base directory spec for runtime state.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.StateHome, "feedbot", "feedbot.db")
}
