package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/yoyofushi/feedbot/src/config"
)

// createCLILogger creates a logger for interactive commands. It writes
// colorized output to stderr so stdout stays clean for command output.
func createCLILogger(logLevel string) *slog.Logger {
	level := parseLogLevel(logLevel)

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	}))
}

// createServerLogger creates the serve-mode logger. JSON format is for
// log collectors; anything else gets the tint handler.
func createServerLogger(cfg config.LoggingConfig) *slog.Logger {
	level := parseLogLevel(cfg.Level)

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	}))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
