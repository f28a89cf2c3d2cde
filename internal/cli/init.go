// Package cli wires configuration, logging, the local store, the session
// store and the API client together and exposes them as subcommands.
package cli

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"

	"tripspend/internal/config"
	applog "tripspend/internal/log"
	"tripspend/internal/storage"
)

// SetupLogger initializes structured logging at the given level and
// installs it as the process default.
func SetupLogger(level string) *applog.Logger {
	logger := applog.New(applog.ComponentApp, applog.Config{Level: parseLevel(level)})
	applog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it, reporting every problem at once.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitStore opens the local SQLite store at the given path, running
// migrations as needed.
func InitStore(dbPath string, logger *applog.Logger) (*storage.Store, error) {
	return storage.New(dbPath, logger.WithComponent(applog.ComponentStorage))
}
