// Package config loads client configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Known OCR methods. "builtin" runs server-side with no external provider.
var validOCRMethods = []string{"builtin", "openai", "gemini", "claude", "openrouter"}

type Config struct {
	// Backend
	APIBaseURL string

	// Request budgets
	HTTPTimeout time.Duration
	OCRTimeout  time.Duration

	// Local store
	DBPath string

	// OCR
	OCRMethod string
	OCRModel  string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		APIBaseURL:  getEnv("TRIPSPEND_API_URL", "http://localhost:3000/api"),
		HTTPTimeout: getEnvDuration("TRIPSPEND_HTTP_TIMEOUT", 30*time.Second),
		OCRTimeout:  getEnvDuration("TRIPSPEND_OCR_TIMEOUT", 90*time.Second),
		DBPath:      getEnv("TRIPSPEND_DB_PATH", defaultDBPath()),
		OCRMethod:   getEnv("TRIPSPEND_OCR_METHOD", "builtin"),
		OCRModel:    getEnv("TRIPSPEND_OCR_MODEL", ""),
		LogLevel:    getEnv("TRIPSPEND_LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.APIBaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid API URL %q: %v", c.APIBaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid API URL scheme %q: must be http or https", u.Scheme))
	} else if u.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid API URL %q: missing host", c.APIBaseURL))
	}

	if c.HTTPTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	} else if c.HTTPTimeout > 5*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid HTTP timeout %v: must be at most 5 minutes", c.HTTPTimeout))
	}

	if c.OCRTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid OCR timeout %v: must be at least 1 second", c.OCRTimeout))
	} else if c.OCRTimeout > 15*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid OCR timeout %v: must be at most 15 minutes", c.OCRTimeout))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}

	validMethod := false
	for _, m := range validOCRMethods {
		if c.OCRMethod == m {
			validMethod = true
			break
		}
	}
	if !validMethod {
		errs = append(errs, fmt.Sprintf("invalid OCR method %q: must be one of %v", c.OCRMethod, validOCRMethods))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q: must be debug, info, warn or error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data/tripspend.db"
	}
	return filepath.Join(home, ".tripspend", "tripspend.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
