// Package config loads client settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/erazemk/resell/internal/logging"
)

// Environment variables read by Load.
const (
	EnvAPIURL    = "RESELL_API_URL"
	EnvSessionDB = "RESELL_SESSION_DB"
	EnvLogLevel  = "RESELL_LOG_LEVEL"
	EnvLogFile   = "RESELL_LOG_FILE"
)

// DefaultAPIURL is used when no backend URL is configured.
const DefaultAPIURL = "http://localhost:8080"

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// Config holds the client settings.
type Config struct {
	APIURL    string
	SessionDB string
	LogLevel  slog.Level
	LogFile   string
}

// Load reads envFile (a missing file is ignored) and the process environment.
// Environment variables take precedence over the file.
func Load(envFile string) (*Config, error) {
	file := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	get := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		if value := file[key]; value != "" {
			return value
		}
		return defaultValue
	}

	sessionDB := get(EnvSessionDB, "")
	if sessionDB == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating config directory: %w", err)
		}
		sessionDB = DefaultSessionPath(dir)
	}

	level, err := logging.ParseLevel(get(EnvLogLevel, "info"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}

	cfg := &Config{
		APIURL:    strings.TrimRight(get(EnvAPIURL, DefaultAPIURL), "/"),
		SessionDB: sessionDB,
		LogLevel:  level,
		LogFile:   get(EnvLogFile, ""),
	}
	if err := ValidateAPIURL(cfg.APIURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultSessionPath returns the session database path under configDir.
func DefaultSessionPath(configDir string) string {
	return filepath.Join(configDir, "resell", "session.sqlite3")
}

// ValidateAPIURL checks that raw is an absolute http(s) URL.
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: must be an absolute http(s) URL", raw)
	}
	return nil
}
