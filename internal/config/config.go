package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultServerURL is the inventory API the client ships pointed at.
const DefaultServerURL = "https://novenosis.xyz:3017"

// Config holds all client configuration.
type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig describes the remote inventory API.
type ServerConfig struct {
	URL     string        // base URL without trailing slash
	Timeout time.Duration // per-request HTTP timeout; zero means none
}

// SessionConfig locates the device-local session database.
type SessionConfig struct {
	DBPath string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level zapcore.Level
}

// UploadsBase is the prefix image file names are resolved against.
func (s ServerConfig) UploadsBase() string { return s.URL + "/uploads/" }

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg := &Config{
		Server: ServerConfig{
			URL: strings.TrimRight(getEnv("FERRETERIA_SERVER_URL", DefaultServerURL), "/"),
		},
		Session: SessionConfig{
			DBPath: getEnv("FERRETERIA_SESSION_DB", filepath.Join(home, ".ferreteria", "session.db")),
		},
	}

	u, err := url.Parse(cfg.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid FERRETERIA_SERVER_URL %q: must be an absolute http(s) URL", cfg.Server.URL)
	}

	if cfg.Server.Timeout, err = getEnvDuration("FERRETERIA_HTTP_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.Server.Timeout < 0 {
		return nil, fmt.Errorf("FERRETERIA_HTTP_TIMEOUT must not be negative")
	}

	lvl, err := zapcore.ParseLevel(getEnv("FERRETERIA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid FERRETERIA_LOG_LEVEL: %w", err)
	}
	cfg.Log.Level = lvl

	if strings.TrimSpace(cfg.Session.DBPath) == "" {
		return nil, fmt.Errorf("FERRETERIA_SESSION_DB must not be empty")
	}
	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	var secs int
	if _, err := fmt.Sscanf(value, "%d", &secs); err != nil || fmt.Sprint(secs) != value {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, value)
	}
	return time.Duration(secs) * time.Second, nil
}

// String returns a one-line summary of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: %s, Timeout: %s, SessionDB: %s, Log: %s}",
		c.Server.URL, c.Server.Timeout, c.Session.DBPath, c.Log.Level)
}
