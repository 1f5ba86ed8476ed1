package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvAPIBaseURL = "PRICEDESK_API"
	EnvDBPath     = "PRICEDESK_DB"
)

// ServerConfig holds configuration for the pricedesk web admin server.
type ServerConfig struct {
	Addr       string            `yaml:"addr"`         // Listen address (default ":8080")
	LogLevel   string            `yaml:"log_level"`    // Log level: debug, info, warn, error
	LogFormat  string            `yaml:"log_format"`   // Log format: text, json
	DBPath     string            `yaml:"db_path"`      // SQLite database path (default ~/.pricedesk/pricedesk.db, ":memory:" for testing)
	APIBaseURL string            `yaml:"api_base_url"` // Pricing API base URL
	Secure     bool              `yaml:"secure"`       // Mark session cookies Secure (behind HTTPS)
	SessionTTL time.Duration     `yaml:"session_ttl"`  // Browser session lifetime (default 12h)
	Paging     map[string]string `yaml:"paging"`       // Per-resource paging override: client or server
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:       ":8080",
		LogLevel:   "info",
		LogFormat:  "text",
		APIBaseURL: "http://localhost:8000/api",
		SessionTTL: 12 * time.Hour,
	}
}

// ApplyEnv overrides fields from the process environment.
func (c *ServerConfig) ApplyEnv() {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
}

// CLIConfig holds configuration for the pricedesk CLI.
type CLIConfig struct {
	Server    string            `yaml:"server"`     // Pricing API base URL
	LogLevel  string            `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string            `yaml:"log_format"` // Log format: text, json
	Paging    map[string]string `yaml:"paging"`     // Per-resource paging override: client or server
}

// DefaultCLIConfig returns sensible defaults.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Server:    "http://localhost:8000/api",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// ApplyEnv overrides fields from the process environment.
func (c *CLIConfig) ApplyEnv() {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.Server = v
	}
}

// LoadFile merges the YAML file at path into cfg. Fields absent from the
// file keep their current values. An empty path is a no-op.
func LoadFile(path string, cfg any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
