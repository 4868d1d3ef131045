// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Default values.
const (
	DefaultBaseURL       = "https://super-crud.herokuapp.com"
	DefaultTheme         = "classic"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultServerAddr    = "localhost:8080"
	DefaultServerBackend = "sqlite"
	DefaultServerDSN     = "todos.db"
	DefaultEnvFile       = ".env"
)

// Config holds the full configuration for the todos CLI.
type Config struct {
	// Remote store
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`

	// Refetch the whole list after a successful create instead of only
	// appending the created item.
	RefreshOnCreate bool `toml:"refresh_on_create"`

	Theme string `toml:"theme"` // classic, neon, mono

	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`

	// File the config was read from, if any (computed)
	Path string `toml:"-"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json, logfmt
	File   string `toml:"file"`   // TUI log destination; empty discards
}

// ServerConfig configures `todo serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	Backend     string   `toml:"backend"` // sqlite, json
	DSN         string   `toml:"dsn"`
	Token       string   `toml:"token"` // required bearer token when set
	CORSOrigins []string `toml:"cors_origins"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. .env file (does not override variables already set)
// 3. Config file (TOML)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}

	if path := findConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.Path = path
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.BaseURL = DefaultBaseURL
	cfg.Theme = DefaultTheme
	cfg.Log.Level = DefaultLogLevel
	cfg.Log.Format = DefaultLogFormat
	cfg.Server.Addr = DefaultServerAddr
	cfg.Server.Backend = DefaultServerBackend
	cfg.Server.DSN = DefaultServerDSN
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// findConfigFile looks for a config file: $TODOS_CONFIG, then the current
// directory, then the user config dir.
func findConfigFile() string {
	if v := os.Getenv("TODOS_CONFIG"); v != "" {
		return v
	}
	names := []string{"todos.toml", ".todos.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		names = append(names, filepath.Join(dir, "todos", "config.toml"))
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODOS_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TODOS_REFRESH_ON_CREATE"); v != "" {
		cfg.RefreshOnCreate = boolFromString(v)
	}
	if v := os.Getenv("TODOS_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TODOS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TODOS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TODOS_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("TODOS_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TODOS_SERVER_BACKEND"); v != "" {
		cfg.Server.Backend = v
	}
	if v := os.Getenv("TODOS_SERVER_DSN"); v != "" {
		cfg.Server.DSN = v
	}
	if v := os.Getenv("TODOS_SERVER_TOKEN"); v != "" {
		cfg.Server.Token = v
	}
	if v := os.Getenv("TODOS_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitAndTrim(v, ",")
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// splitAndTrim splits a string by sep and trims whitespace from each part.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseFlags defines and parses the global CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Remote to-do store base URL")
	fs.BoolVar(&cfg.RefreshOnCreate, "refresh", cfg.RefreshOnCreate, "Refetch the list after each create")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Color theme (classic|neon|mono)")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "Write logs to this file")
	return fs.Parse(args)
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url is required")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	switch c.Server.Backend {
	case "sqlite", "json":
	default:
		return fmt.Errorf("server.backend: unknown backend %q", c.Server.Backend)
	}
	return nil
}
