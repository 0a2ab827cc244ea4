// Package config loads Connect server configuration from command-line flags,
// environment variables and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Database    DatabaseConfig
	Server      ServerConfig
	Suggestions SuggestionsConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json, pretty, or empty to derive from the environment
}

// DatabaseConfig selects and locates the storage backend.
type DatabaseConfig struct {
	Backend string // sqlite (default) or badger
	Path    string // SQLite file or Badger directory
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default 8080
	ReadTimeout  time.Duration // default 15s
	WriteTimeout time.Duration // default 30s
	IdleTimeout  time.Duration // default 60s
}

// SuggestionsConfig holds defaults for the suggestion endpoints.
type SuggestionsConfig struct {
	DefaultLimit          int
	DefaultLimitPerDomain int
	// TaxonomyFile is an optional YAML domain table. Empty means the built-in table.
	TaxonomyFile string
	// WatchTaxonomy reloads TaxonomyFile when it changes on disk.
	WatchTaxonomy bool
}

// RateLimitConfig bounds suggestion requests per client IP.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

// CORSConfig holds cross-origin settings for the HTTP API.
type CORSConfig struct {
	AllowedOrigins []string
}

// flags holds the raw command-line values. Empty means "not given".
type flags struct {
	env                   string
	logLevel              string
	logFormat             string
	dbBackend             string
	dbPath                string
	port                  string
	readTimeout           string
	writeTimeout          string
	idleTimeout           string
	defaultLimit          string
	defaultLimitPerDomain string
	taxonomyFile          string
	watchTaxonomy         string
	rateLimitEnabled      string
	rateLimitRPM          string
	rateLimitBurst        string
	corsOrigins           string
	envFile               string
}

func registerFlags(fs *flag.FlagSet) *flags {
	f := &flags{}
	fs.StringVar(&f.env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format (json, pretty)")
	fs.StringVar(&f.dbBackend, "db-backend", "", "Storage backend (sqlite, badger)")
	fs.StringVar(&f.dbPath, "db-path", "", "SQLite file or Badger directory")
	fs.StringVar(&f.port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&f.readTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&f.writeTimeout, "write-timeout", "", "HTTP write timeout (default: 30s)")
	fs.StringVar(&f.idleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&f.defaultLimit, "suggestions-limit", "", "Default number of suggestions (default: 10)")
	fs.StringVar(&f.defaultLimitPerDomain, "suggestions-limit-per-domain", "", "Default suggestions per domain (default: 5)")
	fs.StringVar(&f.taxonomyFile, "taxonomy-file", "", "YAML domain taxonomy (default: built-in)")
	fs.StringVar(&f.watchTaxonomy, "taxonomy-watch", "", "Reload the taxonomy file on change (default: false)")
	fs.StringVar(&f.rateLimitEnabled, "rate-limit", "", "Rate limit suggestion endpoints (default: true)")
	fs.StringVar(&f.rateLimitRPM, "rate-limit-rpm", "", "Suggestion requests per minute per IP (default: 60)")
	fs.StringVar(&f.rateLimitBurst, "rate-limit-burst", "", "Rate limit burst (default: 10)")
	fs.StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated allowed origins (default: *)")
	fs.StringVar(&f.envFile, "env-file", ".env", "Path to .env file")
	return f
}

// Load builds the configuration with precedence:
// 1. Command-line flags in args (highest priority).
// 2. Environment variables.
// 3. The .env file named by -env-file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	f := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", f.envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(f.logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(f.logFormat, "LOG_FORMAT", ""),
		},
		Database: DatabaseConfig{
			Backend: strings.ToLower(getConfigValue(f.dbBackend, "DB_BACKEND", BackendSQLite)),
			Path:    getConfigValue(f.dbPath, "DB_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(f.port, "SERVER_PORT", "8080"),
		},
		Suggestions: SuggestionsConfig{
			TaxonomyFile:  getConfigValue(f.taxonomyFile, "TAXONOMY_FILE", ""),
			WatchTaxonomy: getBoolConfigValue(f.watchTaxonomy, "TAXONOMY_WATCH", false),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolConfigValue(f.rateLimitEnabled, "RATE_LIMIT_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getConfigValue(f.corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	var err error
	durations := []struct {
		dst        *time.Duration
		flag, key  string
		defaultVal string
	}{
		{&cfg.Server.ReadTimeout, f.readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, f.writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"},
		{&cfg.Server.IdleTimeout, f.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
	}
	for _, d := range durations {
		if *d.dst, err = getDurationConfigValue(d.flag, d.key, d.defaultVal); err != nil {
			return nil, err
		}
	}

	ints := []struct {
		dst        *int
		flag, key  string
		defaultVal int
	}{
		{&cfg.Suggestions.DefaultLimit, f.defaultLimit, "SUGGESTIONS_DEFAULT_LIMIT", 10},
		{&cfg.Suggestions.DefaultLimitPerDomain, f.defaultLimitPerDomain, "SUGGESTIONS_DEFAULT_LIMIT_PER_DOMAIN", 5},
		{&cfg.RateLimit.RequestsPerMinute, f.rateLimitRPM, "RATE_LIMIT_RPM", 60},
		{&cfg.RateLimit.Burst, f.rateLimitBurst, "RATE_LIMIT_BURST", 10},
	}
	for _, i := range ints {
		if *i.dst, err = getIntConfigValue(i.flag, i.key, i.defaultVal); err != nil {
			return nil, err
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %q (must be json or pretty)", c.Logger.Format)
	}

	switch c.Database.Backend {
	case BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("invalid database backend: %q (must be sqlite or badger)", c.Database.Backend)
	}
	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	if c.Suggestions.DefaultLimit < 1 {
		return fmt.Errorf("suggestions default limit must be positive, got %d", c.Suggestions.DefaultLimit)
	}
	if c.Suggestions.DefaultLimitPerDomain < 1 {
		return fmt.Errorf("suggestions default limit per domain must be positive, got %d", c.Suggestions.DefaultLimitPerDomain)
	}
	if c.Suggestions.WatchTaxonomy && c.Suggestions.TaxonomyFile == "" {
		return errors.New("taxonomy watch requires a taxonomy file")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute < 1 || c.RateLimit.Burst < 1) {
		return errors.New("rate limit requests per minute and burst must be positive")
	}

	return nil
}

// expandPaths resolves ~ and relative paths, and fills the default database path.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	defaultDB := filepath.Join(homeDir, "Connect", "connect.db")
	if c.Database.Backend == BackendBadger {
		defaultDB = filepath.Join(homeDir, "Connect", "badger")
	}
	if c.Database.Path, err = expandPath(c.Database.Path, defaultDB); err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}

	if c.Suggestions.TaxonomyFile != "" {
		if c.Suggestions.TaxonomyFile, err = expandPath(c.Suggestions.TaxonomyFile, ""); err != nil {
			return fmt.Errorf("invalid taxonomy file: %w", err)
		}
	}
	return nil
}

// expandPath expands ~ and makes path absolute. An empty path yields defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return n, nil
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
