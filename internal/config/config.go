// Package config loads bookshelf configuration from flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	BooksAPI BooksAPIConfig
	Store    StoreConfig
	Server   ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// BooksAPIConfig describes the external books resource.
type BooksAPIConfig struct {
	BaseURL string        // default: http://localhost:3001
	Timeout time.Duration // per request; 0 disables (default: 30s)
	RPS     float64       // outbound requests per second; 0 disables limiting
	Burst   int           // default: 5
}

// StoreConfig holds book store behaviour.
type StoreConfig struct {
	// DedupeInterval suppresses repeated implicit loads inside the window.
	// Mutations always revalidate regardless of it.
	DedupeInterval time.Duration
}

// ServerConfig holds the console API server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// flags holds the raw command-line values. Empty means "not given".
type flags struct {
	env      string
	logLevel string
	envFile  string

	booksURL       string
	booksTimeout   string
	booksRPS       string
	booksBurst     string
	dedupeInterval string

	port           string
	readTimeout    string
	writeTimeout   string
	idleTimeout    string
	allowedOrigins string
	rateLimitRPS   string
	rateLimitBurst string
}

func registerFlags(fs *flag.FlagSet) *flags {
	f := &flags{}
	fs.StringVar(&f.env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.envFile, "env-file", ".env", "Path to .env file")

	fs.StringVar(&f.booksURL, "books-url", "", "Base URL of the books service (default: http://localhost:3001)")
	fs.StringVar(&f.booksTimeout, "books-timeout", "", "Books service request timeout (default: 30s)")
	fs.StringVar(&f.booksRPS, "books-rps", "", "Outbound requests per second to the books service (default: unlimited)")
	fs.StringVar(&f.booksBurst, "books-burst", "", "Outbound request burst (default: 5)")
	fs.StringVar(&f.dedupeInterval, "dedupe-interval", "", "Window in which repeated loads reuse the cache (default: 2s)")

	fs.StringVar(&f.port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&f.readTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&f.writeTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	fs.StringVar(&f.idleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&f.allowedOrigins, "cors-origins", "", "Comma separated CORS origins (default: *)")
	fs.StringVar(&f.rateLimitRPS, "rate-limit-rps", "", "Inbound requests per second per client (default: 10)")
	fs.StringVar(&f.rateLimitBurst, "rate-limit-burst", "", "Inbound burst per client (default: 20)")
	return f
}

// LoadConfig loads configuration from the process command line.
func LoadConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load parses args into fs and builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	f := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv.Load never overrides variables that are already set.
	// A missing file is fine.
	if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", f.envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(f.logLevel, "LOG_LEVEL", "info"),
		},
		BooksAPI: BooksAPIConfig{
			BaseURL: strings.TrimRight(getConfigValue(f.booksURL, "BOOKS_API_URL", "http://localhost:3001"), "/"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(f.port, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(f.allowedOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	var err error
	if cfg.BooksAPI.Timeout, err = getDurationConfigValue(f.booksTimeout, "BOOKS_API_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.BooksAPI.RPS, err = getFloatConfigValue(f.booksRPS, "BOOKS_API_RPS", 0); err != nil {
		return nil, err
	}
	if cfg.BooksAPI.Burst, err = getIntConfigValue(f.booksBurst, "BOOKS_API_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.Store.DedupeInterval, err = getDurationConfigValue(f.dedupeInterval, "BOOKS_DEDUPE_INTERVAL", "2s"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(f.readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(f.writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(f.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Server.RateLimitRPS, err = getFloatConfigValue(f.rateLimitRPS, "API_RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.Server.RateLimitBurst, err = getIntConfigValue(f.rateLimitBurst, "API_RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	u, err := url.Parse(c.BooksAPI.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid books api url: %q", c.BooksAPI.BaseURL)
	}

	if c.BooksAPI.Timeout < 0 {
		return errors.New("books api timeout cannot be negative")
	}
	if c.BooksAPI.RPS < 0 {
		return errors.New("books api rps cannot be negative")
	}
	if c.BooksAPI.RPS > 0 && c.BooksAPI.Burst < 1 {
		return errors.New("books api burst must be at least 1 when rps is set")
	}
	if c.Store.DedupeInterval < 0 {
		return errors.New("dedupe interval cannot be negative")
	}

	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return errors.New("rate limit values cannot be negative")
	}

	return nil
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

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, raw, err)
	}
	return d, nil
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, raw, err)
	}
	return v, nil
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) (float64, error) {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, raw, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
