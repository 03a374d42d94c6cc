package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the loader reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL",
		"BOOKS_API_URL", "BOOKS_API_TIMEOUT", "BOOKS_API_RPS", "BOOKS_API_BURST",
		"BOOKS_DEDUPE_INTERVAL",
		"SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	missing := filepath.Join(t.TempDir(), "missing.env")
	return Load(flag.NewFlagSet("test", flag.ContinueOnError), append([]string{"-env-file", missing}, args...))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "http://localhost:3001", cfg.BooksAPI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.BooksAPI.Timeout)
	assert.Zero(t, cfg.BooksAPI.RPS)
	assert.Equal(t, 5, cfg.BooksAPI.Burst)
	assert.Equal(t, 2*time.Second, cfg.Store.DedupeInterval)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOKS_API_URL", "http://env-host:3001")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := load(t, "-books-url", "http://flag-host:4000/")
	require.NoError(t, err)

	assert.Equal(t, "http://flag-host:4000", cfg.BooksAPI.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nBOOKS_API_URL=\"http://file-host:3001\"\nLOG_LEVEL=debug\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-env-file", envFile})
	require.NoError(t, err)

	assert.Equal(t, "http://file-host:3001", cfg.BooksAPI.BaseURL)
	assert.Equal(t, "warn", cfg.Logger.Level, "environment wins over .env")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"BOOKS_API_TIMEOUT": "soon"}},
		{"bad rps", map[string]string{"BOOKS_API_RPS": "fast"}},
		{"bad burst", map[string]string{"BOOKS_API_BURST": "1.5"}},
		{"bad url scheme", map[string]string{"BOOKS_API_URL": "ftp://host"}},
		{"missing host", map[string]string{"BOOKS_API_URL": "http://"}},
		{"bad environment", map[string]string{"ENV": "test"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"negative dedupe", map[string]string{"BOOKS_DEDUPE_INTERVAL": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load(t)
			assert.Error(t, err)
		})
	}
}

func TestValidate_BurstRequiredWithRPS(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Environment: "production"},
		Logger:   LoggerConfig{Level: "error"},
		BooksAPI: BooksAPIConfig{BaseURL: "https://books.example.com", RPS: 2, Burst: 0},
		Server:   ServerConfig{Port: "8080"},
	}

	assert.Error(t, cfg.Validate())

	cfg.BooksAPI.Burst = 1
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Environment: "staging"},
		Logger:   LoggerConfig{Level: "DEBUG"},
		BooksAPI: BooksAPIConfig{BaseURL: "http://localhost:3001"},
		Server:   ServerConfig{Port: "8080"},
	}

	assert.NoError(t, cfg.Validate())
}
