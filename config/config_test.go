package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"STOCKLENS_SERVER_PORT",
	"STOCKLENS_SERVER_ENVIRONMENT",
	"STOCKLENS_SERVER_ALLOWED_ORIGINS",
	"STOCKLENS_STOCKAPI_BASE_URL",
	"STOCKLENS_STOCKAPI_TOKEN",
	"STOCKLENS_STOCKAPI_TIMEOUT",
	"STOCKLENS_STOCKAPI_REQUESTS_PER_SECOND",
	"STOCKLENS_STORAGE_TYPE",
	"STOCKLENS_STORAGE_PATH",
	"STOCKLENS_STORAGE_SCHEMA_VERSION",
	"STOCKLENS_PERSISTENCE_MAX_RECENT",
	"STOCKLENS_PERSISTENCE_FEED_LIMIT",
	"STOCKLENS_SESSION_ZIP_TTL",
	"STOCKLENS_CACHE_LOOKUP_TTL",
}

// isolate runs the test from an empty directory with no STOCKLENS_ variables set
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, name := range configEnvVars {
		t.Setenv(name, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "development", cfg.Server.Environment)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "https://api.snormax.com", cfg.StockAPI.BaseURL)
		assert.Empty(t, cfg.StockAPI.Token)
		assert.Equal(t, 30*time.Second, cfg.StockAPI.Timeout)
		assert.Equal(t, 5.0, cfg.StockAPI.RequestsPerSecond)
		assert.Equal(t, "sqlite", cfg.Storage.Type)
		assert.Equal(t, "data/stocklens.db", cfg.Storage.Path)
		assert.Equal(t, "v0", cfg.Storage.SchemaVersion)
		assert.Equal(t, 100, cfg.Persistence.MaxRecent)
		assert.Equal(t, 8, cfg.Persistence.FeedLimit)
		assert.Equal(t, 24*time.Hour, cfg.Session.ZipTTL)
		assert.Equal(t, 2*time.Minute, cfg.Cache.LookupTTL)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		isolate(t)
		t.Setenv("STOCKLENS_SERVER_PORT", "9090")
		t.Setenv("STOCKLENS_SERVER_ENVIRONMENT", "production")
		t.Setenv("STOCKLENS_STOCKAPI_BASE_URL", "https://stock.example.com")
		t.Setenv("STOCKLENS_STOCKAPI_TOKEN", "secret")
		t.Setenv("STOCKLENS_STOCKAPI_TIMEOUT", "5s")
		t.Setenv("STOCKLENS_STORAGE_TYPE", "memory")
		t.Setenv("STOCKLENS_PERSISTENCE_MAX_RECENT", "20")
		t.Setenv("STOCKLENS_CACHE_LOOKUP_TTL", "0s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "https://stock.example.com", cfg.StockAPI.BaseURL)
		assert.Equal(t, "secret", cfg.StockAPI.Token)
		assert.Equal(t, 5*time.Second, cfg.StockAPI.Timeout)
		assert.Equal(t, "memory", cfg.Storage.Type)
		assert.Equal(t, 20, cfg.Persistence.MaxRecent)
		assert.Equal(t, time.Duration(0), cfg.Cache.LookupTTL)
	})

	t.Run("reads config.yaml", func(t *testing.T) {
		isolate(t)
		yaml := `
server:
  port: "7070"
  allowed_origins:
    - https://stock.example.com
storage:
  type: memory
persistence:
  feed_limit: 3
`
		require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "7070", cfg.Server.Port)
		assert.Equal(t, []string{"https://stock.example.com"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "memory", cfg.Storage.Type)
		assert.Equal(t, 3, cfg.Persistence.FeedLimit)
		assert.Equal(t, 100, cfg.Persistence.MaxRecent)
	})

	t.Run("environment overrides config.yaml", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.WriteFile("config.yaml", []byte("server:\n  port: \"7070\"\n"), 0644))
		t.Setenv("STOCKLENS_SERVER_PORT", "6060")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "6060", cfg.Server.Port)
	})

	t.Run("reads .env", func(t *testing.T) {
		isolate(t)
		os.Unsetenv("STOCKLENS_STOCKAPI_TOKEN")
		require.NoError(t, os.WriteFile(".env", []byte("STOCKLENS_STOCKAPI_TOKEN=from-dotenv\n"), 0644))
		t.Cleanup(func() { os.Unsetenv("STOCKLENS_STOCKAPI_TOKEN") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.StockAPI.Token)
	})

	t.Run("fails validation for invalid storage type", func(t *testing.T) {
		isolate(t)
		t.Setenv("STOCKLENS_STORAGE_TYPE", "redis")

		_, err := Load()
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "invalid configuration:"))
	})

	t.Run("fails on malformed config file", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.WriteFile("config.yaml", []byte("server: [unclosed"), 0644))

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		t.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		t.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1

# TEST_COMMENTED=should_not_load
TEST_VAR_2=value2
`
		require.NoError(t, os.WriteFile(".env", []byte(envContent), 0644))
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_COMMENTED")
		t.Cleanup(func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		})

		require.NoError(t, loadEnvFile())

		assert.Equal(t, "value1", os.Getenv("TEST_VAR_1"))
		assert.Equal(t, "value2", os.Getenv("TEST_VAR_2"))
		assert.Empty(t, os.Getenv("TEST_COMMENTED"))
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TEST_OVERRIDE", "existing-value")

		require.NoError(t, os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644))
		require.NoError(t, loadEnvFile())

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		StockAPI:    StockAPIConfig{BaseURL: "https://api.snormax.com"},
		Storage:     StorageConfig{Type: "sqlite", Path: "data/stocklens.db", SchemaVersion: "v0"},
		Persistence: PersistenceConfig{MaxRecent: 100, FeedLimit: 8},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid sqlite config", func(c *Config) {}, false},
		{"valid memory config without path", func(c *Config) { c.Storage.Type = "memory"; c.Storage.Path = "" }, false},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "postgres" }, true},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, true},
		{"empty schema version", func(c *Config) { c.Storage.SchemaVersion = "" }, true},
		{"zero max recent", func(c *Config) { c.Persistence.MaxRecent = 0 }, true},
		{"negative feed limit", func(c *Config) { c.Persistence.FeedLimit = -1 }, true},
		{"missing base url", func(c *Config) { c.StockAPI.BaseURL = "" }, true},
		{"negative lookup ttl", func(c *Config) { c.Cache.LookupTTL = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
