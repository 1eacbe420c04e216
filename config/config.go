package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	StockAPI    StockAPIConfig    `mapstructure:"stockapi"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Session     SessionConfig     `mapstructure:"session"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StockAPIConfig holds stock API configuration
type StockAPIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Token             string        `mapstructure:"token"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// StorageConfig holds durable storage configuration
type StorageConfig struct {
	Type          string `mapstructure:"type"` // "sqlite" or "memory"
	Path          string `mapstructure:"path"`
	SchemaVersion string `mapstructure:"schema_version"`
}

// PersistenceConfig holds recent-search configuration
type PersistenceConfig struct {
	MaxRecent int `mapstructure:"max_recent"`
	FeedLimit int `mapstructure:"feed_limit"`
}

// SessionConfig holds session-scoped value configuration
type SessionConfig struct {
	ZipTTL time.Duration `mapstructure:"zip_ttl"`
}

// CacheConfig holds lookup cache configuration
type CacheConfig struct {
	LookupTTL time.Duration `mapstructure:"lookup_ttl"` // 0 disables
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/stocklens/")

	// Environment variable settings, e.g. STOCKLENS_STOCKAPI_TOKEN
	v.SetEnvPrefix("STOCKLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Stock API defaults
	v.SetDefault("stockapi.base_url", "https://api.snormax.com")
	v.SetDefault("stockapi.token", "")
	v.SetDefault("stockapi.timeout", "30s")
	v.SetDefault("stockapi.requests_per_second", 5)

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.path", "data/stocklens.db")
	v.SetDefault("storage.schema_version", "v0")

	// Recent searches
	v.SetDefault("persistence.max_recent", 100)
	v.SetDefault("persistence.feed_limit", 8)

	// Session and lookup cache
	v.SetDefault("session.zip_ttl", "24h")
	v.SetDefault("cache.lookup_ttl", "2m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Storage.Type != "sqlite" && config.Storage.Type != "memory" {
		return fmt.Errorf("storage type must be 'sqlite' or 'memory', got: %s", config.Storage.Type)
	}

	if config.Storage.Type == "sqlite" && config.Storage.Path == "" {
		return fmt.Errorf("storage path is required when storage type is 'sqlite'")
	}

	if config.Storage.SchemaVersion == "" {
		return fmt.Errorf("storage schema version is required")
	}

	if config.Persistence.MaxRecent <= 0 {
		return fmt.Errorf("persistence max_recent must be positive, got: %d", config.Persistence.MaxRecent)
	}

	if config.Persistence.FeedLimit <= 0 {
		return fmt.Errorf("persistence feed_limit must be positive, got: %d", config.Persistence.FeedLimit)
	}

	if config.StockAPI.BaseURL == "" {
		return fmt.Errorf("stock API base URL is required (set STOCKLENS_STOCKAPI_BASE_URL)")
	}

	if config.Cache.LookupTTL < 0 {
		return fmt.Errorf("cache lookup_ttl must not be negative, got: %s", config.Cache.LookupTTL)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
