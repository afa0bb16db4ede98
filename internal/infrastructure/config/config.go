package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig
	Storage   StorageConfig
	Session   SessionConfig
	Modules   ModulesConfig
	Shell     ShellConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// APIConfig holds backend REST API settings.
type APIConfig struct {
	BaseURL    string        `envconfig:"ERP_API_URL" default:"http://localhost:3000"`
	Prefix     string        `envconfig:"ERP_API_PREFIX" default:"/api/v1"`
	Timeout    time.Duration `envconfig:"ERP_API_TIMEOUT" default:"30s"`
	RetryMax   int           `envconfig:"ERP_API_RETRY_MAX" default:"3"`
	RateLimit  float64       `envconfig:"ERP_API_RPS" default:"0"`
	UserAgent  string        `envconfig:"ERP_API_USER_AGENT" default:"erpshell/1.0"`
	BreakerMax uint32        `envconfig:"ERP_API_BREAKER_FAILURES" default:"10"`
}

// StorageConfig selects the durable client storage backend.
type StorageConfig struct {
	Driver    string `envconfig:"STORAGE_DRIVER" default:"file"` // file, sqlite, redis, memory
	Path      string `envconfig:"STORAGE_PATH" default:".erpshell"`
	Compress  bool   `envconfig:"STORAGE_COMPRESS" default:"false"`
	RedisAddr string `envconfig:"STORAGE_REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"STORAGE_REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"STORAGE_KEY_PREFIX" default:"erpshell:"`
}

// SessionConfig holds session store timing.
type SessionConfig struct {
	RequestTimeout   time.Duration `envconfig:"SESSION_REQUEST_TIMEOUT" default:"15s"`
	ValidateInterval time.Duration `envconfig:"SESSION_VALIDATE_INTERVAL" default:"5m"`
}

// ModulesConfig holds module registry settings.
type ModulesConfig struct {
	ManifestDir    string `envconfig:"MODULES_MANIFEST_DIR" default:"modules"`
	BackendLookup  bool   `envconfig:"MODULES_BACKEND_LOOKUP" default:"true"`
	BuiltinCatalog bool   `envconfig:"MODULES_BUILTIN" default:"true"`
}

// ShellConfig holds the local shell HTTP server settings.
type ShellConfig struct {
	Port         string   `envconfig:"PORT" default:"8000"`
	Host         string   `envconfig:"HOST" default:"127.0.0.1"`
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration for the shell server.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:3000",
			Prefix:     "/api/v1",
			Timeout:    30 * time.Second,
			RetryMax:   3,
			RateLimit:  0,
			UserAgent:  "erpshell/1.0",
			BreakerMax: 10,
		},
		Storage: StorageConfig{
			Driver:    "file",
			Path:      ".erpshell",
			RedisAddr: "localhost:6379",
			KeyPrefix: "erpshell:",
		},
		Session: SessionConfig{
			RequestTimeout:   15 * time.Second,
			ValidateInterval: 5 * time.Minute,
		},
		Modules: ModulesConfig{
			ManifestDir:    "modules",
			BackendLookup:  true,
			BuiltinCatalog: true,
		},
		Shell: ShellConfig{
			Port:         "8000",
			Host:         "127.0.0.1",
			AllowOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address of the shell server.
func (c ShellConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// APIEndpoint returns the base URL joined with the versioned prefix.
func (c APIConfig) APIEndpoint() string {
	return c.BaseURL + c.Prefix
}
