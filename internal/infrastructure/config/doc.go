// Package config provides 12-factor configuration management for the ERP shell.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - API: backend REST endpoint, timeouts, retries, client rate limit
//   - Storage: durable client storage backend (file, sqlite, redis, memory)
//   - Session: request timeout and background validation interval
//   - Modules: manifest directory and backend lookup for the module registry
//   - Shell: local HTTP server settings (port, host)
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting of the shell server
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Backend at %s\n", cfg.API.APIEndpoint())
//
// Environment Variables:
//   - ERP_API_URL, ERP_API_PREFIX, ERP_API_TIMEOUT, ERP_API_RETRY_MAX, ERP_API_RPS
//   - STORAGE_DRIVER, STORAGE_PATH, STORAGE_COMPRESS, STORAGE_REDIS_ADDR
//   - SESSION_REQUEST_TIMEOUT, SESSION_VALIDATE_INTERVAL
//   - MODULES_MANIFEST_DIR, MODULES_BACKEND_LOOKUP
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
