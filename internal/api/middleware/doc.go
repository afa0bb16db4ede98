// Package middleware provides the HTTP middleware of the shell server.
//
// Middleware stack includes:
//   - CORS: cross-origin access for the browser shell
//   - RateLimit: per-IP token bucket with idle client eviction
//   - RequestID: X-Request-ID propagation
//   - Logger: one zap line per request
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(log))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
