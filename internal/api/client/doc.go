// Package client is the REST client for the ERP backend.
//
// Every call goes through the same pipeline: circuit breaker admission,
// rate limiter, a resty request over a retrying transport
// (hashicorp/go-retryablehttp), then metrics. The bearer token is pulled
// from a TokenSource on each call so a logout takes effect immediately.
//
// Endpoint groups:
//   - auth: Login, Validate, Logout, Health
//   - modules: ModuleTree, ListModules, GetModule, Create/Update/DeleteModule
//   - apps: ListApps, GetApp, AppRoutes, Activate/DeactivateApp, RediscoverApps
//   - resources: Company, Ranges, MaterialGroups, Materials, Suppliers (plus
//     addresses and contacts), Deposits, Positions, Users, Logs
//
// Non-2xx answers surface as *APIError. Login and Validate decode their
// expected rejection statuses instead, since those are answers, not errors.
//
// Example Usage:
//
//	c := client.New(cfg.API, client.WithLogger(log), client.WithMetrics(m))
//	materials, err := c.Materials().List(ctx, map[string]string{"q": "steel"})
package client
