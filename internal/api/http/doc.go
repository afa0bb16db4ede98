// Package http exposes the shell to a browser over a gin router.
//
// Session routes live under /auth, navigation under /shell and
// observability at /health, /metrics and /metrics/json. Navigation routes
// answer 401 while no session is active.
package http
