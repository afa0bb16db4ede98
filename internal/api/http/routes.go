package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts the shell routes on router. stream serves the live-update
// WebSocket; gatherer backs /metrics.
func Register(router gin.IRouter, h *Handlers, stream gin.HandlerFunc, gatherer prometheus.Gatherer) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/metrics/json", h.MetricsJSON)

	// Client logs
	router.POST("/logs", h.StreamLogs)

	// Session
	auth := router.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/session", h.Session)
	auth.POST("/validate", h.Validate)

	// Navigation
	sh := router.Group("/shell")
	sh.GET("/state", h.State)
	sh.GET("/active", h.ActiveModule)
	sh.GET("/modules", h.ListModules)
	sh.GET("/modules/:key", h.GetModule)
	sh.DELETE("/modules/cache", h.EvictModules)
	sh.POST("/tabs", h.OpenTab)
	sh.POST("/tabs/:id/activate", h.ActivateTab)
	sh.POST("/tabs/:id/close-others", h.CloseOthers)
	sh.DELETE("/tabs/:id", h.CloseTab)
	sh.POST("/back", h.Back)
	sh.POST("/keys/:action", h.PerformKey)
	if stream != nil {
		sh.GET("/ws", stream)
	}
}
