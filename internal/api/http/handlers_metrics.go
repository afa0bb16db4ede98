package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
)

// MetricsSnapshot is the JSON view of the shell's metrics.
type MetricsSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Counters  monitoring.Snapshot `json:"counters"`
	Summary   MetricsSummary      `json:"summary"`
}

// MetricsSummary provides high-level metrics.
type MetricsSummary struct {
	ErrorRate      float64  `json:"error_rate"`
	APIFailureRate float64  `json:"api_failure_rate"`
	Breaker        string   `json:"breaker"`
	LoadedModules  []string `json:"loaded_modules"`
	UptimeSeconds  float64  `json:"uptime_seconds"`
}

// MetricsJSON returns the counters in JSON for dashboards without a
// Prometheus scraper.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	counters := h.metrics.Snapshot()

	c.JSON(http.StatusOK, MetricsSnapshot{
		Timestamp: time.Now(),
		Counters:  counters,
		Summary: MetricsSummary{
			ErrorRate:      ratio(counters.TotalErrors, counters.TotalRequests),
			APIFailureRate: ratio(counters.APIFailures, counters.APICalls),
			Breaker:        h.backend.BreakerState().String(),
			LoadedModules:  h.shell.Registry().ListResolved(),
			UptimeSeconds:  time.Since(h.started).Seconds(),
		},
	})
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
