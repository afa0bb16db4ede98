package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection.
// The route template is used as the path label to keep cardinality bounded.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a backend call.
type Timer struct {
	start    time.Time
	metrics  *Metrics
	method   string
	endpoint string
}

// NewTimer starts timing a backend call.
func NewTimer(metrics *Metrics, method, endpoint string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		method:   method,
		endpoint: endpoint,
	}
}

// Stop records the duration with the given status.
func (t *Timer) Stop(status string) {
	t.metrics.RecordAPICall(t.method, t.endpoint, status, time.Since(t.start))
}
