package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/api/client"
	"github.com/GriffinCanCode/erpshell/internal/domain/session"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
	"github.com/GriffinCanCode/erpshell/internal/shell"
)

// Version is reported by the root and health endpoints.
const Version = "1.0.0"

// Backend is the part of the REST client the handlers report on.
type Backend interface {
	Health(ctx context.Context) (*client.HealthResponse, error)
	BreakerState() resilience.State
}

// Handlers contains all HTTP handlers of the shell server.
type Handlers struct {
	session *session.Store
	shell   *shell.Shell
	backend Backend
	metrics *monitoring.Metrics
	log     *zap.Logger
	started time.Time
}

// NewHandlers creates a new handler set.
func NewHandlers(sess *session.Store, sh *shell.Shell, backend Backend, metrics *monitoring.Metrics, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		session: sess,
		shell:   sh,
		backend: backend,
		metrics: metrics,
		log:     log,
		started: time.Now(),
	}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "ERP Shell",
		"version": Version,
	})
}

// Health reports the shell and, briefly, the backend it talks to.
func (h *Handlers) Health(c *gin.Context) {
	backend := gin.H{"breaker": h.backend.BreakerState().String()}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if resp, err := h.backend.Health(ctx); err != nil {
		backend["reachable"] = false
		backend["error"] = err.Error()
	} else {
		backend["reachable"] = true
		backend["status"] = resp.Status
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"version":        Version,
		"uptime_seconds": time.Since(h.started).Seconds(),
		"authenticated":  h.session.IsAuthenticated(),
		"open_tabs":      len(h.shell.State().Tabs),
		"loaded_modules": len(h.shell.Registry().ListResolved()),
		"backend":        backend,
	})
}

// respondError maps domain errors onto status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var apiErr *client.APIError

	switch {
	case errors.Is(err, shell.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, shell.ErrUnknownAction):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidConflictAction), utils.IsValidationError(err):
		status = http.StatusBadRequest
	case errors.Is(err, client.ErrCircuitOpen):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
