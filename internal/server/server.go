package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/erpshell/internal/api/http"
	"github.com/GriffinCanCode/erpshell/internal/api/middleware"
	"github.com/GriffinCanCode/erpshell/internal/api/ws"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Server exposes a Runtime over HTTP and WebSocket.
type Server struct {
	rt     *Runtime
	router *gin.Engine
	log    *zap.Logger
}

// New builds the router for rt.
func New(rt *Runtime) *Server {
	cfg := rt.Config
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	log := rt.Logger.Component("server")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(monitoring.Middleware(rt.Metrics))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Shell.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.Shell.AllowOrigins
	}
	router.Use(middleware.CORS(cors))

	if cfg.RateLimit.Enabled {
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit))
	}

	handlers := apihttp.NewHandlers(rt.Session, rt.Shell, rt.API, rt.Metrics, log)
	stream := ws.NewHandler(rt.Tabs, rt.Session, rt.Metrics, rt.Logger.Component("ws"),
		ws.WithAllowedOrigins(cfg.Shell.AllowOrigins))
	apihttp.Register(router, handlers, stream.HandleConnection, rt.Gatherer)

	log.Info("Server initialized", zap.Int("routes", len(router.Routes())))
	return &Server{rt: rt, router: router, log: log}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.rt.Config.Shell.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests. The session is revalidated in the background for as
// long as the server runs.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.rt.Session.Watch(gctx, s.rt.Config.Session.ValidateInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the runtime.
func (s *Server) Close() error {
	return s.rt.Close()
}
