package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/api/client"
	"github.com/GriffinCanCode/erpshell/internal/domain/registry"
	"github.com/GriffinCanCode/erpshell/internal/domain/session"
	"github.com/GriffinCanCode/erpshell/internal/domain/tabs"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/logging"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/erpshell/internal/shell"
)

// Runtime holds the wired shell components. The CLI commands, the terminal
// UI and the HTTP server all run on top of one.
type Runtime struct {
	Config   *config.Config
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
	Gatherer prometheus.Gatherer
	Storage  storage.Store
	API      *client.Client
	Session  *session.Store
	Tabs     *tabs.Store
	Catalog  *registry.Catalog
	Modules  *registry.Registry
	Shell    *shell.Shell
}

// RuntimeOption configures NewRuntime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	logger  *logging.Logger
	storage storage.Store
}

// WithLogger replaces the logger built from the LOG_* settings.
func WithLogger(l *logging.Logger) RuntimeOption {
	return func(o *runtimeOptions) { o.logger = l }
}

// WithStorage replaces the storage backend selected by the STORAGE_* settings.
func WithStorage(s storage.Store) RuntimeOption {
	return func(o *runtimeOptions) { o.storage = s }
}

// NewRuntime wires storage, the REST client, the three stores and the shell.
func NewRuntime(ctx context.Context, cfg *config.Config, opts ...RuntimeOption) (*Runtime, error) {
	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
	}

	logger.Info("Initializing ERP shell",
		zap.String("api", cfg.API.APIEndpoint()),
		zap.String("storage", cfg.Storage.Driver),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	store := o.storage
	if store == nil {
		var err error
		store, err = storage.Open(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
	}

	api := client.New(cfg.API,
		client.WithLogger(logger.Component("api")),
		client.WithMetrics(metrics),
	)

	sess := session.New(ctx, api, store,
		session.WithLogger(logger.Component("session")),
		session.WithMetrics(metrics),
		session.WithRequestTimeout(cfg.Session.RequestTimeout),
	)
	api.SetTokenSource(sess)

	tabStore := tabs.New(ctx, store,
		tabs.WithLogger(logger.Component("tabs")),
		tabs.WithMetrics(metrics),
	)

	catalog, err := buildCatalog(cfg.Modules, logger)
	if err != nil {
		tabStore.Close()
		sess.Close()
		_ = store.Close()
		return nil, err
	}

	providers := registry.ChainProvider{registry.NewManifestProvider(catalog)}
	if cfg.Modules.BackendLookup {
		providers = append(providers, registry.NewBackendProvider(api))
	}
	modules := registry.New(catalog, providers,
		registry.WithLogger(logger.Component("registry")),
		registry.WithMetrics(metrics),
		registry.WithLoadTimeout(cfg.API.Timeout),
	)

	sh := shell.New(sess, tabStore, modules, shell.WithLogger(logger.Component("shell")))

	logger.Info("ERP shell initialized",
		zap.Int("modules", catalog.Len()),
		zap.Bool("authenticated", sess.IsAuthenticated()),
	)

	return &Runtime{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Gatherer: reg,
		Storage:  store,
		API:      api,
		Session:  sess,
		Tabs:     tabStore,
		Catalog:  catalog,
		Modules:  modules,
		Shell:    sh,
	}, nil
}

func buildCatalog(cfg config.ModulesConfig, logger *logging.Logger) (*registry.Catalog, error) {
	catalog := registry.NewCatalog()
	if cfg.BuiltinCatalog {
		if err := registry.RegisterBuiltins(catalog); err != nil {
			return nil, fmt.Errorf("failed to register builtin modules: %w", err)
		}
	}

	if cfg.ManifestDir != "" {
		res, err := registry.NewSeeder(catalog, cfg.ManifestDir, logger.Component("seeder")).Seed()
		if err != nil {
			logger.Warn("Failed to load module manifests", zap.String("dir", cfg.ManifestDir), zap.Error(err))
		} else if res.Files > 0 {
			logger.Info("Loaded module manifests",
				zap.Int("files", res.Files),
				zap.Int("modules", res.Loaded),
				zap.Int("failed", res.Failed),
			)
		}
	}

	// The Home tab always needs something to mount.
	if _, ok := catalog.Get(registry.HomeKey); !ok {
		if err := catalog.Register(registry.Builtins[0]); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// SyncApps adds the backend's active apps to the catalog. It needs a session
// because the apps registry is an authenticated endpoint.
func (r *Runtime) SyncApps(ctx context.Context) (int, error) {
	if !r.Config.Modules.BackendLookup {
		return 0, nil
	}
	if !r.Session.IsAuthenticated() {
		return 0, shell.ErrNotAuthenticated
	}
	return registry.SyncApps(ctx, r.Catalog, r.API)
}

// Close releases the stores and the storage backend.
func (r *Runtime) Close() error {
	r.Tabs.Close()
	r.Session.Close()
	err := r.Storage.Close()
	_ = r.Logger.Sync()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
