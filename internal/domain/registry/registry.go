package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
)

// DefaultLoadTimeout bounds one module fetch.
const DefaultLoadTimeout = 30 * time.Second

// Registry resolves component keys to lazily loaded modules and caches the
// references for the lifetime of the process. The cache is never persisted.
type Registry struct {
	provider Provider
	catalog  *Catalog
	log      *zap.Logger
	metrics  *monitoring.Metrics
	timeout  time.Duration

	mu    sync.Mutex
	cache map[string]*Lazy
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) { r.log = log }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithLoadTimeout bounds each fetch. Zero keeps the default.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New creates a registry. catalog supplies display metadata for keys that
// have not been loaded yet; provider fetches modules.
func New(catalog *Catalog, provider Provider, opts ...Option) *Registry {
	r := &Registry{
		provider: provider,
		catalog:  catalog,
		log:      zap.NewNop(),
		timeout:  DefaultLoadTimeout,
		cache:    make(map[string]*Lazy),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the display metadata catalog.
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}

// Resolve returns the cached reference for key, creating it on first use.
// Two calls without an intervening Evict return the same pointer. No fetch
// happens until the reference is loaded.
func (r *Registry) Resolve(key string) *Lazy {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lazy, ok := r.cache[key]; ok {
		r.metrics.RecordModuleResolution("cached", len(r.cache))
		return lazy
	}

	lazy := newLazy(key, r.fetch, r.loaded)
	r.cache[key] = lazy
	r.metrics.RecordModuleResolution("new", len(r.cache))
	return lazy
}

// Load resolves and loads key in one step.
func (r *Registry) Load(ctx context.Context, key string) Component {
	return r.Resolve(key).Load(ctx)
}

// Evict drops the named entries, or every entry when no key is given, so the
// next Resolve fetches afresh. It returns the number of entries removed.
func (r *Registry) Evict(keys ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	if len(keys) == 0 {
		removed = len(r.cache)
		r.cache = make(map[string]*Lazy)
	} else {
		for _, key := range keys {
			if _, ok := r.cache[key]; ok {
				delete(r.cache, key)
				removed++
			}
		}
	}

	r.metrics.SetModuleCacheSize(len(r.cache))
	if removed > 0 {
		r.log.Info("module cache evicted", zap.Strings("keys", keys), zap.Int("removed", removed))
	}
	return removed
}

// ListResolved returns the cached keys, sorted.
func (r *Registry) ListResolved() []string {
	r.mu.Lock()
	keys := make([]string, 0, len(r.cache))
	for key := range r.cache {
		keys = append(keys, key)
	}
	r.mu.Unlock()

	sort.Strings(keys)
	return keys
}

func (r *Registry) fetch(ctx context.Context, key string) (Component, error) {
	if err := utils.ValidateComponentKey(key); err != nil {
		return Component{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.provider.Fetch(ctx, key)
}

func (r *Registry) loaded(key string, comp Component, err error) {
	if err != nil {
		r.log.Warn("module load failed, using placeholder", zap.String("key", key), zap.Error(err))
		r.metrics.RecordModuleResolution("placeholder", r.size())
		return
	}
	r.log.Debug("module loaded", zap.String("key", key), zap.String("source", string(comp.Source)))
	r.metrics.RecordModuleResolution("loaded", r.size())
}

func (r *Registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
