package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the shell runtime.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Shell HTTP surface
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Outbound backend calls
	APICalls    *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec

	// Tabs store
	TabsOpen      prometheus.Gauge
	TabOperations *prometheus.CounterVec

	// Session store
	LoginOutcomes     *prometheus.CounterVec
	Validations       *prometheus.CounterVec
	SessionAuthorized prometheus.Gauge

	// Module registry
	ModuleResolutions *prometheus.CounterVec
	ModuleCacheSize   prometheus.Gauge

	// Storage
	StorageWrites *prometheus.CounterVec

	// WebSocket subscribers
	WSConnections prometheus.Gauge

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON health endpoint.
type Snapshot struct {
	TotalRequests  int64 `json:"total_requests"`
	TotalErrors    int64 `json:"total_errors"`
	APICalls       int64 `json:"api_calls"`
	APIFailures    int64 `json:"api_failures"`
	OpenTabs       int64 `json:"open_tabs"`
	ResolvedCached int64 `json:"resolved_modules"`
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpshell_http_requests_total",
				Help: "Total number of shell HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "erpshell_http_request_duration_seconds",
				Help:    "Shell HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		APICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpshell_api_calls_total",
				Help: "Total number of backend API calls",
			},
			[]string{"method", "endpoint", "status"},
		),
		APIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "erpshell_api_call_duration_seconds",
				Help:    "Backend API call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		TabsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "erpshell_tabs_open",
				Help: "Number of open tabs including home",
			},
		),
		TabOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpshell_tab_operations_total",
				Help: "Tab store operations by kind",
			},
			[]string{"operation"},
		),
		LoginOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpshell_login_outcomes_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpshell_session_validations_total",
				Help: "Session validations by result",
			},
			[]string{"result"},
		),
		SessionAuthorized: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "erpshell_session_authenticated",
				Help: "1 when a session is authenticated",
			},
		),
		ModuleResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpshell_module_resolutions_total",
				Help: "Module loads by result (loaded, not_found, cached)",
			},
			[]string{"result"},
		),
		ModuleCacheSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "erpshell_module_cache_size",
				Help: "Number of cached module resolutions",
			},
		),
		StorageWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpshell_storage_writes_total",
				Help: "Durable storage writes by namespace and status",
			},
			[]string{"namespace", "status"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "erpshell_ws_connections",
				Help: "Number of connected shell WebSocket clients",
			},
		),
	}
}

// RecordHTTPRequest records a shell HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordAPICall records an outbound backend call.
func (m *Metrics) RecordAPICall(method, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.APICalls.WithLabelValues(method, endpoint, status).Inc()
	m.APIDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.APICalls++
	if status == "error" || (status != "" && status[0] == '5') {
		m.snapshot.APIFailures++
	}
	m.mu.Unlock()
}

// RecordTabOperation counts a tab mutation and updates the open-tabs gauge.
func (m *Metrics) RecordTabOperation(op string, open int) {
	if m == nil {
		return
	}
	m.TabOperations.WithLabelValues(op).Inc()
	m.TabsOpen.Set(float64(open))

	m.mu.Lock()
	m.snapshot.OpenTabs = int64(open)
	m.mu.Unlock()
}

// RecordLogin counts a login outcome (success, conflict, failure, error).
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginOutcomes.WithLabelValues(outcome).Inc()
}

// RecordValidation counts a session validation result.
func (m *Metrics) RecordValidation(result string) {
	if m == nil {
		return
	}
	m.Validations.WithLabelValues(result).Inc()
}

// SetAuthenticated mirrors the session flag.
func (m *Metrics) SetAuthenticated(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.SessionAuthorized.Set(1)
	} else {
		m.SessionAuthorized.Set(0)
	}
}

// RecordModuleResolution counts a module load and updates the cache gauge.
func (m *Metrics) RecordModuleResolution(result string, cached int) {
	if m == nil {
		return
	}
	m.ModuleResolutions.WithLabelValues(result).Inc()
	m.ModuleCacheSize.Set(float64(cached))

	m.mu.Lock()
	m.snapshot.ResolvedCached = int64(cached)
	m.mu.Unlock()
}

// SetModuleCacheSize updates the cache gauge after an eviction.
func (m *Metrics) SetModuleCacheSize(cached int) {
	if m == nil {
		return
	}
	m.ModuleCacheSize.Set(float64(cached))

	m.mu.Lock()
	m.snapshot.ResolvedCached = int64(cached)
	m.mu.Unlock()
}

// RecordStorageWrite counts a persisted snapshot.
func (m *Metrics) RecordStorageWrite(namespace string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StorageWrites.WithLabelValues(namespace, status).Inc()
}

// IncWSConnections increments WebSocket connections.
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections.
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
