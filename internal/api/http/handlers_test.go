package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/erpshell/internal/api/client"
	"github.com/GriffinCanCode/erpshell/internal/domain/registry"
	"github.com/GriffinCanCode/erpshell/internal/domain/session"
	"github.com/GriffinCanCode/erpshell/internal/domain/tabs"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/shell"
	"github.com/GriffinCanCode/erpshell/internal/testutil"
)

type fixture struct {
	router  *gin.Engine
	session *session.Store
	tabs    *tabs.Store
	backend *testutil.FakeBackend
	metrics *monitoring.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	backend := testutil.NewFakeBackend(t)
	api := client.New(backend.APIConfig(), client.WithMetrics(metrics))

	store := storage.NewMemoryStore()
	sess := session.New(context.Background(), api, store, session.WithMetrics(metrics))
	t.Cleanup(sess.Close)
	api.SetTokenSource(sess)

	tabStore := tabs.New(context.Background(), store, tabs.WithMetrics(metrics))
	t.Cleanup(tabStore.Close)

	catalog := registry.NewCatalog()
	require.NoError(t, registry.RegisterBuiltins(catalog))
	modules := registry.New(catalog, registry.ChainProvider{
		registry.NewManifestProvider(catalog),
		registry.NewBackendProvider(api),
	}, registry.WithMetrics(metrics))

	sh := shell.New(sess, tabStore, modules)
	router := gin.New()
	router.Use(monitoring.Middleware(metrics))
	Register(router, NewHandlers(sess, sh, api, metrics, nil), nil, reg)

	return &fixture{router: router, session: sess, tabs: tabStore, backend: backend, metrics: metrics}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	w := f.do(t, "POST", "/auth/login", LoginRequest{Login: testutil.FakeLogin, Password: testutil.FakePassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	f := setup(t)

	w := f.do(t, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["authenticated"])
	backend := body["backend"].(map[string]any)
	assert.Equal(t, true, backend["reachable"])
	assert.Equal(t, "closed", backend["breaker"])
}

func TestLoginOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		req        LoginRequest
		wantStatus int
		wantKind   string
	}{
		{"success", LoginRequest{Login: "admin", Password: "secret"}, http.StatusOK, "success"},
		{"wrong password", LoginRequest{Login: "admin", Password: "wrong"}, http.StatusUnauthorized, "failure"},
		{"conflict", LoginRequest{Login: "busy", Password: "secret"}, http.StatusConflict, "conflict"},
		{"invalidate previous", LoginRequest{Login: "busy", Password: "secret", ConflictAction: session.ConflictInvalidatePrevious}, http.StatusOK, "success"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			w := f.do(t, "POST", "/auth/login", tt.req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			body := decode[map[string]any](t, w)
			assert.Equal(t, tt.wantKind, body["kind"])
			assert.NotContains(t, body, "token")
			assert.Equal(t, tt.wantKind == "success", f.session.IsAuthenticated())
		})
	}
}

func TestLoginBadRequests(t *testing.T) {
	f := setup(t)

	w := f.do(t, "POST", "/auth/login", map[string]string{"login": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "POST", "/auth/login", LoginRequest{Login: "admin", Password: "secret", ConflictAction: "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	calls := f.backend.Calls.Load()
	w = f.do(t, "POST", "/auth/login", LoginRequest{Login: "no spaces", Password: "secret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "failure", decode[map[string]any](t, w)["kind"])
	assert.Equal(t, calls, f.backend.Calls.Load(), "malformed logins never reach the backend")
}

func TestSessionIsRedacted(t *testing.T) {
	f := setup(t)
	f.login(t)

	w := f.do(t, "GET", "/auth/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[types.SessionState](t, w)
	assert.True(t, state.IsAuthenticated)
	assert.Empty(t, state.Token)
	require.NotNil(t, state.User)
	assert.Equal(t, "admin", state.User.Login)
	assert.NotContains(t, w.Body.String(), testutil.FakeToken)
}

func TestValidateAndLogout(t *testing.T) {
	f := setup(t)
	f.login(t)

	w := f.do(t, "POST", "/auth/validate", nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["valid"])

	f.backend.Revoke()
	w = f.do(t, "POST", "/auth/validate", nil)
	assert.Equal(t, false, decode[map[string]any](t, w)["valid"])
	assert.False(t, f.session.IsAuthenticated())

	f.login(t)
	w = f.do(t, "POST", "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.session.IsAuthenticated())
}

func TestNavigationRequiresSession(t *testing.T) {
	f := setup(t)

	for _, r := range []struct{ method, path string }{
		{"POST", "/shell/tabs"},
		{"POST", "/shell/tabs/home/activate"},
		{"DELETE", "/shell/tabs/home"},
		{"POST", "/shell/tabs/home/close-others"},
		{"POST", "/shell/back"},
		{"POST", "/shell/keys/home"},
	} {
		w := f.do(t, r.method, r.path, OpenTabRequest{ComponentKey: "materials"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
	}

	w := f.do(t, "GET", "/shell/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTabLifecycle(t *testing.T) {
	f := setup(t)
	f.login(t)

	w := f.do(t, "POST", "/shell/tabs", OpenTabRequest{ComponentKey: "materials"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	materials := decode[types.Tab](t, w)
	assert.Equal(t, "Materials", materials.Title)

	w = f.do(t, "POST", "/shell/tabs", OpenTabRequest{ComponentKey: "materials"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, materials.ID, decode[types.Tab](t, w).ID)

	w = f.do(t, "POST", "/shell/tabs", OpenTabRequest{ComponentKey: "suppliers", Params: map[string]any{"id": "7"}})
	require.Equal(t, http.StatusCreated, w.Code)
	suppliers := decode[types.Tab](t, w)

	w = f.do(t, "POST", "/shell/tabs/"+materials.ID+"/activate", nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["success"])

	w = f.do(t, "POST", "/shell/back", nil)
	assert.Equal(t, suppliers.ID, decode[map[string]any](t, w)["activeTabId"])

	w = f.do(t, "POST", "/shell/tabs/"+suppliers.ID+"/close-others", nil)
	state := decode[types.TabsState](t, w)
	assert.Len(t, state.Tabs, 2)

	w = f.do(t, "DELETE", "/shell/tabs/home", nil)
	assert.Equal(t, false, decode[map[string]any](t, w)["success"])

	w = f.do(t, "DELETE", "/shell/tabs/"+suppliers.ID, nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["success"])

	w = f.do(t, "GET", "/shell/state", nil)
	state = decode[types.TabsState](t, w)
	assert.Equal(t, "home", state.ActiveTabID)
	assert.Equal(t, []string{"suppliers", "materials"}, state.RecentApps)
}

func TestOpenTabRejectsBadKey(t *testing.T) {
	f := setup(t)
	f.login(t)

	w := f.do(t, "POST", "/shell/tabs", OpenTabRequest{ComponentKey: "Not A Key"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "POST", "/shell/tabs", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKeys(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.do(t, "POST", "/shell/tabs", OpenTabRequest{ComponentKey: "materials"})

	w := f.do(t, "POST", "/shell/keys/alt+w", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[shell.Result](t, w)
	assert.Equal(t, shell.ActionCloseTab, res.Action)
	assert.True(t, res.Changed)

	w = f.do(t, "POST", "/shell/keys/search", nil)
	assert.Equal(t, shell.HintFocusSearch, decode[shell.Result](t, w).Hint)

	w = f.do(t, "POST", "/shell/keys/explode", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestModules(t *testing.T) {
	f := setup(t)

	w := f.do(t, "GET", "/shell/modules", nil)
	modules := decode[map[string][]types.ModuleDescriptor](t, w)["modules"]
	assert.Len(t, modules, len(registry.Builtins)-1)

	w = f.do(t, "GET", "/shell/modules?q=vendor", nil)
	modules = decode[map[string][]types.ModuleDescriptor](t, w)["modules"]
	require.Len(t, modules, 1)
	assert.Equal(t, "suppliers", modules[0].Key)

	w = f.do(t, "GET", "/shell/modules/materials", nil)
	comp := decode[registry.Component](t, w)
	assert.Equal(t, registry.SourceManifest, comp.Source)
}

func TestModuleFallsBackToBackendThenPlaceholder(t *testing.T) {
	f := setup(t)
	f.login(t)

	w := f.do(t, "GET", "/shell/modules/inventory", nil)
	comp := decode[registry.Component](t, w)
	assert.Equal(t, registry.SourceBackend, comp.Source)
	require.Len(t, comp.Routes, 1)
	assert.Equal(t, "/inventory", comp.Routes[0].Path)

	w = f.do(t, "GET", "/shell/modules/nonexistent-module", nil)
	require.Equal(t, http.StatusOK, w.Code)
	comp = decode[registry.Component](t, w)
	assert.True(t, comp.Placeholder())

	calls := f.backend.Calls.Load()
	f.do(t, "GET", "/shell/modules/nonexistent-module", nil)
	assert.Equal(t, calls, f.backend.Calls.Load(), "placeholder is memoized")

	w = f.do(t, "DELETE", "/shell/modules/cache?key=nonexistent-module", nil)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["evicted"])
}

func TestActiveModule(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.do(t, "POST", "/shell/tabs", OpenTabRequest{ComponentKey: "deposits"})

	w := f.do(t, "GET", "/shell/active", nil)
	body := decode[struct {
		Tab       types.Tab          `json:"tab"`
		Component registry.Component `json:"component"`
	}](t, w)
	assert.Equal(t, "deposits", body.Tab.ComponentKey)
	assert.Equal(t, "deposits", body.Component.Key)
}

func TestStreamLogs(t *testing.T) {
	f := setup(t)

	w := f.do(t, "POST", "/logs", ClientLogRequest{Entries: []ClientLogEntry{
		{ID: "1", Level: "error", Message: "render failed", Context: map[string]any{"module": "materials"}},
		{ID: "2", Level: "info", Message: "mounted"},
	}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode[map[string]any](t, w)["entries_received"])

	w = f.do(t, "POST", "/logs", ClientLogRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoints(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.do(t, "POST", "/shell/tabs", OpenTabRequest{ComponentKey: "materials"})

	w := f.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "erpshell_tabs_open 2"), w.Body.String())
	assert.Contains(t, w.Body.String(), "erpshell_login_outcomes_total")

	w = f.do(t, "GET", "/metrics/json", nil)
	snap := decode[MetricsSnapshot](t, w)
	assert.Equal(t, int64(2), snap.Counters.OpenTabs)
	assert.Equal(t, "closed", snap.Summary.Breaker)
	assert.Positive(t, snap.Counters.APICalls)
}
