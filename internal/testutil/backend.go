package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/config"
)

// Credentials accepted by FakeBackend.
const (
	FakeLogin    = "admin"
	FakePassword = "secret"
	// FakeBusyLogin has another active session until the caller asks to
	// invalidate it.
	FakeBusyLogin = "busy"
	FakeToken     = "fake-token"
)

// FakeBackend is an in-process ERP REST API for handler and wiring tests.
type FakeBackend struct {
	Server *httptest.Server

	mu     sync.Mutex
	tokens map[string]bool
	Calls  atomic.Int64
}

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{tokens: map[string]bool{}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// APIConfig points a client at the fake backend.
func (b *FakeBackend) APIConfig() config.APIConfig {
	return config.APIConfig{
		BaseURL:    b.Server.URL,
		Prefix:     "/api/v1",
		Timeout:    5 * time.Second,
		UserAgent:  "erpshell-test",
		BreakerMax: 5,
	}
}

// Revoke invalidates every issued token.
func (b *FakeBackend) Revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]bool{}
}

func (b *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.Calls.Add(1)
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")

	switch {
	case path == "/health":
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": "test"})
	case path == "/auth/login" && r.Method == http.MethodPost:
		b.login(w, r)
	case path == "/auth/validate":
		b.mu.Lock()
		valid := b.tokens[bearer(r)]
		b.mu.Unlock()
		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"valid": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": AdminUser()})
	case path == "/auth/logout":
		b.mu.Lock()
		delete(b.tokens, bearer(r))
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case path == "/apps":
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"code": "inventory", "name": "Inventory", "icon": "Clipboard", "category": "stock", "active": true, "order": 40},
			{"code": "legacy", "name": "Legacy", "active": false},
		}})
	case path == "/apps/inventory":
		writeJSON(w, http.StatusOK, map[string]any{"code": "inventory", "name": "Inventory", "icon": "Clipboard", "active": true})
	case path == "/apps/inventory/routes":
		writeJSON(w, http.StatusOK, []map[string]any{{"path": "/inventory", "component": "InventoryList", "title": "Inventory"}})
	case strings.HasPrefix(path, "/apps/"):
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "app not found"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
	}
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
		Action   string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad request"})
		return
	}

	switch {
	case req.Password != FakePassword:
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
	case req.Login == FakeBusyLogin && req.Action == "":
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "session_conflict": true, "active_sessions": 2})
	case req.Login == FakeLogin || req.Login == FakeBusyLogin:
		b.mu.Lock()
		b.tokens[FakeToken] = true
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": FakeToken, "user": AdminUser()})
	default:
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
	}
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
