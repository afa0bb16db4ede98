package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/erpshell/internal/api/client"
	"github.com/GriffinCanCode/erpshell/internal/domain/session"
	"github.com/GriffinCanCode/erpshell/internal/domain/tabs"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/testutil"
)

func dial(t *testing.T, tabStore *tabs.Store, sess *session.Store) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/shell/ws", NewHandler(tabStore, sess, nil, nil).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/shell/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) types.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg types.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func stores(t *testing.T) (*tabs.Store, *session.Store, *testutil.MockBackend) {
	t.Helper()
	store := storage.NewMemoryStore()
	backend := testutil.NewMockBackend(t)
	sess := session.New(context.Background(), backend, store)
	t.Cleanup(sess.Close)
	tabStore := tabs.New(context.Background(), store)
	t.Cleanup(tabStore.Close)
	return tabStore, sess, backend
}

func TestInitialSnapshot(t *testing.T) {
	tabStore, sess, _ := stores(t)
	conn := dial(t, tabStore, sess)

	msg := read(t, conn)
	assert.Equal(t, types.MessageTabs, msg.Type)
	require.NotNil(t, msg.Tabs)
	assert.Equal(t, "home", msg.Tabs.ActiveTabID)

	msg = read(t, conn)
	assert.Equal(t, types.MessageSession, msg.Type)
	require.NotNil(t, msg.Session)
	assert.False(t, msg.Session.IsAuthenticated)
}

func TestPushesStoreChanges(t *testing.T) {
	tabStore, sess, backend := stores(t)
	conn := dial(t, tabStore, sess)
	read(t, conn)
	read(t, conn)

	tab, err := tabStore.OpenTab(context.Background(), "materials", "Materials", "Box", nil)
	require.NoError(t, err)

	msg := read(t, conn)
	assert.Equal(t, types.MessageTabs, msg.Type)
	assert.Equal(t, tab.ID, msg.Tabs.ActiveTabID)

	backend.On("Login", mock.Anything, testutil.LoginWith("admin", "")).
		Return(&client.LoginResponse{Success: true, Token: "secret-token", User: testutil.AdminUser()}, nil).Once()
	_, err = sess.Login(context.Background(), "admin", "secret", session.ConflictNone)
	require.NoError(t, err)

	msg = read(t, conn)
	assert.Equal(t, types.MessageSession, msg.Type)
	assert.True(t, msg.Session.IsAuthenticated)
	assert.Empty(t, msg.Session.Token, "tokens never leave the server")
}

func TestPingAndUnknownMessages(t *testing.T) {
	tabStore, sess, _ := stores(t)
	conn := dial(t, tabStore, sess)
	read(t, conn)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: types.MessagePing}))
	assert.Equal(t, types.MessagePong, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "chat"}))
	msg := read(t, conn)
	assert.Equal(t, types.MessageError, msg.Type)
	assert.Equal(t, "unknown message type", msg.Message)
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		host    string
		want    bool
	}{
		{"no origin header", []string{"https://erp.example.com"}, "", "shell:8000", true},
		{"listed origin", []string{"https://erp.example.com"}, "https://erp.example.com", "shell:8000", true},
		{"unlisted origin", []string{"https://erp.example.com"}, "https://evil.example", "shell:8000", false},
		{"listed list excludes localhost", []string{"https://erp.example.com"}, "http://localhost:5173", "shell:8000", false},
		{"wildcard same origin", []string{"*"}, "http://shell:8000", "shell:8000", true},
		{"wildcard localhost dev server", []string{"*"}, "http://localhost:5173", "127.0.0.1:8000", true},
		{"wildcard loopback ip", []string{"*"}, "http://127.0.0.1:3000", "127.0.0.1:8000", true},
		{"wildcard foreign page", []string{"*"}, "https://evil.example", "127.0.0.1:8000", false},
		{"empty list foreign page", nil, "https://evil.example", "127.0.0.1:8000", false},
		{"malformed origin", []string{"*"}, "::not a url", "127.0.0.1:8000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/shell/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checkOrigin(tt.allowed)(r))
		})
	}
}

func TestRejectsForeignOrigin(t *testing.T) {
	tabStore, sess, _ := stores(t)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/shell/ws", NewHandler(tabStore, sess, nil, nil,
		WithAllowedOrigins([]string{"https://erp.example.com"})).HandleConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/shell/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://erp.example.com"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, types.MessageTabs, read(t, conn).Type)
}
