package ws

import (
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/shared/id"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

// TabsSource is the part of the tabs store the handler reads.
type TabsSource interface {
	State() types.TabsState
	Subscribe() (<-chan types.TabsState, func())
}

// SessionSource is the part of the session store the handler reads.
type SessionSource interface {
	State() types.SessionState
	Subscribe() (<-chan types.SessionState, func())
}

// Handler manages WebSocket connections.
type Handler struct {
	tabs     TabsSource
	session  SessionSource
	metrics  *monitoring.Metrics
	log      *zap.Logger
	origins  []string
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithAllowedOrigins restricts upgrades to these browser origins. An empty
// list or one containing "*" admits same-origin and loopback pages only.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.origins = origins }
}

// NewHandler creates a new WebSocket handler.
func NewHandler(tabs TabsSource, session SessionSource, metrics *monitoring.Metrics, log *zap.Logger, opts ...Option) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{tabs: tabs, session: session, metrics: metrics, log: log}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin(h.origins),
	}
	return h
}

// checkOrigin gates upgrades by the Origin header; CORS does not cover
// WebSocket handshakes. Requests without an Origin come from non-browser
// clients and are admitted.
func checkOrigin(allowed []string) func(*http.Request) bool {
	wildcard := len(allowed) == 0 || slices.Contains(allowed, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if !wildcard {
			return slices.Contains(allowed, origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		host := u.Hostname()
		if strings.EqualFold(host, "localhost") {
			return true
		}
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback()
	}
}

// HandleConnection upgrades the request and streams state until the client
// goes away or the request context ends.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := id.NewConnID()
	log := h.log.With(zap.String("conn", connID.String()))
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	log.Debug("websocket connected")

	tabUpdates, stopTabs := h.tabs.Subscribe()
	defer stopTabs()
	sessionUpdates, stopSession := h.session.Subscribe()
	defer stopSession()

	out := &writer{conn: conn}
	defer conn.Close()

	tabs := h.tabs.State()
	sess := h.session.State().Redacted()
	if err := out.send(types.WSMessage{Type: types.MessageTabs, Tabs: &tabs}); err != nil {
		return
	}
	if err := out.send(types.WSMessage{Type: types.MessageSession, Session: &sess}); err != nil {
		return
	}

	done := make(chan struct{})
	go h.readLoop(conn, out, done, log)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			out.close()
			return
		case <-done:
			return
		case state, ok := <-tabUpdates:
			if !ok {
				out.close()
				return
			}
			if err := out.send(types.WSMessage{Type: types.MessageTabs, Tabs: &state}); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case state, ok := <-sessionUpdates:
			if !ok {
				out.close()
				return
			}
			state = state.Redacted()
			if err := out.send(types.WSMessage{Type: types.MessageSession, Session: &state}); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := out.ping(); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readLoop(conn *websocket.Conn, out *writer, done chan<- struct{}, log *zap.Logger) {
	defer close(done)

	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msg.Type {
		case types.MessagePing:
			_ = out.send(types.WSMessage{Type: types.MessagePong})
		default:
			_ = out.send(types.WSMessage{Type: types.MessageError, Message: "unknown message type"})
		}
	}
}

// writer serializes writes; gorilla connections allow one writer at a time.
type writer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *writer) send(msg types.WSMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(msg)
}

func (w *writer) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (w *writer) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
