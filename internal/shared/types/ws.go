package types

// Live update message types pushed to shell clients.
const (
	MessageTabs    = "tabs"
	MessageSession = "session"
	MessageError   = "error"
	MessagePing    = "ping"
	MessagePong    = "pong"
)

// WSMessage is the envelope pushed over the live-update socket.
type WSMessage struct {
	Type    string        `json:"type"`
	Tabs    *TabsState    `json:"tabs,omitempty"`
	Session *SessionState `json:"session,omitempty"`
	Message string        `json:"message,omitempty"`
}
