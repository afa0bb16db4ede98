// Package ws pushes shell state to browser clients over WebSocket.
//
// Every connection receives the current tabs and session state right after
// the upgrade, then one message per store change. The session is sent
// without its bearer token.
//
// Message Types (Client → Server):
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - tabs: navigation state (the active module signal)
//   - session: authentication state
//   - pong: answer to ping
//   - error: unknown message type
//
// Example Usage:
//
//	handler := ws.NewHandler(tabStore, sessionStore, metrics, log)
//	router.GET("/shell/ws", handler.HandleConnection)
package ws
