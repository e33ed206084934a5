// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game handler.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected without the "uno" subprotocol.
	ServerShutdownError websocket.StatusCode = 3001 // Server is closing every connection.
)
