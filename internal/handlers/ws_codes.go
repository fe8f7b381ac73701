// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the table handler.
const (
	BadSubprotocolError = 3000 // Client connected without the chat subprotocol.
	InvalidChatIDError  = 3003 // Chat ID in the WS URL is not an integer.
)
