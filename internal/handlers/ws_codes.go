// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Application close codes for the game socket.
const (
	BadSubprotocolError  websocket.StatusCode = 3000
	InvalidIdentityError websocket.StatusCode = 3001
	InvalidRoomIDError   websocket.StatusCode = 3003
	JoinRejectedError    websocket.StatusCode = 3004
	ConnectionReplaced   websocket.StatusCode = 3005
)
