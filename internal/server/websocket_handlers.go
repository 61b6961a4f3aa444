package server

import (
	"log"

	"silenceboost/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles WebSocket connections for real-time notifications.
// AuthRequired has already resolved the user; the hub delivers events pushed
// through Redis pub/sub.
func (s *Server) WebsocketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID := currentUserID(c)
		return websocket.New(func(conn *websocket.Conn) {
			middleware.ActiveWebSockets.Inc()
			defer middleware.ActiveWebSockets.Dec()

			if userID == 0 {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
				_ = conn.Close()
				return
			}

			if s.hub == nil {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"realtime unavailable"}`))
				_ = conn.Close()
				return
			}

			client, err := s.hub.Register(userID, conn)
			if err != nil {
				log.Printf("WebSocket: failed to register user %d: %v", userID, err)
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
				_ = conn.Close()
				return
			}

			go client.WritePump()
			client.ReadPump()
		})(c)
	}
}
