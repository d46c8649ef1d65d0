package api

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/realtime-tasks-demo/modules/auth"
	"github.com/example/realtime-tasks-demo/modules/broadcast"
)

const wsUserIDKey = "ws_user_id"

// WSUpgrade authenticates the ?token= query parameter and allows the
// upgrade for valid sessions only.
func WSUpgrade(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "token query parameter is required",
			})
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(wsUserIDKey, claims.UserID)
		return c.Next()
	}
}

// WSHandler registers the connection in the hub under the
// authenticated user's room and blocks until the peer disconnects.
// Clients never send application messages; the read loop only drains
// control frames and detects the close.
func WSHandler(hub *broadcast.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		userID, ok := c.Locals(wsUserIDKey).(string)
		if !ok || userID == "" {
			_ = c.Close()
			return
		}

		client := &broadcast.Client{
			ID:     uuid.New().String(),
			UserID: userID,
			Conn:   c,
		}
		hub.Register(client)

		defer func() {
			hub.Unregister(client)
			_ = c.Close()
		}()

		log.Printf("[api] WebSocket connected for user %s", userID)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[api] WebSocket error for user %s: %v", userID, err)
				}
				break
			}
		}

		log.Printf("[api] WebSocket disconnected for user %s", userID)
	}
}
