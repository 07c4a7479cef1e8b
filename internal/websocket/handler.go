package websocket

import (
	"ai-mediation-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebsocketHandler upgrades /ws/feed connections. The session token
// middleware has already resolved the (session, role) pair into locals;
// the upgrade handler only has to carry them across to the hub.
func WebsocketHandler(hub *Hub) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}

		sessionID, _ := ctx.Locals("session_id").(uuid.UUID)
		role, _ := ctx.Locals("role").(entity.Role)
		if sessionID == uuid.Nil || !role.IsHuman() {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}

		return websocket.New(func(conn *websocket.Conn) {
			client := NewClient(hub, conn, sessionID, role)
			hub.register <- client

			go client.WritePump()
			client.ReadPump()
		})(ctx)
	}
}
