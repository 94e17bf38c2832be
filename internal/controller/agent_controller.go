package controller

import (
	"finops-copilot-be/internal/pkg/serverutils"
	ws "finops-copilot-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// IAgentController exposes the real-time push channel.
type IAgentController interface {
	RegisterRoutes(r fiber.Router)
}

type agentController struct {
	hub *ws.Hub
}

func NewAgentController(hub *ws.Hub) IAgentController {
	return &agentController{
		hub: hub,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent")

	h.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			// Locals survive the upgrade; the session id is resolved
			// before the connection leaves fiber.
			ctx.Locals("owner_id", serverutils.SessionID(ctx))
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	h.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		ownerId, _ := conn.Locals("owner_id").(string)
		if ownerId == "" {
			conn.Close()
			return
		}
		ws.ServeWs(c.hub, conn, ownerId)
	}))
}
