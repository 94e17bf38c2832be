package controller

import (
	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAiToolController interface {
	RegisterRoutes(r fiber.Router)
	AnalyzeCosts(ctx *fiber.Ctx) error
}

type aiToolController struct {
	chatService service.IChatService
}

func NewAiToolController(chatService service.IChatService) IAiToolController {
	return &aiToolController{
		chatService: chatService,
	}
}

func (c *aiToolController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tools")
	h.Post("/analyzeCosts", c.AnalyzeCosts)
}

// AnalyzeCosts runs a one-shot analysis outside of any thread.
func (c *aiToolController) AnalyzeCosts(ctx *fiber.Ctx) error {
	var req dto.AnalyzeCostsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.chatService.AnalyzeCosts(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
