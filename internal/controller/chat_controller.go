package controller

import (
	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/pkg/serverutils"
	"finops-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	NewThread(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	ThreadMessages(ctx *fiber.Ctx) error
	DeleteThread(ctx *fiber.Ctx) error
	Summarize(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/new", c.NewThread)
	h.Post("/", c.Send)
	h.Get("/history", c.History)
	h.Get("/list", c.List)
	h.Get("/threads/:id/messages", c.ThreadMessages)
	h.Delete("/threads/:id", c.DeleteThread)
	h.Post("/summarize", c.Summarize)
}

func (c *chatController) NewThread(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	res, err := c.chatService.NewThread(ctx.Context(), ownerId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.chatService.SendChat(ctx.Context(), ownerId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	var threadId *string
	if q := ctx.Query("threadId"); q != "" {
		threadId = &q
	}

	res, err := c.chatService.GetHistory(ctx.Context(), ownerId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) List(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	res, err := c.chatService.ListThreads(ctx.Context(), ownerId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) ThreadMessages(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	threadId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid thread id")
	}

	res, err := c.chatService.GetThreadMessages(ctx.Context(), ownerId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) DeleteThread(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	threadId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid thread id")
	}

	if err := c.chatService.DeleteThread(ctx.Context(), ownerId, threadId); err != nil {
		return err
	}

	return ctx.JSON(dto.DeleteThreadResponse{Success: true})
}

func (c *chatController) Summarize(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	var req dto.SummarizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	threadId, err := uuid.Parse(req.ThreadId)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid thread id")
	}

	res, err := c.chatService.Summarize(ctx.Context(), ownerId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
