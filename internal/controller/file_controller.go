package controller

import (
	"io"
	"strconv"

	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/pkg/serverutils"
	"finops-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFileController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
}

type fileController struct {
	fileService service.IFileService
}

func NewFileController(fileService service.IFileService) IFileController {
	return &fileController{
		fileService: fileService,
	}
}

func (c *fileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/files")
	h.Post("/upload", c.Upload)
	h.Get("/progress", c.Progress)
	h.Delete("/:id", c.Delete)
}

func (c *fileController) Upload(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	fileType := ctx.FormValue("fileType")
	if fileType == "" {
		return fiber.NewError(fiber.StatusBadRequest, "fileType is required")
	}

	sessionId := ctx.FormValue("sessionId")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sessionId is required")
	}

	var threadId *string
	if q := ctx.Query("threadId"); q != "" {
		threadId = &q
	}

	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	res, err := c.fileService.Upload(ctx.Context(), ownerId, &service.UploadFileInput{
		SessionId:    sessionId,
		FileType:     fileType,
		ThreadId:     threadId,
		OriginalName: fileHeader.Filename,
		Data:         data,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *fileController) Delete(ctx *fiber.Ctx) error {
	ownerId := serverutils.SessionID(ctx)

	fileId, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid file id")
	}

	if err := c.fileService.Delete(ctx.Context(), ownerId, fileId); err != nil {
		return err
	}

	return ctx.JSON(dto.DeleteFileResponse{Success: true})
}

func (c *fileController) Progress(ctx *fiber.Ctx) error {
	sessionId := ctx.Query("sessionId")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sessionId is required")
	}

	res, err := c.fileService.Progress(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
