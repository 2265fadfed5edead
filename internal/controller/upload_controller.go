package controller

import (
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
	jwt           fiber.Handler
}

func NewUploadController(uploadService service.IUploadService, jwt fiber.Handler) IUploadController {
	return &uploadController{
		uploadService: uploadService,
		jwt:           jwt,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload/v1")
	h.Use(c.jwt)
	h.Post("", c.Upload)
	h.Get(":id", c.Download)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.InvalidArgument("missing file in multipart form")
	}

	res, err := c.uploadService.Upload(ctx.Context(), userId, fileHeader)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("File staged", res))
}

func (c *uploadController) Download(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	attachmentId, _ := uuid.Parse(ctx.Params("id"))

	att, err := c.uploadService.Download(ctx.Context(), userId, attachmentId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, att.MimeType)
	return ctx.Download(att.StoragePath, att.OriginalFilename)
}
