package controller

import (
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IModelController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	AttachFiles(ctx *fiber.Ctx) error
}

type modelController struct {
	modelService service.IModelService
	jwt          fiber.Handler
}

func NewModelController(modelService service.IModelService, jwt fiber.Handler) IModelController {
	return &modelController{
		modelService: modelService,
		jwt:          jwt,
	}
}

func (c *modelController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/model/v1")
	h.Use(c.jwt)
	h.Post("", c.Create)
	h.Get("", c.GetAll)
	h.Get(":id", c.Get)
	h.Delete(":id", c.Delete)
	h.Post(":id/files", c.AttachFiles)
}

func (c *modelController) Create(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	var req dto.CreateCustomModelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.modelService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Model created", res))
}

func (c *modelController) GetAll(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	res, err := c.modelService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Model list", res))
}

func (c *modelController) Get(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.modelService.Get(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Model detail", res))
}

func (c *modelController) Delete(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.modelService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Model deleted", nil))
}

func (c *modelController) AttachFiles(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.AttachModelFilesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.modelService.AttachFiles(ctx.Context(), userId, id, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Files attached", nil))
}
