package controller

import (
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFeedbackController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type feedbackController struct {
	feedbackService service.IFeedbackService
	jwt             fiber.Handler
}

func NewFeedbackController(feedbackService service.IFeedbackService, jwt fiber.Handler) IFeedbackController {
	return &feedbackController{
		feedbackService: feedbackService,
		jwt:             jwt,
	}
}

func (c *feedbackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/feedback/v1")
	h.Use(c.jwt)
	h.Post("", c.Submit)
	h.Get("", c.List)
}

func (c *feedbackController) List(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	feedback, err := c.feedbackService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feedback retrieved", feedback))
}

func (c *feedbackController) Submit(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	var req dto.SubmitFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.feedbackService.Submit(ctx.Context(), userId, &req); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse[any]("Feedback recorded", nil))
}
