package serverutils

import (
	"errors"

	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler maps application errors onto HTTP status families:
// validation to 400, auth to 401/403, missing to 404, everything else
// to 500.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
			switch appErr.Kind {
			case apperror.KindInvalidArgument:
				status = fiber.StatusBadRequest
			case apperror.KindUnauthenticated:
				status = fiber.StatusUnauthorized
			case apperror.KindForbidden:
				status = fiber.StatusForbidden
			case apperror.KindNotFound:
				status = fiber.StatusNotFound
			default:
				status = fiber.StatusInternalServerError
			}
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", "request failed", map[string]interface{}{
				"path":   ctx.Path(),
				"method": ctx.Method(),
				"error":  err.Error(),
			})
			// Do not leak internals on 5xx.
			if appErr == nil {
				message = "internal server error"
			}
		}

		return ctx.Status(status).JSON(FailureResponse(message))
	}
}
