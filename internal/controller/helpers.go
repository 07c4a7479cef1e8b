package controller

import (
	"ai-mediation-be/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// statusFromError maps a service error kind to an HTTP status.
func statusFromError(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindAuthentication:
		return fiber.StatusUnauthorized
	case apperror.KindGateway:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	status := statusFromError(err)
	return ctx.Status(status).JSON(fiber.Map{
		"success": false,
		"code":    status,
		"message": err.Error(),
	})
}
