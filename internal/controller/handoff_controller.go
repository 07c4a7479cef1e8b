package controller

import (
	"ai-mediation-be/internal/pkg/serverutils"
	"ai-mediation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHandoffController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
}

type handoffController struct {
	service service.IHandoffService
}

func NewHandoffController(service service.IHandoffService) IHandoffController {
	return &handoffController{service: service}
}

func (c *handoffController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/handoff", serverutils.SessionTokenMiddleware)
	h.Post("/summary", c.Summary)
}

func (c *handoffController) Summary(ctx *fiber.Ctx) error {
	res, err := c.service.BridgeSummary(ctx.Context(), serverutils.SessionID(ctx), serverutils.SessionRole(ctx))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}
