package controller

import (
	"ai-mediation-be/internal/apperror"
	"ai-mediation-be/internal/dto"
	"ai-mediation-be/internal/pkg/serverutils"
	"ai-mediation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Welcome(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	Thread(ctx *fiber.Ctx) error
	Eligibility(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat", serverutils.SessionTokenMiddleware)
	h.Post("/welcome", c.Welcome)
	h.Post("/send", c.Send)
	h.Get("/messages", c.Thread)
	h.Get("/eligibility", c.Eligibility)
}

func (c *chatController) Welcome(ctx *fiber.Ctx) error {
	res, err := c.service.EnsureWelcome(ctx.Context(), serverutils.SessionID(ctx), serverutils.SessionRole(ctx))
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

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.Send(ctx.Context(), serverutils.SessionID(ctx), serverutils.SessionRole(ctx), &req)
	if err != nil {
		// A gateway failure still carries the durable sent message, so
		// the client can render it and retry for a reply later.
		if apperror.IsKind(err, apperror.KindGateway) && res != nil {
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"code":    502,
				"message": err.Error(),
				"data":    res,
			})
		}
		return errorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "Message sent",
		"data":    res,
	})
}

func (c *chatController) Thread(ctx *fiber.Ctx) error {
	res, err := c.service.Thread(ctx.Context(), serverutils.SessionID(ctx), serverutils.SessionRole(ctx))
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

func (c *chatController) Eligibility(ctx *fiber.Ctx) error {
	res, err := c.service.Eligibility(ctx.Context(), serverutils.SessionID(ctx), serverutils.SessionRole(ctx))
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
