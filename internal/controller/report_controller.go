package controller

import (
	"ai-mediation-be/internal/apperror"
	"ai-mediation-be/internal/pkg/serverutils"
	"ai-mediation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	Report(ctx *fiber.Ctx) error
}

type reportController struct {
	service service.IReportService
}

func NewReportController(service service.IReportService) IReportController {
	return &reportController{service: service}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/report", serverutils.SessionTokenMiddleware)
	h.Get("/", c.Report)
}

func (c *reportController) Report(ctx *fiber.Ctx) error {
	res, err := c.service.Report(ctx.Context(), serverutils.SessionID(ctx), serverutils.SessionRole(ctx))
	if err != nil {
		// Generation failures surface the failed status so the client
		// can offer a retry instead of a dead end.
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
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}
