package controller

import (
	"flcs-chatbot-be/internal/dto"
	"flcs-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	TrackView(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	r.Post("/track_view", c.TrackView)
}

func (c *analyticsController) TrackView(ctx *fiber.Ctx) error {
	if err := c.analyticsService.TrackView(ctx.UserContext()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.TrackViewResponse{Ok: false, Error: err.Error()})
	}
	return ctx.JSON(dto.TrackViewResponse{Ok: true})
}
