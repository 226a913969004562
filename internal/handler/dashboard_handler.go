package handler

import (
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), principal(c), days)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardData(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(stats)
}

// GetRecentActivities returns the latest audit entries
func (h *DashboardHandler) GetRecentActivities(c *fiber.Ctx) error {
	activities, err := h.service.GetRecentActivities(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(activities)
}
