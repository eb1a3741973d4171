package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/securohelp/case-service/internal/service"
)

// DashboardHandler serves the office dashboard aggregates.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Stats GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// RecentCases GET /dashboard/recent-cases.
func (h *DashboardHandler) RecentCases(c *fiber.Ctx) error {
	recent, err := h.service.RecentCases(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recent})
}
