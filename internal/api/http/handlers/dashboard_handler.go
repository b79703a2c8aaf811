package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-console/internal/service"
)

// DashboardHandler serves the landing summary.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary handles GET /console/dashboard.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.dashboard.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, summary)
}
