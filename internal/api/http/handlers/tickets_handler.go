package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-console/internal/api/dto"
	"github.com/spec-kit/staff-console/internal/service"
)

// TicketsHandler issues and lists tickets.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List handles GET /console/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	views, err := h.tickets.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, views)
}

// Issue handles POST /console/tickets.
func (h *TicketsHandler) Issue(c *fiber.Ctx) error {
	var req dto.IssueTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.tickets.Issue(c.UserContext(), actor(c), req.Draft())
	if err != nil {
		return err
	}
	return created(c, result)
}
