package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-console/internal/api/dto"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/selection"
)

// SelectionHandler drives the two dependent selections of the operator's
// workspace: company to departments and department to staff. Selecting
// returns at once with state "loading" unless ?wait=true is given.
type SelectionHandler struct{}

// NewSelectionHandler constructs handler.
func NewSelectionHandler() *SelectionHandler {
	return &SelectionHandler{}
}

// SelectCompany handles PUT /console/selections/company. A different company
// also clears the department selection.
func (h *SelectionHandler) SelectCompany(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SelectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws := p.Workspace
	if ws.Departments.Selection() != req.ID {
		ws.Staff.Clear()
	}
	return h.apply(c, ws.Departments, ws.Departments.Select(c.UserContext(), req.ID))
}

// CompanySelection handles GET /console/selections/company.
func (h *SelectionHandler) CompanySelection(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return respond(c, snapshot(p.Workspace.Departments))
}

// ClearCompany handles DELETE /console/selections/company.
func (h *SelectionHandler) ClearCompany(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	p.Workspace.Departments.Clear()
	p.Workspace.Staff.Clear()
	return respond(c, snapshot(p.Workspace.Departments))
}

// SelectDepartment handles PUT /console/selections/department.
func (h *SelectionHandler) SelectDepartment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SelectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.apply(c, p.Workspace.Staff, p.Workspace.Staff.Select(c.UserContext(), req.ID))
}

// DepartmentSelection handles GET /console/selections/department.
func (h *SelectionHandler) DepartmentSelection(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return respond(c, snapshot(p.Workspace.Staff))
}

// ClearDepartment handles DELETE /console/selections/department.
func (h *SelectionHandler) ClearDepartment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	p.Workspace.Staff.Clear()
	return respond(c, snapshot(p.Workspace.Staff))
}

func (h *SelectionHandler) apply(c *fiber.Ctx, cache *selection.Cache[identity.Entity], done <-chan struct{}) error {
	if c.QueryBool("wait") {
		if err := selection.Wait(c.UserContext(), done); err != nil {
			return err
		}
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": snapshot(cache)})
}

func snapshot(cache *selection.Cache[identity.Entity]) dto.SelectionResponse {
	snap := cache.Snapshot()
	resp := dto.SelectionResponse{
		Selection: snap.Selection,
		State:     string(snap.State),
		Items:     snap.Items,
		Version:   snap.Version,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return resp
}
