package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-console/internal/api/dto"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/service"
)

// OrganizationHandler exposes companies, branches and departments.
type OrganizationHandler struct {
	org *service.OrganizationService
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(org *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{org: org}
}

// Overview handles GET /console/organization.
func (h *OrganizationHandler) Overview(c *fiber.Ctx) error {
	org, err := h.org.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, org)
}

// CreateCompany handles POST /console/companies.
func (h *OrganizationHandler) CreateCompany(c *fiber.Ctx) error {
	var form dto.CompanyForm
	if err := bind(c, &form); err != nil {
		return err
	}
	logo, err := pickedFile(c, domain.CompanyLogoField)
	if err != nil {
		return err
	}
	result, err := h.org.CreateCompany(c.UserContext(), actor(c), service.CompanySubmission{
		Name:     form.Name,
		Address:  form.Address,
		BranchID: form.BranchID,
		Logo:     logo,
	})
	if err != nil {
		return err
	}
	return created(c, result)
}

// DeleteCompany handles DELETE /console/companies/:id.
func (h *OrganizationHandler) DeleteCompany(c *fiber.Ctx) error {
	if err := h.org.DeleteCompany(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Branches handles GET /console/branches.
func (h *OrganizationHandler) Branches(c *fiber.Ctx) error {
	branches, err := h.org.Branches(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, branches)
}

// Branch handles GET /console/branches/:id.
func (h *OrganizationHandler) Branch(c *fiber.Ctx) error {
	branch, err := h.org.Branch(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, branch)
}

// CreateBranch handles POST /console/branches.
func (h *OrganizationHandler) CreateBranch(c *fiber.Ctx) error {
	var req dto.BranchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.org.CreateBranch(c.UserContext(), actor(c), req.Input())
	if err != nil {
		return err
	}
	return created(c, result)
}

// DeleteBranch handles DELETE /console/branches/:id.
func (h *OrganizationHandler) DeleteBranch(c *fiber.Ctx) error {
	if err := h.org.DeleteBranch(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Departments handles GET /console/departments.
func (h *OrganizationHandler) Departments(c *fiber.Ctx) error {
	depts, err := h.org.Departments(c.UserContext(), c.Query("company_id"))
	if err != nil {
		return err
	}
	return respond(c, depts)
}

// Department handles GET /console/departments/:id.
func (h *OrganizationHandler) Department(c *fiber.Ctx) error {
	dept, err := h.org.Department(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, dept)
}

// CreateDepartments handles POST /console/departments.
func (h *OrganizationHandler) CreateDepartments(c *fiber.Ctx) error {
	var req dto.DepartmentsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	names, err := h.org.CreateDepartments(c.UserContext(), actor(c), req.Batch())
	if err != nil {
		return err
	}
	return created(c, fiber.Map{"company_id": req.CompanyID, "created": names})
}
