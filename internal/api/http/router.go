package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-console/internal/api/http/handlers"
	"github.com/spec-kit/staff-console/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Staff          *handlers.StaffHandler
	Organization   *handlers.OrganizationHandler
	Tickets        *handlers.TicketsHandler
	Selections     *handlers.SelectionHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	console := app.Group("/console")
	console.Post("/auth/login", cfg.Auth.Login)

	protected := console.Group("", cfg.AuthMiddleware.Handle, auth.RequireSession())
	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/session", cfg.Auth.Session)
	protected.Get("/profile", cfg.Auth.Profile)
	protected.Get("/roles", cfg.Auth.Roles)

	protected.Get("/dashboard", cfg.Dashboard.Summary)

	protected.Get("/staff", cfg.Staff.List)
	protected.Post("/staff", cfg.Staff.Create)
	protected.Get("/staff/:id", cfg.Staff.Get)
	protected.Put("/staff/:id", cfg.Staff.Update)
	protected.Delete("/staff/:id", cfg.Staff.Delete)
	protected.Get("/staff/:id/attendance", cfg.Staff.Attendance)
	protected.Get("/staff/:id/appraisals", cfg.Staff.Appraisals)
	protected.Get("/staff/:id/appraisals/export", cfg.Staff.ExportAppraisals)
	protected.Get("/attendance", cfg.Staff.AttendanceLog)

	protected.Get("/organization", cfg.Organization.Overview)
	protected.Post("/companies", cfg.Organization.CreateCompany)
	protected.Delete("/companies/:id", cfg.Organization.DeleteCompany)
	protected.Get("/branches", cfg.Organization.Branches)
	protected.Post("/branches", cfg.Organization.CreateBranch)
	protected.Get("/branches/:id", cfg.Organization.Branch)
	protected.Delete("/branches/:id", cfg.Organization.DeleteBranch)
	protected.Get("/departments", cfg.Organization.Departments)
	protected.Post("/departments", cfg.Organization.CreateDepartments)
	protected.Get("/departments/:id", cfg.Organization.Department)

	protected.Put("/selections/company", cfg.Selections.SelectCompany)
	protected.Get("/selections/company", cfg.Selections.CompanySelection)
	protected.Delete("/selections/company", cfg.Selections.ClearCompany)
	protected.Put("/selections/department", cfg.Selections.SelectDepartment)
	protected.Get("/selections/department", cfg.Selections.DepartmentSelection)
	protected.Delete("/selections/department", cfg.Selections.ClearDepartment)

	protected.Get("/tickets", cfg.Tickets.List)
	protected.Post("/tickets", cfg.Tickets.Issue)
}
