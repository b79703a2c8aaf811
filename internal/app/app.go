// Package app assembles the console: remote API client, repositories,
// workspaces, services and the fiber application.
package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/staff-console/internal/api/http"
	"github.com/spec-kit/staff-console/internal/api/http/handlers"
	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/auth"
	"github.com/spec-kit/staff-console/internal/config"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/observability"
	"github.com/spec-kit/staff-console/internal/repository"
	"github.com/spec-kit/staff-console/internal/service"
	"github.com/spec-kit/staff-console/internal/worker"
	"github.com/spec-kit/staff-console/internal/workspace"
)

// App is a wired console.
type App struct {
	Fiber      *fiber.App
	Registry   *workspace.Registry
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Janitor    *worker.SessionJanitor
}

// New wires the console around an already opened session store.
func New(cfg *config.Config, logger *zap.Logger, store repository.SessionRepository) *App {
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	api := apiclient.New(apiclient.Options{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout(),
		Logger:   logger.Named("apiclient"),
		Recorder: metrics,
	})

	userRepo := repository.NewUserRepository(api)
	staffRepo := repository.NewStaffRepository(api)
	companyRepo := repository.NewCompanyRepository(api)
	branchRepo := repository.NewBranchRepository(api)
	departmentRepo := repository.NewDepartmentRepository(api)
	ticketRepo := repository.NewTicketRepository(api)
	attendanceRepo := repository.NewAttendanceRepository(api)
	appraisalRepo := repository.NewAppraisalRepository(api, cfg.API.AppraisalsPath)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	registry := workspace.NewRegistry(store, workspace.Loaders{
		DepartmentsByCompany: departmentRepo.ListByCompany,
		StaffByDepartment:    staffRepo.ListByDepartment,
	}, workspace.Options{
		TTL:          tokens.TTL(),
		FetchTimeout: cfg.API.Timeout(),
		Logger:       logger.Named("workspace"),
	})
	dispatcher.SubscribeAll(registry.HandleEvent)
	worker.NewAuditWorker(dispatcher, logger).Start()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Workspaces: registry,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	staffService := service.NewStaffService(service.StaffDependencies{
		StaffRepo:      staffRepo,
		AttendanceRepo: attendanceRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	orgService := service.NewOrganizationService(service.OrganizationDependencies{
		CompanyRepo:    companyRepo,
		BranchRepo:     branchRepo,
		DepartmentRepo: departmentRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		StaffRepo:  staffRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		BodyLimit:             32 << 20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, map[string]handlers.Pinger{
			"session_store": registry,
		}),
		Auth: handlers.NewAuthHandler(authService, handlers.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		}),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(staffRepo, ticketRepo, attendanceRepo)),
		Staff:          handlers.NewStaffHandler(staffService, service.NewAppraisalService(appraisalRepo)),
		Organization:   handlers.NewOrganizationHandler(orgService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Selections:     handlers.NewSelectionHandler(),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, registry, cfg.Session.CookieName, logger),
	})

	return &App{
		Fiber:      app,
		Registry:   registry,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Janitor:    worker.NewSessionJanitor(store, registry, 5*time.Minute, logger),
	}
}
