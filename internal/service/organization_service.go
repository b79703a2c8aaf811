package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

// maxParallelCreates bounds concurrent department creations in one batch.
const maxParallelCreates = 4

// OrganizationService manages companies, branches and departments.
type OrganizationService struct {
	companies   repository.CompanyRepository
	branches    repository.BranchRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// OrganizationDependencies bundles repositories for the organization service.
type OrganizationDependencies struct {
	CompanyRepo    repository.CompanyRepository
	BranchRepo     repository.BranchRepository
	DepartmentRepo repository.DepartmentRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// Organization is the organization screen: companies next to branches.
type Organization struct {
	Companies []identity.Entity `json:"companies"`
	Branches  []identity.Entity `json:"branches"`
}

// CompanySubmission creates a company.
type CompanySubmission struct {
	Name     string
	Address  string
	BranchID string
	Logo     *RawFile
}

// NewOrganizationService constructs the service.
func NewOrganizationService(deps OrganizationDependencies) *OrganizationService {
	return &OrganizationService{
		companies:   deps.CompanyRepo,
		branches:    deps.BranchRepo,
		departments: deps.DepartmentRepo,
		dispatcher:  deps.Dispatcher,
		logger:      loggerOrNop(deps.Logger),
	}
}

// Overview loads companies and branches together.
func (s *OrganizationService) Overview(ctx context.Context) (*Organization, error) {
	var org Organization
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		org.Companies, err = s.companies.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		org.Branches, err = s.branches.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateCompany creates a company, uploading the logo when one was picked.
func (s *OrganizationService) CreateCompany(ctx context.Context, actor events.Actor, in CompanySubmission) (any, error) {
	logo, err := prepareImage(domain.CompanyLogoField, in.Logo)
	if err != nil {
		return nil, err
	}
	result, err := s.companies.Create(ctx, domain.CompanyInput{
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		BranchID: in.BranchID,
		Logo:     logo,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventCompanyCreated, actor, events.OrganizationPayload{Name: in.Name}))
	return result, nil
}

// DeleteCompany removes a company.
func (s *OrganizationService) DeleteCompany(ctx context.Context, actor events.Actor, id string) error {
	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.EventCompanyDeleted, actor, events.OrganizationPayload{ID: id}))
	return nil
}

// Branches lists branches.
func (s *OrganizationService) Branches(ctx context.Context) ([]identity.Entity, error) {
	return s.branches.List(ctx)
}

// Branch loads one branch.
func (s *OrganizationService) Branch(ctx context.Context, id string) (identity.Entity, error) {
	branch, err := s.branches.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return identity.Entity{}, apperrors.NewNotFound("branch", map[string]any{"id": id})
	}
	return branch, err
}

// CreateBranch creates a branch.
func (s *OrganizationService) CreateBranch(ctx context.Context, actor events.Actor, in domain.BranchInput) (any, error) {
	result, err := s.branches.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventBranchCreated, actor, events.OrganizationPayload{Name: in.Name}))
	return result, nil
}

// DeleteBranch removes a branch.
func (s *OrganizationService) DeleteBranch(ctx context.Context, actor events.Actor, id string) error {
	if err := s.branches.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.EventBranchDeleted, actor, events.OrganizationPayload{ID: id}))
	return nil
}

// Departments lists departments, only those of companyID when it is set.
func (s *OrganizationService) Departments(ctx context.Context, companyID string) ([]identity.Entity, error) {
	if companyID != "" {
		return s.departments.ListByCompany(ctx, companyID)
	}
	return s.departments.List(ctx)
}

// Department loads one department.
func (s *OrganizationService) Department(ctx context.Context, id string) (identity.Entity, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return identity.Entity{}, apperrors.NewNotFound("department", map[string]any{"id": id})
	}
	return dept, err
}

// CreateDepartments creates every non-blank name under the company. It fails
// as a whole if any creation fails; departments created before the failure remain.
func (s *OrganizationService) CreateDepartments(ctx context.Context, actor events.Actor, batch domain.DepartmentBatch) ([]string, error) {
	if strings.TrimSpace(batch.CompanyID) == "" {
		return nil, apperrors.NewValidationError("select a company first", map[string]any{"company_id": "required"})
	}
	names := make([]string, 0, len(batch.Names))
	for _, n := range batch.Names {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, apperrors.NewValidationError("at least one department name is required", map[string]any{"names": "required"})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCreates)
	for _, name := range names {
		g.Go(func() error {
			_, err := s.departments.Create(gctx, batch.CompanyID, name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.EventDepartmentsCreated, actor, events.DepartmentsCreatedPayload{
		CompanyID: batch.CompanyID,
		Names:     names,
	}))
	return names, nil
}

func (s *OrganizationService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}
