package repository

import (
	"context"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// DepartmentRepository handles departments through the remote API.
type DepartmentRepository interface {
	List(ctx context.Context) ([]identity.Entity, error)
	ListByCompany(ctx context.Context, companyID string) ([]identity.Entity, error)
	GetByID(ctx context.Context, id string) (identity.Entity, error)
	Create(ctx context.Context, companyID, name string) (any, error)
}

type departmentRepository struct {
	api Remote
}

// NewDepartmentRepository instantiates the repository.
func NewDepartmentRepository(api Remote) DepartmentRepository {
	return &departmentRepository{api: api}
}

func (r *departmentRepository) List(ctx context.Context) ([]identity.Entity, error) {
	return listEntities(ctx, r.api, envelope.Department, "api/departments", nil)
}

// ListByCompany filters the department list locally; the API has no company filter.
func (r *departmentRepository) ListByCompany(ctx context.Context, companyID string) ([]identity.Entity, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterEntities(all, func(rec envelope.Record) bool {
		if domain.StringField(rec, "company_id") == companyID {
			return true
		}
		if company, ok := rec["company"].(map[string]any); ok {
			return domain.StringField(company, "_id") == companyID || domain.StringField(company, "id") == companyID
		}
		return false
	}), nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (identity.Entity, error) {
	return getEntity(ctx, r.api, envelope.Department, "api/departments/"+escape(id), "data", "department")
}

func (r *departmentRepository) Create(ctx context.Context, companyID, name string) (any, error) {
	return r.api.Post(ctx, "api/departments", map[string]string{"name": name, "company_id": companyID})
}
