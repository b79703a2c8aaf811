package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// StaffRepository reads and writes staff members through the remote API.
type StaffRepository interface {
	List(ctx context.Context) ([]identity.Entity, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]identity.Entity, error)
	GetByID(ctx context.Context, id string) (identity.Entity, error)
	Create(ctx context.Context, in domain.StaffInput) (any, error)
	Update(ctx context.Context, id string, in domain.StaffInput) (any, error)
}

type staffRepository struct {
	api Remote
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(api Remote) StaffRepository {
	return &staffRepository{api: api}
}

func (r *staffRepository) List(ctx context.Context) ([]identity.Entity, error) {
	return listEntities(ctx, r.api, envelope.Staff, "api/lookups/users", nil)
}

// ListByDepartment asks the API to filter and filters again locally, since the
// backend may ignore department_id and return everyone.
func (r *staffRepository) ListByDepartment(ctx context.Context, departmentID string) ([]identity.Entity, error) {
	all, err := listEntities(ctx, r.api, envelope.Staff, "api/lookups/users", url.Values{"department_id": {departmentID}})
	if err != nil {
		return nil, err
	}
	return filterEntities(all, func(rec envelope.Record) bool {
		return domain.DepartmentOf(rec) == departmentID
	}), nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (identity.Entity, error) {
	return getEntity(ctx, r.api, envelope.Staff, "api/lookups/users/"+escape(id), "data", "user")
}

func (r *staffRepository) Create(ctx context.Context, in domain.StaffInput) (any, error) {
	return r.submit(ctx, http.MethodPost, "api/auth/register", in)
}

// Update never sends a password.
func (r *staffRepository) Update(ctx context.Context, id string, in domain.StaffInput) (any, error) {
	values := make(map[string]string, len(in.Values))
	for k, v := range in.Values {
		if k != "password" {
			values[k] = v
		}
	}
	in.Values = values
	return r.submit(ctx, http.MethodPut, "api/auth/update/"+escape(id), in)
}

func (r *staffRepository) submit(ctx context.Context, method, path string, in domain.StaffInput) (any, error) {
	if in.Photo != nil {
		form := &apiclient.Form{}
		for _, field := range domain.StaffFields {
			if v, ok := in.Values[field]; ok && v != "" {
				form.Add(field, v)
			}
		}
		form.Attach(uploadFile(in.Photo))
		return r.api.Submit(ctx, method, path, form)
	}

	body := make(map[string]any, len(in.Values))
	for _, field := range domain.StaffFields {
		if v, ok := in.Values[field]; ok && v != "" {
			body[field] = jsonValue(field, v)
		}
	}
	if method == http.MethodPut {
		return r.api.Put(ctx, path, body)
	}
	return r.api.Post(ctx, path, body)
}
