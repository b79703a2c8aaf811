package repository

import (
	"context"
	"net/http"

	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// CompanyRepository handles companies through the remote API.
type CompanyRepository interface {
	List(ctx context.Context) ([]identity.Entity, error)
	Create(ctx context.Context, in domain.CompanyInput) (any, error)
	Delete(ctx context.Context, id string) error
}

type companyRepository struct {
	api Remote
}

// NewCompanyRepository instantiates the repository.
func NewCompanyRepository(api Remote) CompanyRepository {
	return &companyRepository{api: api}
}

func (r *companyRepository) List(ctx context.Context) ([]identity.Entity, error) {
	return listEntities(ctx, r.api, envelope.Company, "api/companies", nil)
}

// Create posts multipart when a logo is attached and JSON otherwise.
func (r *companyRepository) Create(ctx context.Context, in domain.CompanyInput) (any, error) {
	if in.Logo == nil {
		body := map[string]string{"name": in.Name}
		if in.Address != "" {
			body["address"] = in.Address
		}
		if in.BranchID != "" {
			body["branch_id"] = in.BranchID
		}
		return r.api.Post(ctx, "api/companies", body)
	}

	form := &apiclient.Form{}
	form.Add("name", in.Name)
	if in.Address != "" {
		form.Add("address", in.Address)
	}
	if in.BranchID != "" {
		form.Add("branch_id", in.BranchID)
	}
	form.Attach(uploadFile(in.Logo))
	return r.api.Submit(ctx, http.MethodPost, "api/companies", form)
}

func (r *companyRepository) Delete(ctx context.Context, id string) error {
	_, err := r.api.Delete(ctx, "api/companies/"+escape(id))
	return err
}
