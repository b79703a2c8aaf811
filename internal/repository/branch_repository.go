package repository

import (
	"context"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// BranchRepository handles branches through the remote API.
type BranchRepository interface {
	List(ctx context.Context) ([]identity.Entity, error)
	GetByID(ctx context.Context, id string) (identity.Entity, error)
	Create(ctx context.Context, in domain.BranchInput) (any, error)
	Delete(ctx context.Context, id string) error
}

type branchRepository struct {
	api Remote
}

// NewBranchRepository instantiates the repository.
func NewBranchRepository(api Remote) BranchRepository {
	return &branchRepository{api: api}
}

func (r *branchRepository) List(ctx context.Context) ([]identity.Entity, error) {
	return listEntities(ctx, r.api, envelope.Branch, "api/branches", nil)
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (identity.Entity, error) {
	return getEntity(ctx, r.api, envelope.Branch, "api/branches/"+escape(id), "data", "branch")
}

func (r *branchRepository) Create(ctx context.Context, in domain.BranchInput) (any, error) {
	return r.api.Post(ctx, "api/branches", in.Payload())
}

func (r *branchRepository) Delete(ctx context.Context, id string) error {
	_, err := r.api.Delete(ctx, "api/branches/"+escape(id))
	return err
}
