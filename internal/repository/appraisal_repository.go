package repository

import (
	"context"
	"net/url"
	"strconv"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// AppraisalRepository reads monthly appraisal listings.
type AppraisalRepository interface {
	Monthly(ctx context.Context, period domain.AppraisalPeriod) ([]identity.Entity, error)
}

type appraisalRepository struct {
	api  Remote
	path string
}

// NewAppraisalRepository instantiates the repository against the given listing path.
func NewAppraisalRepository(api Remote, path string) AppraisalRepository {
	if path == "" {
		path = "api/appraisals/monthly"
	}
	return &appraisalRepository{api: api, path: path}
}

func (r *appraisalRepository) Monthly(ctx context.Context, period domain.AppraisalPeriod) ([]identity.Entity, error) {
	query := url.Values{
		"userId": {period.UserID},
		"month":  {period.PaddedMonth()},
		"year":   {strconv.Itoa(period.Year)},
	}
	return listEntities(ctx, r.api, envelope.Appraisal, r.path, query)
}
