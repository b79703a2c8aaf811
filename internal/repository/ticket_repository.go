package repository

import (
	"context"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// TicketRepository handles tickets through the remote API.
type TicketRepository interface {
	List(ctx context.Context) ([]identity.Entity, error)
	Create(ctx context.Context, draft domain.TicketDraft) (any, error)
}

type ticketRepository struct {
	api Remote
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(api Remote) TicketRepository {
	return &ticketRepository{api: api}
}

func (r *ticketRepository) List(ctx context.Context) ([]identity.Entity, error) {
	return listEntities(ctx, r.api, envelope.Ticket, "api/tickets", nil)
}

func (r *ticketRepository) Create(ctx context.Context, draft domain.TicketDraft) (any, error) {
	return r.api.Post(ctx, "api/tickets", draft.Payload())
}
