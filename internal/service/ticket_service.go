package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

// UnknownUser labels a ticket whose target is not among the listed staff.
const UnknownUser = "Unknown User"

// TicketService issues and lists disciplinary tickets.
type TicketService struct {
	tickets    repository.TicketRepository
	staff      repository.StaffRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketView is a ticket with its target's display name resolved.
type TicketView struct {
	Ticket     identity.Entity `json:"ticket"`
	TargetName string          `json:"target_name"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		staff:      deps.StaffRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        time.Now,
	}
}

// List returns tickets newest first, each with the target staff name.
func (s *TicketService) List(ctx context.Context) ([]TicketView, error) {
	var tickets, staff []identity.Entity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tickets, err = s.tickets.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		staff, err = s.staff.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolveTargets(reversed(tickets), identity.GenuineIndex(staff)), nil
}

// Issue creates an OPEN ticket against a staff member.
func (s *TicketService) Issue(ctx context.Context, actor events.Actor, draft domain.TicketDraft) (any, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" || draft.TargetUserID == "" {
		return nil, apperrors.NewValidationError("title and target staff are required", nil)
	}
	if draft.Severity == 0 {
		draft.Severity = domain.TicketSeverityLow
	}
	if draft.Severity < domain.TicketSeverityLow || draft.Severity > domain.TicketSeverityHigh {
		return nil, apperrors.NewValidationError("severity must be between 1 and 3", map[string]any{"severity": int(draft.Severity)})
	}
	if draft.IssuedByID == "" {
		draft.IssuedByID = actor.UserID
	}
	draft.CreatedAt = s.now()

	result, err := s.tickets.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketIssued, actor, events.TicketIssuedPayload{
		TargetUserID: draft.TargetUserID,
		Title:        draft.Title,
		Severity:     int(draft.Severity),
	}))
	return result, nil
}

func resolveTargets(tickets []identity.Entity, staff map[string]identity.Entity) []TicketView {
	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		name := UnknownUser
		if target, ok := staff[domain.StringField(t.Record, "target_user_id")]; ok {
			if n := domain.StringField(target.Record, "name"); n != "" {
				name = n
			}
		}
		views = append(views, TicketView{Ticket: t, TargetName: name})
	}
	return views
}

// reversed returns a reversed copy; the remote API lists oldest first.
func reversed(in []identity.Entity) []identity.Entity {
	out := make([]identity.Entity, len(in))
	for i, e := range in {
		out[len(in)-1-i] = e
	}
	return out
}
