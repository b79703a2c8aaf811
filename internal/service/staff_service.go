package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

// StaffService manages staff records.
type StaffService struct {
	staff      repository.StaffRepository
	attendance repository.AttendanceRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StaffDependencies bundles repositories for the staff service.
type StaffDependencies struct {
	StaffRepo      repository.StaffRepository
	AttendanceRepo repository.AttendanceRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// StaffSubmission is a create or update request from the staff form.
type StaffSubmission struct {
	Values map[string]string
	Photo  *RawFile
}

// StaffDetail is a staff record with its attendance history, newest first.
type StaffDetail struct {
	Staff      identity.Entity   `json:"staff"`
	Attendance []identity.Entity `json:"attendance"`
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	return &StaffService{
		staff:      deps.StaffRepo,
		attendance: deps.AttendanceRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// List returns all staff, or only those in departmentID when it is set.
func (s *StaffService) List(ctx context.Context, departmentID string) ([]identity.Entity, error) {
	if departmentID != "" {
		return s.staff.ListByDepartment(ctx, departmentID)
	}
	return s.staff.List(ctx)
}

// Get loads a staff member and their attendance together.
func (s *StaffService) Get(ctx context.Context, id string) (*StaffDetail, error) {
	var detail StaffDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		staff, err := s.staff.GetByID(gctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("staff", map[string]any{"id": id})
		}
		detail.Staff = staff
		return err
	})
	g.Go(func() error {
		records, err := s.Attendance(gctx, id)
		detail.Attendance = records
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Attendance returns the staff member's attendance, newest first.
func (s *StaffService) Attendance(ctx context.Context, id string) ([]identity.Entity, error) {
	records, err := s.attendance.ListForStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records, "date")
	return records, nil
}

// AttendanceLog returns every attendance record, newest first.
func (s *StaffService) AttendanceLog(ctx context.Context) ([]identity.Entity, error) {
	records, err := s.attendance.List(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records, "date")
	return records, nil
}

// Create registers a staff member.
func (s *StaffService) Create(ctx context.Context, actor events.Actor, in StaffSubmission) (any, error) {
	input, err := s.input(in)
	if err != nil {
		return nil, err
	}
	result, err := s.staff.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventStaffCreated, actor, events.StaffPayload{
		DepartmentID: in.Values["department_id"],
		WithPhoto:    input.Photo != nil,
	}))
	return result, nil
}

// Update edits a staff member. The password is never sent on update.
func (s *StaffService) Update(ctx context.Context, actor events.Actor, id string, in StaffSubmission) (any, error) {
	input, err := s.input(in)
	if err != nil {
		return nil, err
	}
	result, err := s.staff.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventStaffUpdated, actor, events.StaffPayload{
		StaffID:      id,
		DepartmentID: in.Values["department_id"],
		WithPhoto:    input.Photo != nil,
	}))
	return result, nil
}

// Delete is offered by the console but the remote API has no endpoint for it.
func (s *StaffService) Delete(context.Context, string) error {
	return apperrors.NewNotSupported("deleting staff is not supported by the remote API")
}

func (s *StaffService) input(in StaffSubmission) (domain.StaffInput, error) {
	photo, err := prepareImage(domain.StaffProfilePicField, in.Photo)
	if err != nil {
		return domain.StaffInput{}, err
	}
	return domain.StaffInput{Values: in.Values, Photo: photo}, nil
}

// sortNewestFirst orders entities by an ISO date field, descending. Entries
// without the field sink to the end.
func sortNewestFirst(entities []identity.Entity, field string) {
	sort.SliceStable(entities, func(i, j int) bool {
		return domain.StringField(entities[i].Record, field) > domain.StringField(entities[j].Record, field)
	})
}
