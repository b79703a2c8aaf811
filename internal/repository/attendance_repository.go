package repository

import (
	"context"
	"net/url"

	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// AttendanceRepository reads attendance status records.
type AttendanceRepository interface {
	List(ctx context.Context) ([]identity.Entity, error)
	ListForStaff(ctx context.Context, staffID string) ([]identity.Entity, error)
}

type attendanceRepository struct {
	api Remote
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(api Remote) AttendanceRepository {
	return &attendanceRepository{api: api}
}

func (r *attendanceRepository) List(ctx context.Context) ([]identity.Entity, error) {
	return r.fetch(ctx, nil)
}

func (r *attendanceRepository) ListForStaff(ctx context.Context, staffID string) ([]identity.Entity, error) {
	return r.fetch(ctx, url.Values{"staffId": {staffID}})
}

// fetch also accepts a lone record object, which the status endpoint returns
// when only one record matches.
func (r *attendanceRepository) fetch(ctx context.Context, query url.Values) ([]identity.Entity, error) {
	raw, err := r.api.Get(ctx, "api/attendance/status", query)
	if err != nil {
		return nil, err
	}
	records := envelope.Normalize(envelope.Attendance, raw)
	if len(records) == 0 {
		if rec, ok := envelope.Unwrap(raw, "data", "attendance", "record"); ok {
			if _, hasID := rec["_id"]; hasID {
				records = []envelope.Record{rec}
			}
		}
	}
	return identity.Assign(envelope.Attendance, records), nil
}
