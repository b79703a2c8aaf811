package service

import (
	"context"
	"sync"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

func entities(kind envelope.Kind, recs ...envelope.Record) []identity.Entity {
	return identity.Assign(kind, recs)
}

type fakeStaffRepo struct {
	list    []identity.Entity
	byID    map[string]identity.Entity
	created []domain.StaffInput
	updated map[string]domain.StaffInput
	err     error
}

func (f *fakeStaffRepo) List(context.Context) ([]identity.Entity, error) { return f.list, f.err }

func (f *fakeStaffRepo) ListByDepartment(_ context.Context, dept string) ([]identity.Entity, error) {
	var out []identity.Entity
	for _, e := range f.list {
		if domain.DepartmentOf(e.Record) == dept {
			out = append(out, e)
		}
	}
	return out, f.err
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id string) (identity.Entity, error) {
	e, ok := f.byID[id]
	if !ok {
		return identity.Entity{}, errNotFound
	}
	return e, nil
}

func (f *fakeStaffRepo) Create(_ context.Context, in domain.StaffInput) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return map[string]any{"message": "created"}, nil
}

func (f *fakeStaffRepo) Update(_ context.Context, id string, in domain.StaffInput) (any, error) {
	if f.updated == nil {
		f.updated = map[string]domain.StaffInput{}
	}
	f.updated[id] = in
	return map[string]any{}, f.err
}

type fakeAttendanceRepo struct {
	all      []identity.Entity
	perStaff map[string][]identity.Entity
}

func (f *fakeAttendanceRepo) List(context.Context) ([]identity.Entity, error) { return f.all, nil }

func (f *fakeAttendanceRepo) ListForStaff(_ context.Context, id string) ([]identity.Entity, error) {
	return f.perStaff[id], nil
}

type fakeTicketRepo struct {
	list   []identity.Entity
	drafts []domain.TicketDraft
}

func (f *fakeTicketRepo) List(context.Context) ([]identity.Entity, error) { return f.list, nil }

func (f *fakeTicketRepo) Create(_ context.Context, d domain.TicketDraft) (any, error) {
	f.drafts = append(f.drafts, d)
	return map[string]any{"ok": true}, nil
}

type fakeDepartmentRepo struct {
	mu      sync.Mutex
	created map[string][]string
	failOn  string
}

func (f *fakeDepartmentRepo) List(context.Context) ([]identity.Entity, error) { return nil, nil }

func (f *fakeDepartmentRepo) ListByCompany(context.Context, string) ([]identity.Entity, error) {
	return nil, nil
}

func (f *fakeDepartmentRepo) GetByID(context.Context, string) (identity.Entity, error) {
	return identity.Entity{}, errNotFound
}

func (f *fakeDepartmentRepo) Create(_ context.Context, companyID, name string) (any, error) {
	if name == f.failOn {
		return nil, errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.created == nil {
		f.created = map[string][]string{}
	}
	f.created[companyID] = append(f.created[companyID], name)
	return nil, nil
}

type fakeCompanyRepo struct {
	list    []identity.Entity
	created []domain.CompanyInput
}

func (f *fakeCompanyRepo) List(context.Context) ([]identity.Entity, error) { return f.list, nil }

func (f *fakeCompanyRepo) Create(_ context.Context, in domain.CompanyInput) (any, error) {
	f.created = append(f.created, in)
	return nil, nil
}

func (f *fakeCompanyRepo) Delete(context.Context, string) error { return nil }

type fakeBranchRepo struct {
	list []identity.Entity
}

func (f *fakeBranchRepo) List(context.Context) ([]identity.Entity, error) { return f.list, nil }

func (f *fakeBranchRepo) GetByID(context.Context, string) (identity.Entity, error) {
	return identity.Entity{}, errNotFound
}

func (f *fakeBranchRepo) Create(context.Context, domain.BranchInput) (any, error) { return nil, nil }

func (f *fakeBranchRepo) Delete(context.Context, string) error { return nil }

type fakeAppraisalRepo struct {
	items []identity.Entity
	got   domain.AppraisalPeriod
}

func (f *fakeAppraisalRepo) Monthly(_ context.Context, p domain.AppraisalPeriod) ([]identity.Entity, error) {
	f.got = p
	return f.items, nil
}

type fakeUserRepo struct {
	cred domain.Credential
	err  error
}

func (f *fakeUserRepo) Login(context.Context, string, string) (domain.Credential, error) {
	return f.cred, f.err
}

func (f *fakeUserRepo) Me(context.Context) (identity.Entity, error) {
	return identity.Entity{Key: "u1", Record: map[string]any{"_id": "u1"}}, nil
}

func (f *fakeUserRepo) Roles(context.Context) ([]identity.Entity, error) { return nil, nil }
