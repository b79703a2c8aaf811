package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/auth"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	"github.com/spec-kit/staff-console/internal/workspace"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

var (
	errNotFound = repository.ErrNotFound
	errBoom     = errors.New("boom")
	actor       = events.Actor{SessionID: "s1", UserID: "u9", Name: "Ada"}
)

func code(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newAuthService(t *testing.T, users *fakeUserRepo) (*AuthService, *workspace.Registry, *[]events.EventType) {
	t.Helper()
	registry := workspace.NewRegistry(repository.NewMemorySessionRepository(), workspace.Loaders{}, workspace.Options{TTL: time.Hour})
	d := events.NewInMemoryDispatcher()
	var seen []events.EventType
	d.SubscribeAll(func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Type)
		return nil
	})
	svc := NewAuthService(AuthDependencies{
		UserRepo:   users,
		Workspaces: registry,
		Tokens:     auth.NewTokenManager("secret", time.Hour),
		Dispatcher: d,
	})
	return svc, registry, &seen
}

func TestLoginOpensWorkspace(t *testing.T) {
	users := &fakeUserRepo{cred: domain.Credential{Token: "abc123", User: domain.UserProfile{"_id": "u1", "name": "Ada"}}}
	svc, registry, seen := newAuthService(t, users)

	res, err := svc.Login(context.Background(), " ada@example.com ", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Ada", res.User.Name())

	ws, err := registry.Get(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", ws.Session.Token())
	assert.Equal(t, []events.EventType{events.EventSignedIn}, *seen)

	require.NoError(t, svc.Logout(context.Background(), events.Actor{SessionID: res.SessionID}))
	_, err = registry.Get(context.Background(), res.SessionID)
	assert.ErrorIs(t, err, workspace.ErrNoWorkspace)
}

func TestLoginErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"endpoint missing", &apiclient.Error{Status: http.StatusNotFound, Message: "request failed: not found"}, "login endpoint not found"},
		{"no message", &apiclient.Error{Status: http.StatusUnauthorized, Message: "request failed: unauthorized"}, "invalid credentials"},
		{"missing token", repository.ErrMissingToken, "invalid credentials"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newAuthService(t, &fakeUserRepo{err: tc.err})
			_, err := svc.Login(context.Background(), "a@b.c", "pw")
			de := apperrors.ToDomainError(err)
			assert.Equal(t, "UNAUTHORIZED", de.Code)
			assert.Equal(t, tc.want, de.Message)
		})
	}

	svc, _, _ := newAuthService(t, &fakeUserRepo{})
	_, err := svc.Login(context.Background(), "", "pw")
	assert.Equal(t, "VALIDATION_FAILED", code(t, err))
}

func TestStaffCreateProcessesPhoto(t *testing.T) {
	repo := &fakeStaffRepo{}
	var seen []events.Event
	d := events.NewInMemoryDispatcher()
	d.Subscribe(events.EventStaffCreated, func(_ context.Context, e events.Event) error { seen = append(seen, e); return nil })
	svc := NewStaffService(StaffDependencies{StaffRepo: repo, AttendanceRepo: &fakeAttendanceRepo{}, Dispatcher: d})

	_, err := svc.Create(context.Background(), actor, StaffSubmission{
		Values: map[string]string{"name": "Ada", "department_id": "d1"},
		Photo:  &RawFile{Filename: "me.png", Content: bytes.NewReader(pngBytes(t, 2048, 1024))},
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	photo := repo.created[0].Photo
	require.NotNil(t, photo)
	assert.Equal(t, "me.jpg", photo.Filename)
	assert.Equal(t, domain.StaffProfilePicField, photo.Field)
	assert.Equal(t, "image/jpeg", photo.ContentType)

	require.Len(t, seen, 1)
	assert.Equal(t, events.StaffPayload{DepartmentID: "d1", WithPhoto: true}, seen[0].Payload)
}

func TestStaffCreateRejectsBadImage(t *testing.T) {
	repo := &fakeStaffRepo{}
	svc := NewStaffService(StaffDependencies{StaffRepo: repo, AttendanceRepo: &fakeAttendanceRepo{}})
	_, err := svc.Create(context.Background(), actor, StaffSubmission{
		Values: map[string]string{"name": "Ada"},
		Photo:  &RawFile{Filename: "me.png", Content: bytes.NewReader([]byte("not an image"))},
	})
	assert.Equal(t, "PROCESSING_FAILED", code(t, err))
	assert.Empty(t, repo.created)
}

func TestStaffDetailAndDelete(t *testing.T) {
	staff := entities(envelope.Staff, envelope.Record{"_id": "u1", "name": "Ada"})
	staffRepo := &fakeStaffRepo{byID: map[string]identity.Entity{"u1": staff[0]}}
	attendanceRepo := &fakeAttendanceRepo{perStaff: map[string][]identity.Entity{
		"u1": entities(envelope.Attendance,
			envelope.Record{"_id": "a1", "date": "2026-01-01"},
			envelope.Record{"_id": "a2", "date": "2026-01-03"}),
	}}
	svc := NewStaffService(StaffDependencies{StaffRepo: staffRepo, AttendanceRepo: attendanceRepo})

	detail, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", detail.Staff.Key)
	require.Len(t, detail.Attendance, 2)
	assert.Equal(t, "a2", detail.Attendance[0].Key)

	_, err = svc.Get(context.Background(), "nope")
	assert.Equal(t, "NOT_FOUND", code(t, err))

	assert.Equal(t, "NOT_SUPPORTED", code(t, svc.Delete(context.Background(), "u1")))
}

func TestCreateDepartmentsBatch(t *testing.T) {
	repo := &fakeDepartmentRepo{}
	var payload events.DepartmentsCreatedPayload
	d := events.NewInMemoryDispatcher()
	d.Subscribe(events.EventDepartmentsCreated, func(_ context.Context, e events.Event) error {
		payload = e.Payload.(events.DepartmentsCreatedPayload)
		return nil
	})
	svc := NewOrganizationService(OrganizationDependencies{DepartmentRepo: repo, Dispatcher: d})

	names, err := svc.CreateDepartments(context.Background(), actor, domain.DepartmentBatch{CompanyID: "c1", Names: []string{"Ops", " ", "", " Dev "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ops", "Dev"}, names)
	assert.ElementsMatch(t, []string{"Ops", "Dev"}, repo.created["c1"])
	assert.Equal(t, "c1", payload.CompanyID)

	_, err = svc.CreateDepartments(context.Background(), actor, domain.DepartmentBatch{CompanyID: "c1", Names: []string{" "}})
	assert.Equal(t, "VALIDATION_FAILED", code(t, err))
	_, err = svc.CreateDepartments(context.Background(), actor, domain.DepartmentBatch{Names: []string{"Ops"}})
	assert.Equal(t, "VALIDATION_FAILED", code(t, err))

	repo.failOn = "Bad"
	_, err = svc.CreateDepartments(context.Background(), actor, domain.DepartmentBatch{CompanyID: "c2", Names: []string{"Bad"}})
	assert.ErrorIs(t, err, errBoom)
}

func TestOverviewAndCompanyLogo(t *testing.T) {
	companies := &fakeCompanyRepo{list: entities(envelope.Company, envelope.Record{"name": "Acme"})}
	svc := NewOrganizationService(OrganizationDependencies{
		CompanyRepo: companies,
		BranchRepo:  &fakeBranchRepo{list: entities(envelope.Branch, envelope.Record{"_id": "b1"})},
	})
	org, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "company-0", org.Companies[0].Key)
	assert.Equal(t, "b1", org.Branches[0].Key)

	_, err = svc.CreateCompany(context.Background(), actor, CompanySubmission{
		Name: " Acme ",
		Logo: &RawFile{Filename: "logo.png", Content: bytes.NewReader(pngBytes(t, 10, 10))},
	})
	require.NoError(t, err)
	require.Len(t, companies.created, 1)
	assert.Equal(t, "Acme", companies.created[0].Name)
	assert.Equal(t, "logo.jpg", companies.created[0].Logo.Filename)

	_, err = svc.Branch(context.Background(), "missing")
	assert.Equal(t, "NOT_FOUND", code(t, err))
}

func TestTicketsNewestFirstWithNames(t *testing.T) {
	svc := NewTicketService(TicketDependencies{
		TicketRepo: &fakeTicketRepo{list: entities(envelope.Ticket,
			envelope.Record{"_id": "t1", "target_user_id": "u1"},
			envelope.Record{"_id": "t2", "target_user_id": "ghost"})},
		StaffRepo: &fakeStaffRepo{list: entities(envelope.Staff, envelope.Record{"_id": "u1", "name": "Ada"})},
	})
	views, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "t2", views[0].Ticket.Key)
	assert.Equal(t, UnknownUser, views[0].TargetName)
	assert.Equal(t, "Ada", views[1].TargetName)
}

func TestTicketTargetIgnoresSynthesizedStaffKeys(t *testing.T) {
	svc := NewTicketService(TicketDependencies{
		TicketRepo: &fakeTicketRepo{list: entities(envelope.Ticket,
			envelope.Record{"_id": "t1", "target_user_id": "staff-0"})},
		StaffRepo: &fakeStaffRepo{list: entities(envelope.Staff, envelope.Record{"name": "No Id"})},
	})
	views, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, UnknownUser, views[0].TargetName)
}

func TestIssueTicket(t *testing.T) {
	repo := &fakeTicketRepo{}
	svc := NewTicketService(TicketDependencies{TicketRepo: repo})
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.FixedZone("X", 3600)) }

	_, err := svc.Issue(context.Background(), actor, domain.TicketDraft{Title: " Late ", TargetUserID: "u1"})
	require.NoError(t, err)
	require.Len(t, repo.drafts, 1)
	d := repo.drafts[0]
	assert.Equal(t, "Late", d.Title)
	assert.Equal(t, domain.TicketSeverityLow, d.Severity)
	assert.Equal(t, "u9", d.IssuedByID)
	assert.Equal(t, "2026-02-01T09:00:00Z", d.Payload()["created_at"])

	_, err = svc.Issue(context.Background(), actor, domain.TicketDraft{Title: "x", TargetUserID: "u1", Severity: 4})
	assert.Equal(t, "VALIDATION_FAILED", code(t, err))
	_, err = svc.Issue(context.Background(), actor, domain.TicketDraft{Title: "x"})
	assert.Equal(t, "VALIDATION_FAILED", code(t, err))
}

func TestAppraisalReportAndExport(t *testing.T) {
	repo := &fakeAppraisalRepo{items: entities(envelope.Appraisal,
		envelope.Record{"_id": "p1", "date": "2026-03-02T08:00:00Z", "score": 8.0, "maxScore": 10.0, "comment": "good", "evaluator": map[string]any{"name": "Grace"}},
		envelope.Record{"_id": "p2", "date": "2026-03-09", "score": 7.0, "evaluator": "Linus"},
		envelope.Record{"_id": "p3", "score": 6.0})}
	svc := NewAppraisalService(repo)
	period := domain.AppraisalPeriod{UserID: "u1", Month: 3, Year: 2026}

	report, err := svc.Monthly(context.Background(), period)
	require.NoError(t, err)
	assert.Equal(t, 7.0, report.Average)
	assert.Equal(t, period, repo.got)

	name, data, err := svc.Export(context.Background(), period)
	require.NoError(t, err)
	assert.Equal(t, "Appraisals_u1_3_2026.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Appraisals 3-2026")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "Score", "MaxScore", "Comment", "Evaluator"}, rows[0])
	assert.Equal(t, []string{"2026-03-02", "8", "10", "good", "Grace"}, rows[1])
	assert.Equal(t, []string{"2026-03-09", "7", "-", "-", "Linus"}, rows[2])
	assert.Equal(t, "N/A", rows[3][4])

	_, err = svc.Monthly(context.Background(), domain.AppraisalPeriod{UserID: "u1", Month: 13, Year: 2026})
	assert.Equal(t, "VALIDATION_FAILED", code(t, err))
}

func TestDashboardSummary(t *testing.T) {
	staff := entities(envelope.Staff,
		envelope.Record{"_id": "u1", "createdAt": "2026-01-01T00:00:00Z", "department": map[string]any{"name": "Ops"}},
		envelope.Record{"_id": "u2", "createdAt": "2026-01-05T00:00:00Z", "department": "Dev"},
		envelope.Record{"_id": "u3", "createdAt": "2026-01-03T00:00:00Z"},
		envelope.Record{"_id": "u4", "department": map[string]any{"name": "Ops"}},
	)
	tickets := entities(envelope.Ticket,
		envelope.Record{"_id": "t1"}, envelope.Record{"_id": "t2"}, envelope.Record{"_id": "t3"}, envelope.Record{"_id": "t4"})
	attendance := entities(envelope.Attendance,
		envelope.Record{"_id": "a1", "date": "2026-01-10T07:59:00Z", "status": "present"},
		envelope.Record{"_id": "a2", "date": "2026-01-10", "status": "absent"},
		envelope.Record{"_id": "a3", "date": "2026-01-09", "status": "present"},
	)
	svc := NewDashboardService(&fakeStaffRepo{list: staff}, &fakeTicketRepo{list: tickets}, &fakeAttendanceRepo{all: attendance})
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }

	dash, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, dash.StaffCount)
	assert.Equal(t, 1, dash.PresentToday)
	assert.Equal(t, 25, dash.Capacity)

	keys := func(list []identity.Entity) []string {
		out := make([]string, len(list))
		for i, e := range list {
			out[i] = e.Key
		}
		return out
	}
	assert.Equal(t, []string{"u2", "u3", "u1", "u4"}, keys(dash.LatestStaff))
	assert.Equal(t, []string{"t4", "t3", "t2"}, keys(dash.LatestTickets))
	assert.Equal(t, []DepartmentShare{
		{Name: "Ops", Count: 2, Percent: 50},
		{Name: "Dev", Count: 1, Percent: 25},
		{Name: "General", Count: 1, Percent: 25},
	}, dash.Departments)
}

func TestCapacityWithNoStaff(t *testing.T) {
	assert.Equal(t, 0, capacity(0, 0))
	assert.Equal(t, 300, capacity(3, 1))
}
