package service

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
)

const (
	latestStaffCount   = 5
	latestTicketsCount = 3
)

// DashboardService summarises the workforce for the landing screen.
type DashboardService struct {
	staff      repository.StaffRepository
	tickets    repository.TicketRepository
	attendance repository.AttendanceRepository
	now        func() time.Time
}

// DepartmentShare is one slice of the department breakdown.
type DepartmentShare struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Dashboard is the landing screen summary.
type Dashboard struct {
	StaffCount    int               `json:"staff_count"`
	PresentToday  int               `json:"present_today"`
	Capacity      int               `json:"capacity_percent"`
	LatestStaff   []identity.Entity `json:"latest_staff"`
	LatestTickets []identity.Entity `json:"latest_tickets"`
	Departments   []DepartmentShare `json:"departments"`
}

// NewDashboardService constructs the service.
func NewDashboardService(staff repository.StaffRepository, tickets repository.TicketRepository, attendance repository.AttendanceRepository) *DashboardService {
	return &DashboardService{staff: staff, tickets: tickets, attendance: attendance, now: time.Now}
}

// Summary loads staff, tickets and attendance together and derives the figures.
func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	var staff, tickets, attendance []identity.Entity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		staff, err = s.staff.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		tickets, err = s.tickets.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		attendance, err = s.attendance.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := s.now().UTC()
	present := 0
	for _, rec := range attendance {
		if domain.PresentOn(rec.Record, today) {
			present++
		}
	}

	return &Dashboard{
		StaffCount:    len(staff),
		PresentToday:  present,
		Capacity:      capacity(present, len(staff)),
		LatestStaff:   latestStaff(staff, latestStaffCount),
		LatestTickets: latestTickets(tickets, latestTicketsCount),
		Departments:   departmentBreakdown(staff),
	}, nil
}

// capacity is the share of the workforce present, as a whole percent.
func capacity(present, total int) int {
	if total == 0 {
		total = 1
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

func latestStaff(staff []identity.Entity, n int) []identity.Entity {
	sorted := make([]identity.Entity, len(staff))
	copy(sorted, staff)
	sort.SliceStable(sorted, func(i, j int) bool {
		return createdAt(sorted[i]).After(createdAt(sorted[j]))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// latestTickets takes the last n tickets the remote API returned, newest first.
func latestTickets(tickets []identity.Entity, n int) []identity.Entity {
	if len(tickets) > n {
		tickets = tickets[len(tickets)-n:]
	}
	return reversed(tickets)
}

func departmentBreakdown(staff []identity.Entity) []DepartmentShare {
	counts := map[string]int{}
	var order []string
	for _, s := range staff {
		name := domain.DepartmentLabel(s.Record)
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}
	shares := make([]DepartmentShare, 0, len(order))
	for _, name := range order {
		shares = append(shares, DepartmentShare{
			Name:    name,
			Count:   counts[name],
			Percent: math.Round(float64(counts[name])/float64(len(staff))*1000) / 10,
		})
	}
	return shares
}

func createdAt(e identity.Entity) time.Time {
	raw := domain.StringField(e.Record, "createdAt")
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
