package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/staff-console/internal/domain"
)

// CompanyForm is the company form; the logo travels as a file part.
type CompanyForm struct {
	Name     string `json:"name" form:"name" validate:"required,max=120"`
	Address  string `json:"address" form:"address"`
	BranchID string `json:"branch_id" form:"branch_id"`
}

// BranchRequest payload. Coordinates arrive as text and are sent as numbers.
type BranchRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=120"`
	Address      string `json:"address" form:"address"`
	LocationCity string `json:"location_city" form:"location_city"`
	GPSLat       string `json:"gps_lat" form:"gps_lat" validate:"required,latitude"`
	GPSLong      string `json:"gps_long" form:"gps_long" validate:"required,longitude"`
	RadiusMeters string `json:"radius_meters" form:"radius_meters" validate:"omitempty,numeric"`
	CompanyID    string `json:"company_id" form:"company_id"`
}

// Input converts a validated request.
func (r BranchRequest) Input() domain.BranchInput {
	lat, _ := strconv.ParseFloat(strings.TrimSpace(r.GPSLat), 64)
	long, _ := strconv.ParseFloat(strings.TrimSpace(r.GPSLong), 64)
	return domain.BranchInput{
		Name:         strings.TrimSpace(r.Name),
		Address:      strings.TrimSpace(r.Address),
		LocationCity: strings.TrimSpace(r.LocationCity),
		GPSLat:       lat,
		GPSLong:      long,
		RadiusMeters: strings.TrimSpace(r.RadiusMeters),
		CompanyID:    r.CompanyID,
	}
}

// DepartmentsRequest creates several departments under one company.
type DepartmentsRequest struct {
	CompanyID string   `json:"company_id"`
	Names     []string `json:"names" validate:"dive,max=120"`
}

// Batch converts the request.
func (r DepartmentsRequest) Batch() domain.DepartmentBatch {
	return domain.DepartmentBatch{CompanyID: strings.TrimSpace(r.CompanyID), Names: r.Names}
}

// SelectionRequest changes a dependent selection.
type SelectionRequest struct {
	ID string `json:"id" validate:"required"`
}

// SelectionResponse mirrors a selection cache.
type SelectionResponse struct {
	Selection string `json:"selection"`
	State     string `json:"state"`
	Items     any    `json:"items"`
	Error     string `json:"error,omitempty"`
	Version   uint64 `json:"version"`
}

// AppraisalQuery selects a month; zero values default to the current month.
type AppraisalQuery struct {
	Month int `query:"month" validate:"omitempty,min=1,max=12"`
	Year  int `query:"year" validate:"omitempty,min=1970,max=9999"`
}

// Period fills defaults from now.
func (q AppraisalQuery) Period(userID string, now time.Time) domain.AppraisalPeriod {
	p := domain.AppraisalPeriod{UserID: userID, Month: q.Month, Year: q.Year}
	if p.Month == 0 {
		p.Month = int(now.Month())
	}
	if p.Year == 0 {
		p.Year = now.Year()
	}
	return p
}
