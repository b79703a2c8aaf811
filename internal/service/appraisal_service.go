package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

// XLSXContentType is the media type of appraisal exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var appraisalColumns = []any{"Date", "Score", "MaxScore", "Comment", "Evaluator"}

// AppraisalService reads monthly appraisals and exports them.
type AppraisalService struct {
	appraisals repository.AppraisalRepository
}

// AppraisalReport is one staff member's appraisals for a month.
type AppraisalReport struct {
	UserID     string            `json:"user_id"`
	Month      int               `json:"month"`
	Year       int               `json:"year"`
	Average    float64           `json:"average_score"`
	Appraisals []identity.Entity `json:"appraisals"`
}

// NewAppraisalService constructs the service.
func NewAppraisalService(appraisals repository.AppraisalRepository) *AppraisalService {
	return &AppraisalService{appraisals: appraisals}
}

// Monthly loads the period and averages its scores.
func (s *AppraisalService) Monthly(ctx context.Context, period domain.AppraisalPeriod) (*AppraisalReport, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	items, err := s.appraisals.Monthly(ctx, period)
	if err != nil {
		return nil, err
	}
	return &AppraisalReport{
		UserID:     period.UserID,
		Month:      period.Month,
		Year:       period.Year,
		Average:    domain.AverageScore(identity.Records(items)),
		Appraisals: items,
	}, nil
}

// Export renders the period as a workbook and returns its download name.
func (s *AppraisalService) Export(ctx context.Context, period domain.AppraisalPeriod) (string, []byte, error) {
	report, err := s.Monthly(ctx, period)
	if err != nil {
		return "", nil, err
	}
	data, err := appraisalWorkbook(period, report.Appraisals)
	if err != nil {
		return "", nil, apperrors.NewInternalError(err)
	}
	return period.Filename(), data, nil
}

func appraisalWorkbook(period domain.AppraisalPeriod, items []identity.Entity) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := period.SheetName()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &appraisalColumns); err != nil {
		return nil, err
	}
	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := appraisalRow(item.Record)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appraisalRow(rec map[string]any) []any {
	date := domain.StringField(rec, "date")
	if len(date) >= 10 {
		date = date[:10]
	}
	var score any = ""
	if v, ok := domain.NumberField(rec, "score"); ok {
		score = v
	}
	var maxScore any = "-"
	if v, ok := domain.NumberField(rec, "maxScore"); ok && v != 0 {
		maxScore = v
	}
	comment := domain.StringField(rec, "comment")
	if comment == "" {
		comment = "-"
	}
	evaluator := domain.EvaluatorName(rec)
	if evaluator == "" {
		evaluator = "N/A"
	}
	return []any{date, score, maxScore, comment, evaluator}
}

func validatePeriod(p domain.AppraisalPeriod) error {
	details := map[string]any{}
	if p.UserID == "" {
		details["user_id"] = "required"
	}
	if p.Month < 1 || p.Month > 12 {
		details["month"] = fmt.Sprintf("%d is not a month", p.Month)
	}
	if p.Year < 1 {
		details["year"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid appraisal period", details)
	}
	return nil
}
