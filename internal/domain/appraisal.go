package domain

import (
	"fmt"
	"math"
)

// AppraisalPeriod selects one calendar month of appraisals for a staff member.
type AppraisalPeriod struct {
	UserID string
	Month  int
	Year   int
}

// PaddedMonth returns the month as two digits.
func (p AppraisalPeriod) PaddedMonth() string {
	return fmt.Sprintf("%02d", p.Month)
}

// SheetName is the worksheet title of an export.
func (p AppraisalPeriod) SheetName() string {
	return fmt.Sprintf("Appraisals %d-%d", p.Month, p.Year)
}

// Filename is the download name of an export.
func (p AppraisalPeriod) Filename() string {
	return fmt.Sprintf("Appraisals_%s_%d_%d.xlsx", p.UserID, p.Month, p.Year)
}

// AverageScore returns the mean `score` rounded to one decimal, or 0 for no records.
func AverageScore(records []map[string]any) float64 {
	if len(records) == 0 {
		return 0
	}
	var total float64
	for _, r := range records {
		if v, ok := NumberField(r, "score"); ok {
			total += v
		}
	}
	return math.Round(total/float64(len(records))*10) / 10
}

// EvaluatorName returns the evaluator's name whether it is an object or a string.
func EvaluatorName(record map[string]any) string {
	switch v := record["evaluator"].(type) {
	case map[string]any:
		return StringField(v, "name")
	case string:
		return v
	}
	return ""
}
