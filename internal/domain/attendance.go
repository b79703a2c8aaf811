package domain

import (
	"strings"
	"time"
)

// AttendanceStatus is the daily presence marker.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// PresentOn reports whether an attendance record marks presence on the given day.
// The record date is compared by its YYYY-MM-DD prefix.
func PresentOn(record map[string]any, day time.Time) bool {
	date := StringField(record, "date")
	if len(date) < 10 || date[:10] != day.Format("2006-01-02") {
		return false
	}
	return strings.EqualFold(StringField(record, "status"), string(AttendancePresent))
}
