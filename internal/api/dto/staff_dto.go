package dto

import (
	"strconv"
	"strings"

	"github.com/spec-kit/staff-console/internal/domain"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

var staffRules = map[string]any{
	"name":          "required,max=120",
	"email":         "required,email",
	"dob":           "omitempty,datetime=2006-01-02",
	"stats_score":   "omitempty,numeric",
	"leave_balance": "omitempty,numeric",
	"is_active":     "omitempty,oneof=true false",
}

// StaffForm is the staff create and update form keyed by field name.
type StaffForm map[string]string

// StaffFormFrom reads every staff field through get, trimmed.
func StaffFormFrom(get func(key string) string) StaffForm {
	form := make(StaffForm, len(domain.StaffFields))
	for _, field := range domain.StaffFields {
		form[field] = strings.TrimSpace(get(field))
	}
	return form
}

// StaffFormFromJSON reads a decoded JSON body. Numbers and booleans are
// accepted and kept in their text form.
func StaffFormFromJSON(body map[string]any) StaffForm {
	return StaffFormFrom(func(key string) string {
		switch v := body[key].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
		return ""
	})
}

// Validate checks the form; a password is required when creating.
func (f StaffForm) Validate(create bool) error {
	data := make(map[string]any, len(f))
	for k, v := range f {
		data[k] = v
	}
	rules := make(map[string]any, len(staffRules)+1)
	for k, v := range staffRules {
		rules[k] = v
	}
	if create {
		rules["password"] = "required,min=6"
	}

	failed := validate.ValidateMap(data, rules)
	if len(failed) == 0 {
		return nil
	}
	details := make(map[string]any, len(failed))
	for field := range failed {
		details[field] = rules[field]
	}
	return apperrors.NewValidationError(summary(details), details)
}

// Values returns the non-empty fields.
func (f StaffForm) Values() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
