package dto

import "github.com/spec-kit/staff-console/internal/domain"

// IssueTicketRequest payload.
type IssueTicketRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	Severity     int    `json:"severity" validate:"omitempty,min=1,max=3"`
	TargetUserID string `json:"target_user_id" validate:"required"`
}

// Draft converts the request.
func (r IssueTicketRequest) Draft() domain.TicketDraft {
	return domain.TicketDraft{
		Title:        r.Title,
		Description:  r.Description,
		Severity:     domain.TicketSeverity(r.Severity),
		TargetUserID: r.TargetUserID,
	}
}
