package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

// TicketSeverity ranks how serious an issued ticket is, 1 being the lowest.
type TicketSeverity int

const (
	TicketSeverityLow    TicketSeverity = 1
	TicketSeverityMedium TicketSeverity = 2
	TicketSeverityHigh   TicketSeverity = 3
)

// TicketDraft is a ticket about to be issued against a staff member.
type TicketDraft struct {
	Title        string
	Description  string
	Severity     TicketSeverity
	TargetUserID string
	IssuedByID   string
	CreatedAt    time.Time
}

// Payload renders the draft in the shape the tickets endpoint expects.
func (d TicketDraft) Payload() map[string]any {
	severity := d.Severity
	if severity == 0 {
		severity = TicketSeverityLow
	}
	payload := map[string]any{
		"title":          d.Title,
		"description":    d.Description,
		"severity":       int(severity),
		"status":         TicketStatusOpen,
		"target_user_id": d.TargetUserID,
		"created_at":     d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if d.IssuedByID != "" {
		payload["issued_by_id"] = d.IssuedByID
	}
	return payload
}
