package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignedIn           EventType = "signed_in"
	EventSignedOut          EventType = "signed_out"
	EventStaffCreated       EventType = "staff_created"
	EventStaffUpdated       EventType = "staff_updated"
	EventCompanyCreated     EventType = "company_created"
	EventCompanyDeleted     EventType = "company_deleted"
	EventBranchCreated      EventType = "branch_created"
	EventBranchDeleted      EventType = "branch_deleted"
	EventDepartmentsCreated EventType = "departments_created"
	EventTicketIssued       EventType = "ticket_issued"
)

// AllTypes lists every event type.
var AllTypes = []EventType{
	EventSignedIn, EventSignedOut,
	EventStaffCreated, EventStaffUpdated,
	EventCompanyCreated, EventCompanyDeleted,
	EventBranchCreated, EventBranchDeleted,
	EventDepartmentsCreated, EventTicketIssued,
}

// Actor identifies the operator behind an event.
type Actor struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Event represents a console action that succeeded upstream.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// StaffPayload payload.
type StaffPayload struct {
	StaffID      string `json:"staff_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	WithPhoto    bool   `json:"with_photo"`
}

// OrganizationPayload payload for company and branch changes.
type OrganizationPayload struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// DepartmentsCreatedPayload payload.
type DepartmentsCreatedPayload struct {
	CompanyID string   `json:"company_id"`
	Names     []string `json:"names"`
}

// TicketIssuedPayload payload.
type TicketIssuedPayload struct {
	TargetUserID string `json:"target_user_id"`
	Title        string `json:"title"`
	Severity     int    `json:"severity"`
}
