package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated       EventType = "case_created"
	EventCaseStatusChanged EventType = "case_status_changed"
	EventCaseDeleted       EventType = "case_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	CaseNumber string `json:"case_number"`
	ClientID   string `json:"client_id"`
	StatusID   int    `json:"status_id"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	FromStatusID int    `json:"from_status_id"`
	ToStatusID   int    `json:"to_status_id"`
	Comment      string `json:"comment,omitempty"`
}

// CaseDeletedPayload payload.
type CaseDeletedPayload struct {
	CaseNumber string `json:"case_number"`
}
