package domain

import "time"

// DefaultTransitionComment is recorded when the caller supplies none.
const DefaultTransitionComment = "Status zmieniony"

// CaseCreatedComment is recorded on the initial history entry of a new case.
const CaseCreatedComment = "Sprawa utworzona"

// CaseStatusHistory is an immutable ledger entry for one status transition.
// FromStatusID is nil only on the entry written at case creation.
type CaseStatusHistory struct {
	ID              string
	CaseID          string
	FromStatusID    *int
	ToStatusID      int
	Comment         string
	ChangedByUserID string
	ChangedAt       time.Time
}

// CaseStatusHistoryView is a history entry joined with display data for the
// API read model.
type CaseStatusHistoryView struct {
	CaseStatusHistory
	FromStatusName  string
	FromStatusColor string
	ToStatusName    string
	ToStatusColor   string
	ChangedByName   string
}
