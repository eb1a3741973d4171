package domain

import "time"

// Case is the aggregate root for a single claim. StatusID is only written by
// the transition workflow; milestone dates are each set at most once, the
// first time the matching transition happens.
type Case struct {
	ID         string
	CaseNumber string

	ClientID           string
	StatusID           int
	InsuranceCompanyID *int
	AssignedAgentID    *string

	IncidentDate         time.Time
	IncidentDescription  string
	IncidentLocation     string
	PolicyNumber         string
	ClaimNumber          string
	ClaimValue           *float64
	CompensationReceived *float64

	VehicleBrand        string
	VehicleModel        string
	VehicleRegistration string
	VehicleYear         *int

	InternalNotes string

	DocumentsSentDate *time.Time
	DecisionDate      *time.Time
	AppealDate        *time.Time
	LawsuitDate       *time.Time
	ClosedDate        *time.Time

	CreatedByUserID string
	UpdatedByUserID *string
	DeletedByUserID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Deleted reports whether the case was soft-deleted.
func (c *Case) Deleted() bool {
	return c.DeletedAt != nil
}
