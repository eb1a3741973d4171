package dto

import (
	"time"
)

// CreateCaseRequest payload.
type CreateCaseRequest struct {
	ClientID            string     `json:"clientId"`
	IncidentDate        *time.Time `json:"incidentDate"`
	StatusID            *FlexInt   `json:"statusId"`
	InsuranceCompanyID  *FlexInt   `json:"insuranceCompanyId"`
	AssignedAgentID     *string    `json:"assignedAgentId"`
	IncidentDescription string     `json:"incidentDescription"`
	IncidentLocation    string     `json:"incidentLocation"`
	PolicyNumber        string     `json:"policyNumber"`
	ClaimNumber         string     `json:"claimNumber"`
	ClaimValue          *float64   `json:"claimValue"`
	VehicleBrand        string     `json:"vehicleBrand"`
	VehicleModel        string     `json:"vehicleModel"`
	VehicleRegistration string     `json:"vehicleRegistration"`
	VehicleYear         *int       `json:"vehicleYear"`
	InternalNotes       string     `json:"internalNotes"`
}

// UpdateCaseRequest payload. Absent fields are left unchanged; a statusId runs
// the transition workflow.
type UpdateCaseRequest struct {
	StatusID             *FlexInt `json:"statusId"`
	StatusComment        *string  `json:"statusComment"`
	InsuranceCompanyID   *FlexInt `json:"insuranceCompanyId"`
	AssignedAgentID      *string  `json:"assignedAgentId"`
	IncidentDescription  *string  `json:"incidentDescription"`
	IncidentLocation     *string  `json:"incidentLocation"`
	PolicyNumber         *string  `json:"policyNumber"`
	ClaimNumber          *string  `json:"claimNumber"`
	ClaimValue           *float64 `json:"claimValue"`
	CompensationReceived *float64 `json:"compensationReceived"`
	VehicleBrand         *string  `json:"vehicleBrand"`
	VehicleModel         *string  `json:"vehicleModel"`
	VehicleRegistration  *string  `json:"vehicleRegistration"`
	VehicleYear          *int     `json:"vehicleYear"`
	InternalNotes        *string  `json:"internalNotes"`
}

// CaseSummary is a listing row.
type CaseSummary struct {
	ID           string    `json:"id"`
	CaseNumber   string    `json:"caseNumber"`
	ClientID     string    `json:"clientId"`
	ClientName   string    `json:"clientName"`
	StatusID     int       `json:"statusId"`
	StatusCode   string    `json:"statusCode"`
	StatusName   string    `json:"statusName"`
	StatusColor  string    `json:"statusColor"`
	IncidentDate time.Time `json:"incidentDate"`
	ClaimNumber  string    `json:"claimNumber,omitempty"`
	ClaimValue   *float64  `json:"claimValue,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CaseDetailResponse provides full case info including the status ledger.
type CaseDetailResponse struct {
	ID                   string                    `json:"id"`
	CaseNumber           string                    `json:"caseNumber"`
	Client               *ClientResponse           `json:"client"`
	Status               *CaseStatusResponse       `json:"status"`
	InsuranceCompany     *InsuranceCompanyResponse `json:"insuranceCompany,omitempty"`
	AssignedAgent        *UserResponse             `json:"assignedAgent,omitempty"`
	IncidentDate         time.Time                 `json:"incidentDate"`
	IncidentDescription  string                    `json:"incidentDescription,omitempty"`
	IncidentLocation     string                    `json:"incidentLocation,omitempty"`
	PolicyNumber         string                    `json:"policyNumber,omitempty"`
	ClaimNumber          string                    `json:"claimNumber,omitempty"`
	ClaimValue           *float64                  `json:"claimValue,omitempty"`
	CompensationReceived *float64                  `json:"compensationReceived,omitempty"`
	VehicleBrand         string                    `json:"vehicleBrand,omitempty"`
	VehicleModel         string                    `json:"vehicleModel,omitempty"`
	VehicleRegistration  string                    `json:"vehicleRegistration,omitempty"`
	VehicleYear          *int                      `json:"vehicleYear,omitempty"`
	InternalNotes        string                    `json:"internalNotes,omitempty"`
	DocumentsSentDate    *time.Time                `json:"documentsSentDate,omitempty"`
	DecisionDate         *time.Time                `json:"decisionDate,omitempty"`
	AppealDate           *time.Time                `json:"appealDate,omitempty"`
	LawsuitDate          *time.Time                `json:"lawsuitDate,omitempty"`
	ClosedDate           *time.Time                `json:"closedDate,omitempty"`
	StatusHistory        []CaseHistoryResponse     `json:"statusHistory"`
	CreatedAt            time.Time                 `json:"createdAt"`
	UpdatedAt            time.Time                 `json:"updatedAt"`
}

// CaseHistoryResponse is one ledger entry in a case detail.
type CaseHistoryResponse struct {
	ID              string    `json:"id"`
	FromStatusID    *int      `json:"fromStatusId"`
	FromStatusName  string    `json:"fromStatusName,omitempty"`
	FromStatusColor string    `json:"fromStatusColor,omitempty"`
	ToStatusID      int       `json:"toStatusId"`
	ToStatusName    string    `json:"toStatusName"`
	ToStatusColor   string    `json:"toStatusColor"`
	Comment         string    `json:"comment"`
	ChangedByID     string    `json:"changedById"`
	ChangedByName   string    `json:"changedByName,omitempty"`
	ChangedAt       time.Time `json:"changedAt"`
}

// CaseStatusResponse is a status catalog entry.
type CaseStatusResponse struct {
	ID        int    `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sortOrder"`
	IsFinal   bool   `json:"isFinal"`
}
