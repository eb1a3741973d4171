package domain

import "time"

// StatusCode identifies a lifecycle status symbolically, independent of its
// database id.
type StatusCode string

const (
	StatusCodeNew              StatusCode = "NEW"
	StatusCodeDocuments        StatusCode = "DOCUMENTS"
	StatusCodeSentToInsurer    StatusCode = "SENT_TO_INSURER"
	StatusCodePositiveDecision StatusCode = "POSITIVE_DECISION"
	StatusCodeNegativeDecision StatusCode = "NEGATIVE_DECISION"
	StatusCodeAppeal           StatusCode = "APPEAL"
	StatusCodeLawsuit          StatusCode = "LAWSUIT"
	StatusCodeClosed           StatusCode = "CLOSED"
)

// CaseStatus is a catalog entry describing one named state in the case
// lifecycle. Seeded at setup, never deleted while referenced.
type CaseStatus struct {
	ID        int
	Code      StatusCode
	Name      string
	Color     string
	SortOrder int
	IsFinal   bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
