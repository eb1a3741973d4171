package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/events"
	"github.com/securohelp/case-service/internal/repository"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

// caseNumberAttempts bounds the retry loop around sequence allocation when a
// concurrent creation wins the same case number.
const caseNumberAttempts = 3

// CaseService owns the case lifecycle: creation with number allocation,
// listing, field updates, soft deletion, and the status transition workflow
// with its audit ledger. It is the only writer of Case.StatusID.
type CaseService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

// NewCaseService constructs the service.
func NewCaseService(store repository.Store, dispatcher events.Dispatcher) *CaseService {
	return &CaseService{store: store, dispatcher: dispatcher}
}

// CaseCreateInput describes case creation payload.
type CaseCreateInput struct {
	ClientID            string
	IncidentDate        *time.Time
	StatusID            *int
	InsuranceCompanyID  *int
	AssignedAgentID     *string
	IncidentDescription string
	IncidentLocation    string
	PolicyNumber        string
	ClaimNumber         string
	ClaimValue          *float64
	VehicleBrand        string
	VehicleModel        string
	VehicleRegistration string
	VehicleYear         *int
	InternalNotes       string
}

// CaseUpdateInput is a field-level patch. Nil means "leave unchanged".
// StatusID is routed through the transition workflow, never written directly.
type CaseUpdateInput struct {
	StatusID             *int
	StatusComment        *string
	InsuranceCompanyID   *int
	AssignedAgentID      *string
	IncidentDescription  *string
	IncidentLocation     *string
	PolicyNumber         *string
	ClaimNumber          *string
	ClaimValue           *float64
	CompensationReceived *float64
	VehicleBrand         *string
	VehicleModel         *string
	VehicleRegistration  *string
	VehicleYear          *int
	InternalNotes        *string
}

// CaseListFilter describes listing parameters.
type CaseListFilter struct {
	SearchTerm      *string
	StatusCode      *domain.StatusCode
	ClientID        *string
	AssignedAgentID *string
	Page            int
	Limit           int
}

// CaseListItem is a case joined with the display fields listings need.
type CaseListItem struct {
	Case        domain.Case
	ClientName  string
	StatusCode  domain.StatusCode
	StatusName  string
	StatusColor string
}

// CaseDetail is the full read model for a single case.
type CaseDetail struct {
	Case             domain.Case
	Client           *domain.Client
	Status           *domain.CaseStatus
	InsuranceCompany *domain.InsuranceCompany
	AssignedAgent    *domain.User
	History          []domain.CaseStatusHistoryView
}

// CreateCase allocates a case number, writes the case and its initial history
// entry in one transaction, and publishes a creation event.
func (s *CaseService) CreateCase(ctx context.Context, actorID string, input CaseCreateInput) (*domain.Case, error) {
	if input.ClientID == "" || input.IncidentDate == nil {
		return nil, apperrors.NewValidationError("clientId and incidentDate are required", nil)
	}
	if err := s.requireActiveUser(ctx, actorID); err != nil {
		return nil, err
	}

	client, err := s.store.Clients().GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, lookupError(err, "client", map[string]any{"clientId": input.ClientID})
	}
	if client.DeletedAt != nil {
		return nil, apperrors.NewNotFound("client", map[string]any{"clientId": input.ClientID})
	}

	statusID, err := s.resolveInitialStatus(ctx, input.StatusID)
	if err != nil {
		return nil, err
	}

	c := &domain.Case{
		ID:                  uuid.NewString(),
		ClientID:            input.ClientID,
		StatusID:            statusID,
		InsuranceCompanyID:  input.InsuranceCompanyID,
		AssignedAgentID:     input.AssignedAgentID,
		IncidentDate:        *input.IncidentDate,
		IncidentDescription: strings.TrimSpace(input.IncidentDescription),
		IncidentLocation:    strings.TrimSpace(input.IncidentLocation),
		PolicyNumber:        input.PolicyNumber,
		ClaimNumber:         input.ClaimNumber,
		ClaimValue:          input.ClaimValue,
		VehicleBrand:        input.VehicleBrand,
		VehicleModel:        input.VehicleModel,
		VehicleRegistration: input.VehicleRegistration,
		VehicleYear:         input.VehicleYear,
		InternalNotes:       input.InternalNotes,
		CreatedByUserID:     actorID,
	}

	// Allocation and the two writes share a transaction so the case never
	// exists without its first ledger entry. A lost race on the number's
	// unique constraint rolls back and retries with a fresh sequence.
	var lastErr error
	for attempt := 0; attempt < caseNumberAttempts; attempt++ {
		lastErr = s.store.InTx(ctx, func(tx repository.Store) error {
			number, err := nextCaseNumber(ctx, tx, time.Now())
			if err != nil {
				return err
			}
			c.CaseNumber = number
			if err := tx.Cases().Create(ctx, c); err != nil {
				return err
			}
			return tx.History().Create(ctx, &domain.CaseStatusHistory{
				ID:              uuid.NewString(),
				CaseID:          c.ID,
				FromStatusID:    nil,
				ToStatusID:      c.StatusID,
				Comment:         domain.CaseCreatedComment,
				ChangedByUserID: actorID,
			})
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, repository.ErrDuplicate) {
			return nil, persistenceError(lastErr)
		}
	}
	if lastErr != nil {
		return nil, persistenceError(lastErr)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseCreated,
		CaseID:  c.ID,
		ActorID: actorID,
		Payload: events.CaseCreatedPayload{
			CaseNumber: c.CaseNumber,
			ClientID:   c.ClientID,
			StatusID:   c.StatusID,
		},
	})
	return c, nil
}

// ApplyTransition is the sole authorized path for changing a case's status.
// Requesting the current status is a no-op. The case update and the ledger
// append happen in one transaction with the case row locked, so concurrent
// transitions on the same case serialize and exactly one wins at a time.
func (s *CaseService) ApplyTransition(ctx context.Context, caseID string, requestedStatusID int, comment, actingUserID string) (*domain.Case, error) {
	if err := s.requireActiveUser(ctx, actingUserID); err != nil {
		return nil, err
	}

	var updated *domain.Case
	var changed bool
	var fromStatusID int
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		c, err := tx.Cases().GetForUpdate(ctx, caseID)
		if err != nil {
			return lookupError(err, "case", map[string]any{"caseId": caseID})
		}
		if c.Deleted() {
			return apperrors.NewNotFound("case", map[string]any{"caseId": caseID})
		}
		fromStatusID = c.StatusID
		changed, err = s.transitionLocked(ctx, tx, c, requestedStatusID, comment, actingUserID)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Cases().Update(ctx, c); err != nil {
				return err
			}
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	if changed {
		s.publishTransition(ctx, updated, fromStatusID, comment, actingUserID)
	}
	return updated, nil
}

// transitionLocked validates the requested status and mutates c in place:
// new status id, first-time milestone dates, updated-by. It appends the
// ledger entry through tx but leaves persisting c to the caller, so a field
// patch can ride in the same transaction. Returns false when the request is
// a no-op.
func (s *CaseService) transitionLocked(ctx context.Context, tx repository.Store, c *domain.Case, requestedStatusID int, comment, actingUserID string) (bool, error) {
	if c.StatusID == requestedStatusID {
		return false, nil
	}

	status, err := tx.Statuses().GetByID(ctx, requestedStatusID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperrors.NewInvalidStatus(fmt.Sprintf("status %d does not exist", requestedStatusID))
		}
		return false, err
	}
	if !status.IsActive {
		return false, apperrors.NewInvalidStatus(fmt.Sprintf("status %s is not selectable", status.Code))
	}

	if strings.TrimSpace(comment) == "" {
		comment = domain.DefaultTransitionComment
	}

	previousStatusID := c.StatusID
	now := time.Now()
	applyMilestones(c, status, now)
	c.StatusID = status.ID
	c.UpdatedByUserID = &actingUserID

	entry := &domain.CaseStatusHistory{
		ID:              uuid.NewString(),
		CaseID:          c.ID,
		FromStatusID:    &previousStatusID,
		ToStatusID:      status.ID,
		Comment:         comment,
		ChangedByUserID: actingUserID,
	}
	if err := tx.History().Create(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

// applyMilestones derives timestamp side effects from the destination status.
// Each date is first-write-only: a later transition through the same kind of
// status never overwrites it.
func applyMilestones(c *domain.Case, status *domain.CaseStatus, now time.Time) {
	switch status.Code {
	case domain.StatusCodeSentToInsurer:
		if c.DocumentsSentDate == nil {
			c.DocumentsSentDate = &now
		}
	case domain.StatusCodePositiveDecision, domain.StatusCodeNegativeDecision:
		if c.DecisionDate == nil {
			c.DecisionDate = &now
		}
	case domain.StatusCodeAppeal:
		if c.AppealDate == nil {
			c.AppealDate = &now
		}
	case domain.StatusCodeLawsuit:
		if c.LawsuitDate == nil {
			c.LawsuitDate = &now
		}
	}
	if status.IsFinal && c.ClosedDate == nil {
		c.ClosedDate = &now
	}
}

// UpdateCase applies a field-level patch; when the patch carries a different
// statusId the transition workflow runs inside the same transaction.
func (s *CaseService) UpdateCase(ctx context.Context, actorID, caseID string, input CaseUpdateInput) (*CaseDetail, error) {
	if err := s.requireActiveUser(ctx, actorID); err != nil {
		return nil, err
	}

	var transitioned bool
	var fromStatusID int
	var comment string
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		c, err := tx.Cases().GetForUpdate(ctx, caseID)
		if err != nil {
			return lookupError(err, "case", map[string]any{"caseId": caseID})
		}
		if c.Deleted() {
			return apperrors.NewNotFound("case", map[string]any{"caseId": caseID})
		}

		applyPatch(c, input)
		c.UpdatedByUserID = &actorID

		if input.StatusID != nil {
			fromStatusID = c.StatusID
			if input.StatusComment != nil {
				comment = *input.StatusComment
			}
			transitioned, err = s.transitionLocked(ctx, tx, c, *input.StatusID, comment, actorID)
			if err != nil {
				return err
			}
		}
		return tx.Cases().Update(ctx, c)
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	if transitioned {
		if updated, err := s.store.Cases().GetByID(ctx, caseID); err == nil {
			s.publishTransition(ctx, updated, fromStatusID, comment, actorID)
		}
	}
	return s.GetCase(ctx, caseID)
}

// applyPatch copies the provided fields onto the case. StatusID is handled
// separately by the transition workflow.
func applyPatch(c *domain.Case, input CaseUpdateInput) {
	if input.InsuranceCompanyID != nil {
		c.InsuranceCompanyID = input.InsuranceCompanyID
	}
	if input.AssignedAgentID != nil {
		c.AssignedAgentID = input.AssignedAgentID
	}
	if input.IncidentDescription != nil {
		c.IncidentDescription = *input.IncidentDescription
	}
	if input.IncidentLocation != nil {
		c.IncidentLocation = *input.IncidentLocation
	}
	if input.PolicyNumber != nil {
		c.PolicyNumber = *input.PolicyNumber
	}
	if input.ClaimNumber != nil {
		c.ClaimNumber = *input.ClaimNumber
	}
	if input.ClaimValue != nil {
		c.ClaimValue = input.ClaimValue
	}
	if input.CompensationReceived != nil {
		c.CompensationReceived = input.CompensationReceived
	}
	if input.VehicleBrand != nil {
		c.VehicleBrand = *input.VehicleBrand
	}
	if input.VehicleModel != nil {
		c.VehicleModel = *input.VehicleModel
	}
	if input.VehicleRegistration != nil {
		c.VehicleRegistration = *input.VehicleRegistration
	}
	if input.VehicleYear != nil {
		c.VehicleYear = input.VehicleYear
	}
	if input.InternalNotes != nil {
		c.InternalNotes = *input.InternalNotes
	}
}

// GetCase returns the full read model including the ledger, newest first.
func (s *CaseService) GetCase(ctx context.Context, caseID string) (*CaseDetail, error) {
	c, err := s.store.Cases().GetByID(ctx, caseID)
	if err != nil {
		return nil, lookupError(err, "case", map[string]any{"caseId": caseID})
	}
	if c.Deleted() {
		return nil, apperrors.NewNotFound("case", map[string]any{"caseId": caseID})
	}

	detail := &CaseDetail{Case: *c}
	if detail.Client, err = s.store.Clients().GetByID(ctx, c.ClientID); err != nil {
		return nil, persistenceError(err)
	}
	if detail.Status, err = s.store.Statuses().GetByID(ctx, c.StatusID); err != nil {
		return nil, persistenceError(err)
	}
	if c.InsuranceCompanyID != nil {
		if detail.InsuranceCompany, err = s.store.InsuranceCompanies().GetByID(ctx, *c.InsuranceCompanyID); err != nil && !apperrors.IsNotFound(err) {
			return nil, persistenceError(err)
		}
	}
	if c.AssignedAgentID != nil {
		if detail.AssignedAgent, err = s.store.Users().GetByID(ctx, *c.AssignedAgentID); err != nil && !apperrors.IsNotFound(err) {
			return nil, persistenceError(err)
		}
	}
	if detail.History, err = s.store.History().ListViewByCase(ctx, caseID); err != nil {
		return nil, persistenceError(err)
	}
	return detail, nil
}

// ListCases returns a page of cases joined with client and status display
// fields, newest first.
func (s *CaseService) ListCases(ctx context.Context, filter CaseListFilter) ([]CaseListItem, int, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	cases, total, err := s.store.Cases().List(ctx, repository.CaseFilter{
		SearchTerm:      filter.SearchTerm,
		StatusCode:      filter.StatusCode,
		ClientID:        filter.ClientID,
		AssignedAgentID: filter.AssignedAgentID,
		Limit:           limit,
		Offset:          (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, persistenceError(err)
	}

	statuses, err := s.statusesByID(ctx)
	if err != nil {
		return nil, 0, persistenceError(err)
	}

	items := make([]CaseListItem, 0, len(cases))
	for _, c := range cases {
		item := CaseListItem{Case: c}
		if client, err := s.store.Clients().GetByID(ctx, c.ClientID); err == nil {
			item.ClientName = client.FullName()
		}
		if status, ok := statuses[c.StatusID]; ok {
			item.StatusCode = status.Code
			item.StatusName = status.Name
			item.StatusColor = status.Color
		}
		items = append(items, item)
	}
	return items, total, nil
}

// SoftDeleteCase marks the case deleted; its history stays intact.
func (s *CaseService) SoftDeleteCase(ctx context.Context, actorID, caseID string) error {
	if err := s.requireActiveUser(ctx, actorID); err != nil {
		return err
	}
	c, err := s.store.Cases().GetByID(ctx, caseID)
	if err != nil {
		return lookupError(err, "case", map[string]any{"caseId": caseID})
	}
	if c.Deleted() {
		return apperrors.NewNotFound("case", map[string]any{"caseId": caseID})
	}
	if err := s.store.Cases().SoftDelete(ctx, caseID, actorID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("case", map[string]any{"caseId": caseID})
		}
		return persistenceError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseDeleted,
		CaseID:  caseID,
		ActorID: actorID,
		Payload: events.CaseDeletedPayload{CaseNumber: c.CaseNumber},
	})
	return nil
}

// ListHistory returns the raw ledger for a case in the requested order.
func (s *CaseService) ListHistory(ctx context.Context, caseID string, ascending bool) ([]domain.CaseStatusHistory, error) {
	if _, err := s.store.Cases().GetByID(ctx, caseID); err != nil {
		return nil, lookupError(err, "case", map[string]any{"caseId": caseID})
	}
	entries, err := s.store.History().ListByCase(ctx, caseID, ascending)
	if err != nil {
		return nil, persistenceError(err)
	}
	return entries, nil
}

func (s *CaseService) resolveInitialStatus(ctx context.Context, requested *int) (int, error) {
	if requested != nil {
		status, err := s.store.Statuses().GetByID(ctx, *requested)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, apperrors.NewInvalidStatus(fmt.Sprintf("status %d does not exist", *requested))
			}
			return 0, persistenceError(err)
		}
		if !status.IsActive {
			return 0, apperrors.NewInvalidStatus(fmt.Sprintf("status %d is inactive", *requested))
		}
		return status.ID, nil
	}
	statuses, err := s.store.Statuses().ListActive(ctx)
	if err != nil {
		return 0, persistenceError(err)
	}
	if len(statuses) == 0 {
		return 0, apperrors.NewInternalError(errors.New("status catalog is empty"))
	}
	return statuses[0].ID, nil
}

func (s *CaseService) requireActiveUser(ctx context.Context, userID string) error {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return lookupError(err, "user", map[string]any{"userId": userID})
	}
	if !user.IsActive {
		return apperrors.NewNotFound("user", map[string]any{"userId": userID})
	}
	return nil
}

func (s *CaseService) statusesByID(ctx context.Context) (map[int]domain.CaseStatus, error) {
	statuses, err := s.store.Statuses().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]domain.CaseStatus, len(statuses))
	for _, status := range statuses {
		byID[status.ID] = status
	}
	return byID, nil
}

func (s *CaseService) publishTransition(ctx context.Context, c *domain.Case, fromStatusID int, comment, actorID string) {
	if c == nil {
		return
	}
	if strings.TrimSpace(comment) == "" {
		comment = domain.DefaultTransitionComment
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseStatusChanged,
		CaseID:  c.ID,
		ActorID: actorID,
		Payload: events.CaseStatusChangedPayload{
			FromStatusID: fromStatusID,
			ToStatusID:   c.StatusID,
			Comment:      comment,
		},
	})
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// nextCaseNumber computes "SH/{year}/{month}/{sequence}" from the highest
// sequence already allocated for the month.
func nextCaseNumber(ctx context.Context, tx repository.Store, now time.Time) (string, error) {
	prefix := fmt.Sprintf("SH/%d/%02d/", now.Year(), int(now.Month()))
	highest, err := tx.Cases().MaxSequence(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, highest+1), nil
}

// lookupError maps a missing row to NotFound and anything else to a
// persistence failure, so infrastructure faults never read as 404s.
func lookupError(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return persistenceError(err)
}

// persistenceError passes DomainErrors through and wraps raw store failures.
func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("resource", nil)
	}
	return apperrors.NewPersistenceError(err)
}
