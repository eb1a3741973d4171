package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

// ClientService manages the client register.
type ClientService struct {
	store repository.Store
}

// NewClientService constructs the service.
func NewClientService(store repository.Store) *ClientService {
	return &ClientService{store: store}
}

// ClientCreateInput describes client creation payload.
type ClientCreateInput struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Pesel            string
	IDNumber         string
	Street           string
	HouseNumber      string
	ApartmentNumber  string
	PostalCode       string
	City             string
	Notes            string
	GDPRConsent      bool
	MarketingConsent bool
	AssignedAgentID  *string
}

// ClientUpdateInput is a field-level patch. Nil means "leave unchanged".
type ClientUpdateInput struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	Street           *string
	HouseNumber      *string
	ApartmentNumber  *string
	PostalCode       *string
	City             *string
	Notes            *string
	MarketingConsent *bool
	AssignedAgentID  *string
}

// CreateClient validates required fields and writes the record.
func (s *ClientService) CreateClient(ctx context.Context, actorID string, input ClientCreateInput) (*domain.Client, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, apperrors.NewValidationError("firstName and lastName are required", nil)
	}
	if strings.TrimSpace(input.Pesel) == "" {
		return nil, apperrors.NewValidationError("pesel is required", nil)
	}
	if !input.GDPRConsent {
		return nil, apperrors.NewValidationError("gdprConsent is required", nil)
	}

	client := &domain.Client{
		ID:               uuid.NewString(),
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		Email:            strings.TrimSpace(input.Email),
		Phone:            strings.TrimSpace(input.Phone),
		Pesel:            strings.TrimSpace(input.Pesel),
		IDNumber:         input.IDNumber,
		Street:           input.Street,
		HouseNumber:      input.HouseNumber,
		ApartmentNumber:  input.ApartmentNumber,
		PostalCode:       input.PostalCode,
		City:             input.City,
		Notes:            input.Notes,
		GDPRConsent:      input.GDPRConsent,
		MarketingConsent: input.MarketingConsent,
		AssignedAgentID:  input.AssignedAgentID,
		CreatedByUserID:  actorID,
	}
	if err := s.store.Clients().Create(ctx, client); err != nil {
		return nil, persistenceError(err)
	}
	return client, nil
}

// GetClient returns an existing, non-deleted client.
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.store.Clients().GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "client", map[string]any{"clientId": id})
	}
	if client.DeletedAt != nil {
		return nil, apperrors.NewNotFound("client", map[string]any{"clientId": id})
	}
	return client, nil
}

// ListClients returns a page of clients, newest first.
func (s *ClientService) ListClients(ctx context.Context, search *string, page, limit int) ([]domain.Client, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	clients, total, err := s.store.Clients().List(ctx, repository.ClientFilter{
		SearchTerm: search,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, persistenceError(err)
	}
	return clients, total, nil
}

// UpdateClient applies a field-level patch.
func (s *ClientService) UpdateClient(ctx context.Context, id string, input ClientUpdateInput) (*domain.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		client.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		client.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		client.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		client.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Street != nil {
		client.Street = *input.Street
	}
	if input.HouseNumber != nil {
		client.HouseNumber = *input.HouseNumber
	}
	if input.ApartmentNumber != nil {
		client.ApartmentNumber = *input.ApartmentNumber
	}
	if input.PostalCode != nil {
		client.PostalCode = *input.PostalCode
	}
	if input.City != nil {
		client.City = *input.City
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}
	if input.MarketingConsent != nil {
		client.MarketingConsent = *input.MarketingConsent
	}
	if input.AssignedAgentID != nil {
		client.AssignedAgentID = input.AssignedAgentID
	}

	if err := s.store.Clients().Update(ctx, client); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("client", map[string]any{"clientId": id})
		}
		return nil, persistenceError(err)
	}
	return client, nil
}

// SoftDeleteClient marks the client deleted.
func (s *ClientService) SoftDeleteClient(ctx context.Context, actorID, id string) error {
	if err := s.store.Clients().SoftDelete(ctx, id, actorID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("client", map[string]any{"clientId": id})
		}
		return persistenceError(err)
	}
	return nil
}
