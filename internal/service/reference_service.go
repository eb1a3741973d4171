package service

import (
	"context"
	"strings"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

// ReferenceService serves the reference listings used by case forms: active
// agents and insurance companies.
type ReferenceService struct {
	store repository.Store
}

// NewReferenceService constructs the service.
func NewReferenceService(store repository.Store) *ReferenceService {
	return &ReferenceService{store: store}
}

// ListActiveUsers returns active accounts ordered by name.
func (s *ReferenceService) ListActiveUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.Users().ListActive(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	return users, nil
}

// ListInsuranceCompanies returns active insurers ordered by name.
func (s *ReferenceService) ListInsuranceCompanies(ctx context.Context) ([]domain.InsuranceCompany, error) {
	companies, err := s.store.InsuranceCompanies().ListActive(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	return companies, nil
}

// InsuranceCompanyInput describes insurer creation payload.
type InsuranceCompanyInput struct {
	Name        string
	ShortName   string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	Email       string
	Phone       string
	Notes       string
}

// CreateInsuranceCompany adds an insurer to the register.
func (s *ReferenceService) CreateInsuranceCompany(ctx context.Context, input InsuranceCompanyInput) (*domain.InsuranceCompany, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	company := &domain.InsuranceCompany{
		Name:        strings.TrimSpace(input.Name),
		ShortName:   strings.TrimSpace(input.ShortName),
		Street:      input.Street,
		HouseNumber: input.HouseNumber,
		PostalCode:  input.PostalCode,
		City:        input.City,
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Notes:       input.Notes,
		IsActive:    true,
	}
	if err := s.store.InsuranceCompanies().Create(ctx, company); err != nil {
		return nil, persistenceError(err)
	}
	return company, nil
}
