// Package seed loads a development dataset: an admin account and a few sample
// clients and insurers.
package seed

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/securohelp/case-service/internal/auth"
	"github.com/securohelp/case-service/internal/config"
	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
)

// AdminEmail is the seeded administrator login.
const AdminEmail = "admin@securohelp.pl"

// Run writes the development dataset. Existing records are left alone.
func Run(ctx context.Context, store repository.Store, cfg config.AuthConfig, logger *zap.Logger) error {
	admin, err := store.Users().GetByEmail(ctx, AdminEmail)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		hash, err := auth.HashPassword("admin123", cfg.BcryptCost)
		if err != nil {
			return err
		}
		admin = &domain.User{
			ID:           uuid.NewString(),
			Email:        AdminEmail,
			PasswordHash: hash,
			FirstName:    "Admin",
			LastName:     "Securo",
			Role:         domain.UserRoleAdmin,
			IsActive:     true,
		}
		if err := store.Users().Create(ctx, admin); err != nil {
			return err
		}
		logger.Info("created admin user", zap.String("email", admin.Email))
	}

	if err := seedClients(ctx, store, admin.ID, logger); err != nil {
		return err
	}
	return seedInsuranceCompanies(ctx, store, logger)
}

func seedClients(ctx context.Context, store repository.Store, adminID string, logger *zap.Logger) error {
	_, total, err := store.Clients().List(ctx, repository.ClientFilter{Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	clients := []domain.Client{
		{
			FirstName: "Jan", LastName: "Kowalski",
			Email: "jan.kowalski@example.com", Phone: "123456789",
			Pesel: "85010112345", IDNumber: "ABC123456",
			Street: "Kwiatowa", HouseNumber: "10", PostalCode: "00-001", City: "Warszawa",
			GDPRConsent: true,
		},
		{
			FirstName: "Anna", LastName: "Nowak",
			Email: "anna.nowak@example.com", Phone: "987654321",
			Pesel: "92020223456", IDNumber: "DEF789012",
			Street: "Leśna", HouseNumber: "5", ApartmentNumber: "2", PostalCode: "30-059", City: "Kraków",
			GDPRConsent: true, MarketingConsent: true,
		},
		{
			FirstName: "Piotr", LastName: "Zieliński",
			Email: "piotr.zielinski@example.com", Phone: "555444333",
			Pesel: "78030334567", IDNumber: "GHI345678",
			Street: "Słoneczna", HouseNumber: "15", PostalCode: "80-880", City: "Gdańsk",
			GDPRConsent: true,
		},
	}
	for i := range clients {
		clients[i].ID = uuid.NewString()
		clients[i].CreatedByUserID = adminID
		if err := store.Clients().Create(ctx, &clients[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded clients", zap.Int("count", len(clients)))
	return nil
}

func seedInsuranceCompanies(ctx context.Context, store repository.Store, logger *zap.Logger) error {
	existing, err := store.InsuranceCompanies().ListActive(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	companies := []domain.InsuranceCompany{
		{Name: "Powszechny Zakład Ubezpieczeń S.A.", ShortName: "PZU", City: "Warszawa", IsActive: true},
		{Name: "Towarzystwo Ubezpieczeń i Reasekuracji Warta S.A.", ShortName: "Warta", City: "Warszawa", IsActive: true},
		{Name: "Allianz Polska S.A.", ShortName: "Allianz", City: "Warszawa", IsActive: true},
	}
	for i := range companies {
		if err := store.InsuranceCompanies().Create(ctx, &companies[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded insurance companies", zap.Int("count", len(companies)))
	return nil
}
