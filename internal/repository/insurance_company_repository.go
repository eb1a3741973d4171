package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/securohelp/case-service/internal/domain"
)

// InsuranceCompanyRepository exposes insurer reference data.
type InsuranceCompanyRepository interface {
	Create(ctx context.Context, company *domain.InsuranceCompany) error
	GetByID(ctx context.Context, id int) (*domain.InsuranceCompany, error)
	ListActive(ctx context.Context) ([]domain.InsuranceCompany, error)
}

type insuranceCompanyRepository struct {
	db DBTX
}

const insuranceCompanyColumns = `id, name, short_name, street, house_number, postal_code, city,
       email, phone, notes, is_active, created_at, updated_at`

func (r *insuranceCompanyRepository) Create(ctx context.Context, company *domain.InsuranceCompany) error {
	const query = `
        INSERT INTO insurance_companies (name, short_name, street, house_number, postal_code, city, email, phone, notes, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		company.Name,
		company.ShortName,
		company.Street,
		company.HouseNumber,
		company.PostalCode,
		company.City,
		company.Email,
		company.Phone,
		company.Notes,
		company.IsActive,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	return mapPgError(err)
}

func (r *insuranceCompanyRepository) GetByID(ctx context.Context, id int) (*domain.InsuranceCompany, error) {
	query := `SELECT ` + insuranceCompanyColumns + ` FROM insurance_companies WHERE id=$1`
	var company domain.InsuranceCompany
	if err := scanInsuranceCompany(r.db.QueryRow(ctx, query, id), &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *insuranceCompanyRepository) ListActive(ctx context.Context) ([]domain.InsuranceCompany, error) {
	query := `SELECT ` + insuranceCompanyColumns + ` FROM insurance_companies WHERE is_active = TRUE ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InsuranceCompany
	for rows.Next() {
		var company domain.InsuranceCompany
		if err := scanInsuranceCompany(rows, &company); err != nil {
			return nil, err
		}
		result = append(result, company)
	}
	return result, rows.Err()
}

func scanInsuranceCompany(row pgx.Row, company *domain.InsuranceCompany) error {
	return row.Scan(
		&company.ID,
		&company.Name,
		&company.ShortName,
		&company.Street,
		&company.HouseNumber,
		&company.PostalCode,
		&company.City,
		&company.Email,
		&company.Phone,
		&company.Notes,
		&company.IsActive,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
}
