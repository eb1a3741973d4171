package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/securohelp/case-service/internal/domain"
)

// StatusRepository exposes the status catalog.
type StatusRepository interface {
	ListActive(ctx context.Context) ([]domain.CaseStatus, error)
	GetByID(ctx context.Context, id int) (*domain.CaseStatus, error)
	GetByCode(ctx context.Context, code domain.StatusCode) (*domain.CaseStatus, error)
}

type statusRepository struct {
	db DBTX
}

const statusColumns = `id, code, name, color, sort_order, is_final, is_active, created_at, updated_at`

func (r *statusRepository) ListActive(ctx context.Context) ([]domain.CaseStatus, error) {
	query := `SELECT ` + statusColumns + ` FROM case_statuses WHERE is_active = TRUE ORDER BY sort_order ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseStatus
	for rows.Next() {
		var s domain.CaseStatus
		if err := scanStatus(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *statusRepository) GetByID(ctx context.Context, id int) (*domain.CaseStatus, error) {
	query := `SELECT ` + statusColumns + ` FROM case_statuses WHERE id=$1`
	var s domain.CaseStatus
	if err := scanStatus(r.db.QueryRow(ctx, query, id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *statusRepository) GetByCode(ctx context.Context, code domain.StatusCode) (*domain.CaseStatus, error) {
	query := `SELECT ` + statusColumns + ` FROM case_statuses WHERE code=$1`
	var s domain.CaseStatus
	if err := scanStatus(r.db.QueryRow(ctx, query, code), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStatus(row pgx.Row, s *domain.CaseStatus) error {
	return row.Scan(
		&s.ID,
		&s.Code,
		&s.Name,
		&s.Color,
		&s.SortOrder,
		&s.IsFinal,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}
