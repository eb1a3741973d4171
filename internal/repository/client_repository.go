package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/securohelp/case-service/internal/domain"
)

// ClientFilter captures client listing parameters.
type ClientFilter struct {
	SearchTerm *string
	Limit      int
	Offset     int
}

// ClientRepository encapsulates client persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]domain.Client, int, error)
	SoftDelete(ctx context.Context, id, byUserID string, at time.Time) error
}

type clientRepository struct {
	db DBTX
}

const clientColumns = `id, first_name, last_name, email, phone, pesel, id_number, street, house_number,
       apartment_number, postal_code, city, notes, gdpr_consent, marketing_consent,
       assigned_agent_id, created_by_user_id, deleted_by_user_id, created_at, updated_at, deleted_at`

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (id, first_name, last_name, email, phone, pesel, id_number, street,
            house_number, apartment_number, postal_code, city, notes, gdpr_consent,
            marketing_consent, assigned_agent_id, created_by_user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		client.ID,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.Pesel,
		client.IDNumber,
		client.Street,
		client.HouseNumber,
		client.ApartmentNumber,
		client.PostalCode,
		client.City,
		client.Notes,
		client.GDPRConsent,
		client.MarketingConsent,
		client.AssignedAgentID,
		client.CreatedByUserID,
	).Scan(&client.CreatedAt, &client.UpdatedAt)
	return mapPgError(err)
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	const query = `
        UPDATE clients SET first_name=$1, last_name=$2, email=$3, phone=$4, pesel=$5, id_number=$6,
            street=$7, house_number=$8, apartment_number=$9, postal_code=$10, city=$11, notes=$12,
            gdpr_consent=$13, marketing_consent=$14, assigned_agent_id=$15, updated_at=NOW()
        WHERE id=$16 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.Pesel,
		client.IDNumber,
		client.Street,
		client.HouseNumber,
		client.ApartmentNumber,
		client.PostalCode,
		client.City,
		client.Notes,
		client.GDPRConsent,
		client.MarketingConsent,
		client.AssignedAgentID,
		client.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id=$1`
	var client domain.Client
	if err := scanClient(r.db.QueryRow(ctx, query, id), &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]domain.Client, int, error) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		ph := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(first_name || ' ' || last_name) LIKE %s OR LOWER(email) LIKE %s OR pesel LIKE %s)",
			ph, ph, ph))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM clients WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		clientColumns, where, limit, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Client
	for rows.Next() {
		var client domain.Client
		if err := scanClient(rows, &client); err != nil {
			return nil, 0, err
		}
		result = append(result, client)
	}
	return result, total, rows.Err()
}

func (r *clientRepository) SoftDelete(ctx context.Context, id, byUserID string, at time.Time) error {
	const query = `UPDATE clients SET deleted_at=$1, deleted_by_user_id=$2 WHERE id=$3 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, at, byUserID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row, client *domain.Client) error {
	return row.Scan(
		&client.ID,
		&client.FirstName,
		&client.LastName,
		&client.Email,
		&client.Phone,
		&client.Pesel,
		&client.IDNumber,
		&client.Street,
		&client.HouseNumber,
		&client.ApartmentNumber,
		&client.PostalCode,
		&client.City,
		&client.Notes,
		&client.GDPRConsent,
		&client.MarketingConsent,
		&client.AssignedAgentID,
		&client.CreatedByUserID,
		&client.DeletedByUserID,
		&client.CreatedAt,
		&client.UpdatedAt,
		&client.DeletedAt,
	)
}
