package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/securohelp/case-service/internal/domain"
)

// CaseFilter captures listing parameters for cases.
type CaseFilter struct {
	SearchTerm      *string
	StatusCode      *domain.StatusCode
	ClientID        *string
	AssignedAgentID *string
	Limit           int
	Offset          int
}

// CaseRepository encapsulates case persistence. GetForUpdate must be called
// inside Store.InTx; it serializes concurrent transitions on the same case.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, int, error)
	SoftDelete(ctx context.Context, id, byUserID string, at time.Time) error
	MaxSequence(ctx context.Context, numberPrefix string) (int, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Case, error)
	CountActive(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[int]int, error)
}

type caseRepository struct {
	db DBTX
}

const caseColumns = `id, case_number, client_id, status_id, insurance_company_id, assigned_agent_id,
       incident_date, incident_description, incident_location, policy_number, claim_number,
       claim_value, compensation_received, vehicle_brand, vehicle_model, vehicle_registration,
       vehicle_year, internal_notes, documents_sent_date, decision_date, appeal_date,
       lawsuit_date, closed_date, created_by_user_id, updated_by_user_id, deleted_by_user_id,
       created_at, updated_at, deleted_at`

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (id, case_number, client_id, status_id, insurance_company_id, assigned_agent_id,
            incident_date, incident_description, incident_location, policy_number, claim_number,
            claim_value, compensation_received, vehicle_brand, vehicle_model, vehicle_registration,
            vehicle_year, internal_notes, created_by_user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		c.ID,
		c.CaseNumber,
		c.ClientID,
		c.StatusID,
		c.InsuranceCompanyID,
		c.AssignedAgentID,
		c.IncidentDate,
		c.IncidentDescription,
		c.IncidentLocation,
		c.PolicyNumber,
		c.ClaimNumber,
		c.ClaimValue,
		c.CompensationReceived,
		c.VehicleBrand,
		c.VehicleModel,
		c.VehicleRegistration,
		c.VehicleYear,
		c.InternalNotes,
		c.CreatedByUserID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapPgError(err)
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET status_id=$1, insurance_company_id=$2, assigned_agent_id=$3,
            incident_description=$4, incident_location=$5, policy_number=$6, claim_number=$7,
            claim_value=$8, compensation_received=$9, vehicle_brand=$10, vehicle_model=$11,
            vehicle_registration=$12, vehicle_year=$13, internal_notes=$14,
            documents_sent_date=$15, decision_date=$16, appeal_date=$17, lawsuit_date=$18,
            closed_date=$19, updated_by_user_id=$20, updated_at=NOW()
        WHERE id=$21 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query,
		c.StatusID,
		c.InsuranceCompanyID,
		c.AssignedAgentID,
		c.IncidentDescription,
		c.IncidentLocation,
		c.PolicyNumber,
		c.ClaimNumber,
		c.ClaimValue,
		c.CompensationReceived,
		c.VehicleBrand,
		c.VehicleModel,
		c.VehicleRegistration,
		c.VehicleYear,
		c.InternalNotes,
		c.DocumentsSentDate,
		c.DecisionDate,
		c.AppealDate,
		c.LawsuitDate,
		c.ClosedDate,
		c.UpdatedByUserID,
		c.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *caseRepository) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	var c domain.Case
	if err := scanCase(r.db.QueryRow(ctx, query, arg), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) List(ctx context.Context, filter CaseFilter) ([]domain.Case, int, error) {
	clauses := []string{"c.deleted_at IS NULL"}
	args := []any{}

	if filter.StatusCode != nil {
		args = append(args, *filter.StatusCode)
		clauses = append(clauses, fmt.Sprintf("s.code=$%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("c.client_id=$%d", len(args)))
	}
	if filter.AssignedAgentID != nil {
		args = append(args, *filter.AssignedAgentID)
		clauses = append(clauses, fmt.Sprintf("c.assigned_agent_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		ph := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(LOWER(c.case_number) LIKE %s OR LOWER(c.claim_number) LIKE %s
              OR LOWER(c.incident_description) LIKE %s OR LOWER(c.incident_location) LIKE %s
              OR LOWER(cl.first_name || ' ' || cl.last_name) LIKE %s)`, ph, ph, ph, ph, ph))
	}

	where := strings.Join(clauses, " AND ")
	base := `FROM cases c
             JOIN case_statuses s ON s.id = c.status_id
             JOIN clients cl ON cl.id = c.client_id
             WHERE ` + where

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) "+base, args...).Scan(&total); err != nil {
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

	query := fmt.Sprintf(`SELECT %s %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d`,
		prefixColumns(caseColumns, "c."), base, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	result, err := scanCases(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *caseRepository) SoftDelete(ctx context.Context, id, byUserID string, at time.Time) error {
	const query = `UPDATE cases SET deleted_at=$1, deleted_by_user_id=$2 WHERE id=$3 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, at, byUserID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MaxSequence returns the highest allocated sequence among case numbers with
// the given "SH/{year}/{month}/" prefix, 0 when none exist.
func (r *caseRepository) MaxSequence(ctx context.Context, numberPrefix string) (int, error) {
	const query = `
        SELECT COALESCE(MAX(CAST(SPLIT_PART(case_number, '/', 4) AS INTEGER)), 0)
        FROM cases WHERE case_number LIKE $1 || '%'`
	var max int
	if err := r.db.QueryRow(ctx, query, numberPrefix).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *caseRepository) ListRecent(ctx context.Context, limit int) ([]domain.Case, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT %d`,
		caseColumns, limit)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

func (r *caseRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cases WHERE deleted_at IS NULL`).Scan(&count)
	return count, err
}

func (r *caseRepository) CountByStatus(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status_id, COUNT(*) FROM cases WHERE deleted_at IS NULL GROUP BY status_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var statusID, count int
		if err := rows.Scan(&statusID, &count); err != nil {
			return nil, err
		}
		counts[statusID] = count
	}
	return counts, rows.Err()
}

func scanCase(row pgx.Row, c *domain.Case) error {
	return row.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.ClientID,
		&c.StatusID,
		&c.InsuranceCompanyID,
		&c.AssignedAgentID,
		&c.IncidentDate,
		&c.IncidentDescription,
		&c.IncidentLocation,
		&c.PolicyNumber,
		&c.ClaimNumber,
		&c.ClaimValue,
		&c.CompensationReceived,
		&c.VehicleBrand,
		&c.VehicleModel,
		&c.VehicleRegistration,
		&c.VehicleYear,
		&c.InternalNotes,
		&c.DocumentsSentDate,
		&c.DecisionDate,
		&c.AppealDate,
		&c.LawsuitDate,
		&c.ClosedDate,
		&c.CreatedByUserID,
		&c.UpdatedByUserID,
		&c.DeletedByUserID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
}

func scanCases(rows pgx.Rows) ([]domain.Case, error) {
	var result []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := scanCase(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// prefixColumns qualifies every column in a comma-separated list with the
// given table alias.
func prefixColumns(columns, prefix string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
