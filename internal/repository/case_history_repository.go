package repository

import (
	"context"

	"github.com/securohelp/case-service/internal/domain"
)

// CaseHistoryRepository stores the append-only transition ledger. Entries are
// never updated or deleted.
type CaseHistoryRepository interface {
	Create(ctx context.Context, entry *domain.CaseStatusHistory) error
	ListByCase(ctx context.Context, caseID string, ascending bool) ([]domain.CaseStatusHistory, error)
	ListViewByCase(ctx context.Context, caseID string) ([]domain.CaseStatusHistoryView, error)
}

type caseHistoryRepository struct {
	db DBTX
}

func (r *caseHistoryRepository) Create(ctx context.Context, entry *domain.CaseStatusHistory) error {
	const query = `
        INSERT INTO case_status_history (id, case_id, from_status_id, to_status_id, comment, changed_by_user_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING changed_at`
	err := r.db.QueryRow(ctx, query,
		entry.ID,
		entry.CaseID,
		entry.FromStatusID,
		entry.ToStatusID,
		entry.Comment,
		entry.ChangedByUserID,
	).Scan(&entry.ChangedAt)
	return mapPgError(err)
}

func (r *caseHistoryRepository) ListByCase(ctx context.Context, caseID string, ascending bool) ([]domain.CaseStatusHistory, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := `
        SELECT id, case_id, from_status_id, to_status_id, comment, changed_by_user_id, changed_at
        FROM case_status_history WHERE case_id=$1 ORDER BY changed_at ` + order + `, id ` + order
	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseStatusHistory
	for rows.Next() {
		var entry domain.CaseStatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.CaseID,
			&entry.FromStatusID,
			&entry.ToStatusID,
			&entry.Comment,
			&entry.ChangedByUserID,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// ListViewByCase returns the ledger newest-first, joined with status and user
// display data for the API read model.
func (r *caseHistoryRepository) ListViewByCase(ctx context.Context, caseID string) ([]domain.CaseStatusHistoryView, error) {
	const query = `
        SELECT h.id, h.case_id, h.from_status_id, h.to_status_id, h.comment, h.changed_by_user_id, h.changed_at,
               COALESCE(fs.name, ''), COALESCE(fs.color, ''), ts.name, ts.color,
               u.first_name || ' ' || u.last_name
        FROM case_status_history h
        LEFT JOIN case_statuses fs ON fs.id = h.from_status_id
        JOIN case_statuses ts ON ts.id = h.to_status_id
        JOIN users u ON u.id = h.changed_by_user_id
        WHERE h.case_id=$1
        ORDER BY h.changed_at DESC, h.id DESC`
	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseStatusHistoryView
	for rows.Next() {
		var view domain.CaseStatusHistoryView
		if err := rows.Scan(
			&view.ID,
			&view.CaseID,
			&view.FromStatusID,
			&view.ToStatusID,
			&view.Comment,
			&view.ChangedByUserID,
			&view.ChangedAt,
			&view.FromStatusName,
			&view.FromStatusColor,
			&view.ToStatusName,
			&view.ToStatusColor,
			&view.ChangedByName,
		); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}
