package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate marks a unique-constraint conflict. Case creation retries the
// number allocation when it sees this.
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound marks a missing row, regardless of backend.
var ErrNotFound = pgx.ErrNoRows

// Store aggregates the entity repositories behind one handle. InTx runs fn
// against a transaction-bound view of the same repositories: every write made
// through that view commits or rolls back as a unit.
type Store interface {
	Cases() CaseRepository
	Statuses() StatusRepository
	History() CaseHistoryRepository
	Clients() ClientRepository
	Users() UserRepository
	InsuranceCompanies() InsuranceCompanyRepository
	InTx(ctx context.Context, fn func(Store) error) error
}

// DBTX is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx,
// letting one repository implementation serve both.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore backs the repositories with pgx.
type PostgresStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewPostgresStore builds the store on top of a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool, pool: pool}
}

func (s *PostgresStore) Cases() CaseRepository {
	return &caseRepository{db: s.db}
}

func (s *PostgresStore) Statuses() StatusRepository {
	return &statusRepository{db: s.db}
}

func (s *PostgresStore) History() CaseHistoryRepository {
	return &caseHistoryRepository{db: s.db}
}

func (s *PostgresStore) Clients() ClientRepository {
	return &clientRepository{db: s.db}
}

func (s *PostgresStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *PostgresStore) InsuranceCompanies() InsuranceCompanyRepository {
	return &insuranceCompanyRepository{db: s.db}
}

// InTx starts a transaction and hands fn a store bound to it. A nested call
// reuses the surrounding transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	txStore := &PostgresStore{db: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// mapPgError normalizes backend errors to the repository sentinels.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
