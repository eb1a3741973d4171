// Package memory provides an in-memory Store implementation. It backs tests
// and the no-database development mode behind the same repository interfaces
// as the postgres store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
)

type dataset struct {
	statuses  map[int]domain.CaseStatus
	cases     map[string]domain.Case
	history   []domain.CaseStatusHistory
	clients   map[string]domain.Client
	users     map[string]domain.User
	companies map[int]domain.InsuranceCompany

	nextCompanyID int
}

func (d *dataset) clone() *dataset {
	out := &dataset{
		statuses:      make(map[int]domain.CaseStatus, len(d.statuses)),
		cases:         make(map[string]domain.Case, len(d.cases)),
		history:       append([]domain.CaseStatusHistory(nil), d.history...),
		clients:       make(map[string]domain.Client, len(d.clients)),
		users:         make(map[string]domain.User, len(d.users)),
		companies:     make(map[int]domain.InsuranceCompany, len(d.companies)),
		nextCompanyID: d.nextCompanyID,
	}
	for k, v := range d.statuses {
		out.statuses[k] = v
	}
	for k, v := range d.cases {
		out.cases[k] = v
	}
	for k, v := range d.clients {
		out.clients[k] = v
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.companies {
		out.companies[k] = v
	}
	return out
}

// Store keeps all entities in maps of values. A single mutex serializes
// transactions, which is what gives transitions on the same case their
// one-winner guarantee in this backend.
type Store struct {
	mu   sync.Mutex
	data *dataset
	inTx bool
}

// NewStore builds an empty store with the status catalog pre-seeded the same
// way the SQL migration seeds it.
func NewStore() *Store {
	s := &Store{data: &dataset{
		statuses:      make(map[int]domain.CaseStatus),
		cases:         make(map[string]domain.Case),
		clients:       make(map[string]domain.Client),
		users:         make(map[string]domain.User),
		companies:     make(map[int]domain.InsuranceCompany),
		nextCompanyID: 1,
	}}
	now := time.Now()
	for _, st := range SeedStatuses() {
		st.CreatedAt = now
		st.UpdatedAt = now
		s.data.statuses[st.ID] = st
	}
	return s
}

// SeedStatuses returns the fixed status catalog.
func SeedStatuses() []domain.CaseStatus {
	return []domain.CaseStatus{
		{ID: 1, Code: domain.StatusCodeNew, Name: "Nowa", Color: "#3B82F6", SortOrder: 1, IsActive: true},
		{ID: 2, Code: domain.StatusCodeDocuments, Name: "Kompletowanie dokumentów", Color: "#F59E0B", SortOrder: 2, IsActive: true},
		{ID: 3, Code: domain.StatusCodeSentToInsurer, Name: "Wysłano do ubezpieczyciela", Color: "#8B5CF6", SortOrder: 3, IsActive: true},
		{ID: 4, Code: domain.StatusCodePositiveDecision, Name: "Decyzja pozytywna", Color: "#10B981", SortOrder: 4, IsActive: true},
		{ID: 5, Code: domain.StatusCodeNegativeDecision, Name: "Decyzja negatywna", Color: "#EF4444", SortOrder: 5, IsActive: true},
		{ID: 6, Code: domain.StatusCodeAppeal, Name: "Odwołanie", Color: "#F97316", SortOrder: 6, IsActive: true},
		{ID: 7, Code: domain.StatusCodeLawsuit, Name: "Pozew sądowy", Color: "#DC2626", SortOrder: 7, IsActive: true},
		{ID: 8, Code: domain.StatusCodeClosed, Name: "Zamknięta", Color: "#6B7280", SortOrder: 8, IsActive: true, IsFinal: true},
	}
}

// lock acquires the store mutex unless the call already runs inside a
// transaction, which holds it for its whole extent.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Cases() repository.CaseRepository {
	return &caseRepo{store: s}
}

func (s *Store) Statuses() repository.StatusRepository {
	return &statusRepo{store: s}
}

func (s *Store) History() repository.CaseHistoryRepository {
	return &historyRepo{store: s}
}

func (s *Store) Clients() repository.ClientRepository {
	return &clientRepo{store: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{store: s}
}

func (s *Store) InsuranceCompanies() repository.InsuranceCompanyRepository {
	return &companyRepo{store: s}
}

// InTx snapshots the dataset, runs fn under the store lock against a
// transaction-bound view, and restores the snapshot when fn fails. Nested
// calls join the surrounding transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	txStore := &Store{data: s.data, inTx: true}
	if err := fn(txStore); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func duplicateErr(field, value string) error {
	return fmt.Errorf("%w: %s=%s", repository.ErrDuplicate, field, value)
}
