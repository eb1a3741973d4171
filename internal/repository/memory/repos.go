package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
)

type caseRepo struct {
	store *Store
}

func (r *caseRepo) Create(ctx context.Context, c *domain.Case) error {
	defer r.store.lock()()
	data := r.store.data
	if _, exists := data.cases[c.ID]; exists {
		return duplicateErr("id", c.ID)
	}
	for _, existing := range data.cases {
		if existing.CaseNumber == c.CaseNumber {
			return duplicateErr("case_number", c.CaseNumber)
		}
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	data.cases[c.ID] = *c
	return nil
}

func (r *caseRepo) Update(ctx context.Context, c *domain.Case) error {
	defer r.store.lock()()
	data := r.store.data
	existing, ok := data.cases[c.ID]
	if !ok || existing.DeletedAt != nil {
		return repository.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	data.cases[c.ID] = *c
	return nil
}

func (r *caseRepo) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	defer r.store.lock()()
	c, ok := r.store.data.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

// GetForUpdate is equivalent to GetByID here: InTx already holds the store
// lock for the whole transaction.
func (r *caseRepo) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	return r.GetByID(ctx, id)
}

func (r *caseRepo) List(ctx context.Context, filter repository.CaseFilter) ([]domain.Case, int, error) {
	defer r.store.lock()()
	data := r.store.data

	var matched []domain.Case
	for _, c := range data.cases {
		if c.DeletedAt != nil {
			continue
		}
		if filter.ClientID != nil && c.ClientID != *filter.ClientID {
			continue
		}
		if filter.AssignedAgentID != nil {
			if c.AssignedAgentID == nil || *c.AssignedAgentID != *filter.AssignedAgentID {
				continue
			}
		}
		if filter.StatusCode != nil {
			status, ok := data.statuses[c.StatusID]
			if !ok || status.Code != *filter.StatusCode {
				continue
			}
		}
		if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
			if !r.matchesSearch(&c, strings.ToLower(strings.TrimSpace(*filter.SearchTerm))) {
				continue
			}
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Case{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *caseRepo) matchesSearch(c *domain.Case, search string) bool {
	fields := []string{
		strings.ToLower(c.CaseNumber),
		strings.ToLower(c.ClaimNumber),
		strings.ToLower(c.IncidentDescription),
		strings.ToLower(c.IncidentLocation),
	}
	if client, ok := r.store.data.clients[c.ClientID]; ok {
		fields = append(fields, strings.ToLower(client.FullName()))
	}
	for _, f := range fields {
		if strings.Contains(f, search) {
			return true
		}
	}
	return false
}

func (r *caseRepo) SoftDelete(ctx context.Context, id, byUserID string, at time.Time) error {
	defer r.store.lock()()
	data := r.store.data
	c, ok := data.cases[id]
	if !ok || c.DeletedAt != nil {
		return repository.ErrNotFound
	}
	c.DeletedAt = &at
	c.DeletedByUserID = &byUserID
	data.cases[id] = c
	return nil
}

func (r *caseRepo) MaxSequence(ctx context.Context, numberPrefix string) (int, error) {
	defer r.store.lock()()
	highest := 0
	for _, c := range r.store.data.cases {
		if !strings.HasPrefix(c.CaseNumber, numberPrefix) {
			continue
		}
		parts := strings.Split(c.CaseNumber, "/")
		seq, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

func (r *caseRepo) ListRecent(ctx context.Context, limit int) ([]domain.Case, error) {
	cases, _, err := r.List(ctx, repository.CaseFilter{Limit: limit})
	return cases, err
}

func (r *caseRepo) CountActive(ctx context.Context) (int, error) {
	defer r.store.lock()()
	count := 0
	for _, c := range r.store.data.cases {
		if c.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *caseRepo) CountByStatus(ctx context.Context) (map[int]int, error) {
	defer r.store.lock()()
	counts := make(map[int]int)
	for _, c := range r.store.data.cases {
		if c.DeletedAt == nil {
			counts[c.StatusID]++
		}
	}
	return counts, nil
}

type statusRepo struct {
	store *Store
}

func (r *statusRepo) ListActive(ctx context.Context) ([]domain.CaseStatus, error) {
	defer r.store.lock()()
	var result []domain.CaseStatus
	for _, s := range r.store.data.statuses {
		if s.IsActive {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SortOrder < result[j].SortOrder
	})
	return result, nil
}

func (r *statusRepo) GetByID(ctx context.Context, id int) (*domain.CaseStatus, error) {
	defer r.store.lock()()
	s, ok := r.store.data.statuses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *statusRepo) GetByCode(ctx context.Context, code domain.StatusCode) (*domain.CaseStatus, error) {
	defer r.store.lock()()
	for _, s := range r.store.data.statuses {
		if s.Code == code {
			status := s
			return &status, nil
		}
	}
	return nil, repository.ErrNotFound
}

type historyRepo struct {
	store *Store
}

func (r *historyRepo) Create(ctx context.Context, entry *domain.CaseStatusHistory) error {
	defer r.store.lock()()
	data := r.store.data
	entry.ChangedAt = time.Now()
	data.history = append(data.history, *entry)
	return nil
}

func (r *historyRepo) ListByCase(ctx context.Context, caseID string, ascending bool) ([]domain.CaseStatusHistory, error) {
	defer r.store.lock()()
	var result []domain.CaseStatusHistory
	for _, entry := range r.store.data.history {
		if entry.CaseID == caseID {
			result = append(result, entry)
		}
	}
	if !ascending {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result, nil
}

func (r *historyRepo) ListViewByCase(ctx context.Context, caseID string) ([]domain.CaseStatusHistoryView, error) {
	entries, err := r.ListByCase(ctx, caseID, false)
	if err != nil {
		return nil, err
	}
	defer r.store.lock()()
	data := r.store.data
	result := make([]domain.CaseStatusHistoryView, 0, len(entries))
	for _, entry := range entries {
		view := domain.CaseStatusHistoryView{CaseStatusHistory: entry}
		if entry.FromStatusID != nil {
			if from, ok := data.statuses[*entry.FromStatusID]; ok {
				view.FromStatusName = from.Name
				view.FromStatusColor = from.Color
			}
		}
		if to, ok := data.statuses[entry.ToStatusID]; ok {
			view.ToStatusName = to.Name
			view.ToStatusColor = to.Color
		}
		if user, ok := data.users[entry.ChangedByUserID]; ok {
			view.ChangedByName = user.FullName()
		}
		result = append(result, view)
	}
	return result, nil
}

type clientRepo struct {
	store *Store
}

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	defer r.store.lock()()
	data := r.store.data
	if _, exists := data.clients[client.ID]; exists {
		return duplicateErr("id", client.ID)
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now
	data.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	defer r.store.lock()()
	data := r.store.data
	existing, ok := data.clients[client.ID]
	if !ok || existing.DeletedAt != nil {
		return repository.ErrNotFound
	}
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now()
	data.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	defer r.store.lock()()
	client, ok := r.store.data.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, filter repository.ClientFilter) ([]domain.Client, int, error) {
	defer r.store.lock()()
	var matched []domain.Client
	for _, client := range r.store.data.clients {
		if client.DeletedAt != nil {
			continue
		}
		if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
			search := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			if !strings.Contains(strings.ToLower(client.FullName()), search) &&
				!strings.Contains(strings.ToLower(client.Email), search) &&
				!strings.Contains(client.Pesel, search) {
				continue
			}
		}
		matched = append(matched, client)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Client{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *clientRepo) SoftDelete(ctx context.Context, id, byUserID string, at time.Time) error {
	defer r.store.lock()()
	data := r.store.data
	client, ok := data.clients[id]
	if !ok || client.DeletedAt != nil {
		return repository.ErrNotFound
	}
	client.DeletedAt = &at
	client.DeletedByUserID = &byUserID
	data.clients[id] = client
	return nil
}

type userRepo struct {
	store *Store
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	defer r.store.lock()()
	data := r.store.data
	if _, exists := data.users[user.ID]; exists {
		return duplicateErr("id", user.ID)
	}
	for _, existing := range data.users {
		if existing.Email == user.Email {
			return duplicateErr("email", user.Email)
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	data.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	defer r.store.lock()()
	user, ok := r.store.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.store.lock()()
	for _, user := range r.store.data.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) ListActive(ctx context.Context) ([]domain.User, error) {
	defer r.store.lock()()
	var result []domain.User
	for _, user := range r.store.data.users {
		if user.IsActive {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})
	return result, nil
}

type companyRepo struct {
	store *Store
}

func (r *companyRepo) Create(ctx context.Context, company *domain.InsuranceCompany) error {
	defer r.store.lock()()
	data := r.store.data
	company.ID = data.nextCompanyID
	data.nextCompanyID++
	now := time.Now()
	company.CreatedAt = now
	company.UpdatedAt = now
	data.companies[company.ID] = *company
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, id int) (*domain.InsuranceCompany, error) {
	defer r.store.lock()()
	company, ok := r.store.data.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &company, nil
}

func (r *companyRepo) ListActive(ctx context.Context) ([]domain.InsuranceCompany, error) {
	defer r.store.lock()()
	var result []domain.InsuranceCompany
	for _, company := range r.store.data.companies {
		if company.IsActive {
			result = append(result, company)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
