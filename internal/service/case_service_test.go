package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/events"
	"github.com/securohelp/case-service/internal/repository"
	"github.com/securohelp/case-service/internal/repository/memory"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

type fixture struct {
	store    *memory.Store
	service  *CaseService
	actorID  string
	clientID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	actor := &domain.User{
		ID:        uuid.NewString(),
		Email:     "agent@securohelp.pl",
		FirstName: "Agent",
		LastName:  "Testowy",
		Role:      domain.UserRoleAgent,
		IsActive:  true,
	}
	require.NoError(t, store.Users().Create(ctx, actor))

	client := &domain.Client{
		ID:              uuid.NewString(),
		FirstName:       "Jan",
		LastName:        "Kowalski",
		Pesel:           "85010112345",
		GDPRConsent:     true,
		CreatedByUserID: actor.ID,
	}
	require.NoError(t, store.Clients().Create(ctx, client))

	return &fixture{
		store:    store,
		service:  NewCaseService(store, nil),
		actorID:  actor.ID,
		clientID: client.ID,
	}
}

func (f *fixture) createCase(t *testing.T) *domain.Case {
	t.Helper()
	incident := time.Now().Add(-24 * time.Hour)
	c, err := f.service.CreateCase(context.Background(), f.actorID, CaseCreateInput{
		ClientID:     f.clientID,
		IncidentDate: &incident,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) statusID(t *testing.T, code domain.StatusCode) int {
	t.Helper()
	status, err := f.store.Statuses().GetByCode(context.Background(), code)
	require.NoError(t, err)
	return status.ID
}

func TestCreateCaseWritesInitialHistory(t *testing.T) {
	f := newFixture(t)
	c := f.createCase(t)

	entries, err := f.store.History().ListByCase(context.Background(), c.ID, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].FromStatusID)
	assert.Equal(t, c.StatusID, entries[0].ToStatusID)
	assert.Equal(t, domain.CaseCreatedComment, entries[0].Comment)
	assert.Equal(t, f.actorID, entries[0].ChangedByUserID)
}

func TestCreateCaseRequiresClientAndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateCase(ctx, f.actorID, CaseCreateInput{ClientID: f.clientID})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	incident := time.Now()
	_, err = f.service.CreateCase(ctx, f.actorID, CaseCreateInput{IncidentDate: &incident})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestCreateCaseUnknownClient(t *testing.T) {
	f := newFixture(t)
	incident := time.Now()
	_, err := f.service.CreateCase(context.Background(), f.actorID, CaseCreateInput{
		ClientID:     uuid.NewString(),
		IncidentDate: &incident,
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestCaseNumberFormatAndSequence(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	prefix := fmt.Sprintf("SH/%d/%02d/", now.Year(), int(now.Month()))

	first := f.createCase(t)
	second := f.createCase(t)

	assert.Equal(t, prefix+"00001", first.CaseNumber)
	assert.Equal(t, prefix+"00002", second.CaseNumber)
}

func TestConcurrentCreatesAllocateUniqueNumbers(t *testing.T) {
	f := newFixture(t)
	const workers = 8

	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	incident := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := f.service.CreateCase(context.Background(), f.actorID, CaseCreateInput{
				ClientID:     f.clientID,
				IncidentDate: &incident,
			})
			if err == nil {
				numbers <- c.CaseNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "case number %s allocated twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)
}

func TestTransitionAppendsLedgerEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)
	docsID := f.statusID(t, domain.StatusCodeDocuments)

	updated, err := f.service.ApplyTransition(ctx, c.ID, docsID, "Zebrano dokumenty", f.actorID)
	require.NoError(t, err)
	assert.Equal(t, docsID, updated.StatusID)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[1].FromStatusID)
	assert.Equal(t, c.StatusID, *entries[1].FromStatusID)
	assert.Equal(t, docsID, entries[1].ToStatusID)
	assert.Equal(t, "Zebrano dokumenty", entries[1].Comment)
}

func TestTransitionDefaultComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	_, err := f.service.ApplyTransition(ctx, c.ID, f.statusID(t, domain.StatusCodeDocuments), "  ", f.actorID)
	require.NoError(t, err)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.DefaultTransitionComment, entries[1].Comment)
}

func TestTransitionToCurrentStatusIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	updated, err := f.service.ApplyTransition(ctx, c.ID, c.StatusID, "ignored", f.actorID)
	require.NoError(t, err)
	assert.Equal(t, c.StatusID, updated.StatusID)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no-op transition must not append to the ledger")
}

func TestTransitionUnknownStatus(t *testing.T) {
	f := newFixture(t)
	c := f.createCase(t)

	_, err := f.service.ApplyTransition(context.Background(), c.ID, 999, "", f.actorID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
}

func TestMilestoneDatesAreFirstWriteOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	sentID := f.statusID(t, domain.StatusCodeSentToInsurer)
	negativeID := f.statusID(t, domain.StatusCodeNegativeDecision)
	appealID := f.statusID(t, domain.StatusCodeAppeal)
	positiveID := f.statusID(t, domain.StatusCodePositiveDecision)

	updated, err := f.service.ApplyTransition(ctx, c.ID, sentID, "", f.actorID)
	require.NoError(t, err)
	require.NotNil(t, updated.DocumentsSentDate)

	updated, err = f.service.ApplyTransition(ctx, c.ID, negativeID, "", f.actorID)
	require.NoError(t, err)
	require.NotNil(t, updated.DecisionDate)
	firstDecision := *updated.DecisionDate

	_, err = f.service.ApplyTransition(ctx, c.ID, appealID, "", f.actorID)
	require.NoError(t, err)

	// A second decision must not move the original decision date.
	updated, err = f.service.ApplyTransition(ctx, c.ID, positiveID, "", f.actorID)
	require.NoError(t, err)
	require.NotNil(t, updated.DecisionDate)
	assert.Equal(t, firstDecision, *updated.DecisionDate)
	require.NotNil(t, updated.AppealDate)
}

func TestFinalStatusSetsClosedDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	updated, err := f.service.ApplyTransition(ctx, c.ID, f.statusID(t, domain.StatusCodeClosed), "", f.actorID)
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedDate)
}

func TestHistoryChainIsContinuous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	path := []domain.StatusCode{
		domain.StatusCodeDocuments,
		domain.StatusCodeSentToInsurer,
		domain.StatusCodePositiveDecision,
		domain.StatusCodeClosed,
	}
	for _, code := range path {
		_, err := f.service.ApplyTransition(ctx, c.ID, f.statusID(t, code), "", f.actorID)
		require.NoError(t, err)
	}

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	require.Len(t, entries, len(path)+1)
	assert.Nil(t, entries[0].FromStatusID)
	for i := 1; i < len(entries); i++ {
		require.NotNil(t, entries[i].FromStatusID)
		assert.Equal(t, entries[i-1].ToStatusID, *entries[i].FromStatusID,
			"entry %d must start where the previous one ended", i)
	}
}

func TestConcurrentTransitionsSerialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	targets := []domain.StatusCode{
		domain.StatusCodeDocuments,
		domain.StatusCodeSentToInsurer,
		domain.StatusCodePositiveDecision,
		domain.StatusCodeAppeal,
		domain.StatusCodeLawsuit,
	}

	var wg sync.WaitGroup
	for _, code := range targets {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, _ = f.service.ApplyTransition(ctx, c.ID, id, "", f.actorID)
		}(f.statusID(t, code))
	}
	wg.Wait()

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)

	// Every recorded transition starts exactly where the previous one ended,
	// regardless of scheduling.
	for i := 1; i < len(entries); i++ {
		require.NotNil(t, entries[i].FromStatusID)
		assert.Equal(t, entries[i-1].ToStatusID, *entries[i].FromStatusID)
	}

	final, err := f.store.Cases().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entries[len(entries)-1].ToStatusID, final.StatusID)
}

// failingHistoryStore wraps a Store and makes ledger appends fail, to verify
// that the surrounding transaction rolls back completely.
type failingHistoryStore struct {
	repository.Store
}

type failingHistoryRepo struct {
	repository.CaseHistoryRepository
}

func (r *failingHistoryRepo) Create(ctx context.Context, entry *domain.CaseStatusHistory) error {
	return errors.New("ledger unavailable")
}

func (s *failingHistoryStore) History() repository.CaseHistoryRepository {
	return &failingHistoryRepo{CaseHistoryRepository: s.Store.History()}
}

func (s *failingHistoryStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(&failingHistoryStore{Store: tx})
	})
}

func TestTransitionRollsBackWhenLedgerWriteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	broken := NewCaseService(&failingHistoryStore{Store: f.store}, nil)
	_, err := broken.ApplyTransition(ctx, c.ID, f.statusID(t, domain.StatusCodeDocuments), "", f.actorID)
	require.Error(t, err)

	// The case must be untouched: same status, no new ledger entries.
	stored, err := f.store.Cases().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.StatusID, stored.StatusID)
	assert.Nil(t, stored.DocumentsSentDate)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateCaseRollsBackWhenLedgerWriteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	broken := NewCaseService(&failingHistoryStore{Store: f.store}, nil)
	incident := time.Now()
	_, err := broken.CreateCase(ctx, f.actorID, CaseCreateInput{
		ClientID:     f.clientID,
		IncidentDate: &incident,
	})
	require.Error(t, err)

	_, total, err := f.store.Cases().List(ctx, repository.CaseFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "a case must never exist without its initial ledger entry")
}

// brokenCaseStore simulates an infrastructure fault on case lookups. Such a
// failure must surface as a persistence error, not as a missing resource,
// because the caller is expected to retry one and not the other.
type brokenCaseStore struct {
	repository.Store
}

type brokenCaseRepo struct {
	repository.CaseRepository
}

var errConnReset = errors.New("connection reset by peer")

func (r *brokenCaseRepo) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	return nil, errConnReset
}

func (r *brokenCaseRepo) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	return nil, errConnReset
}

func (s *brokenCaseStore) Cases() repository.CaseRepository {
	return &brokenCaseRepo{CaseRepository: s.Store.Cases()}
}

func (s *brokenCaseStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(&brokenCaseStore{Store: tx})
	})
}

func TestStoreFailureIsNotReportedAsMissingCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)
	docsID := f.statusID(t, domain.StatusCodeDocuments)

	broken := NewCaseService(&brokenCaseStore{Store: f.store}, nil)

	var domainErr *apperrors.DomainError
	_, err := broken.ApplyTransition(ctx, c.ID, docsID, "", f.actorID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PERSISTENCE_ERROR", domainErr.Code)
	assert.Equal(t, 500, domainErr.HTTPStatus)

	_, err = broken.GetCase(ctx, c.ID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PERSISTENCE_ERROR", domainErr.Code)

	_, err = broken.UpdateCase(ctx, f.actorID, c.ID, CaseUpdateInput{StatusID: &docsID})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PERSISTENCE_ERROR", domainErr.Code)

	err = broken.SoftDeleteCase(ctx, f.actorID, c.ID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PERSISTENCE_ERROR", domainErr.Code)

	_, err = broken.ListHistory(ctx, c.ID, true)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PERSISTENCE_ERROR", domainErr.Code)
}

// duplicateOnceStore makes the first case insert lose the number race, to
// exercise the allocation retry.
type duplicateOnceStore struct {
	repository.Store
	attempts *int
}

type duplicateOnceCaseRepo struct {
	repository.CaseRepository
	attempts *int
}

func (r *duplicateOnceCaseRepo) Create(ctx context.Context, c *domain.Case) error {
	*r.attempts++
	if *r.attempts == 1 {
		return repository.ErrDuplicate
	}
	return r.CaseRepository.Create(ctx, c)
}

func (s *duplicateOnceStore) Cases() repository.CaseRepository {
	return &duplicateOnceCaseRepo{CaseRepository: s.Store.Cases(), attempts: s.attempts}
}

func (s *duplicateOnceStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(&duplicateOnceStore{Store: tx, attempts: s.attempts})
	})
}

func TestCreateCaseRetriesAfterNumberCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attempts := 0
	racing := NewCaseService(&duplicateOnceStore{Store: f.store, attempts: &attempts}, nil)

	incident := time.Now()
	c, err := racing.CreateCase(ctx, f.actorID, CaseCreateInput{
		ClientID:     f.clientID,
		IncidentDate: &incident,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "the lost race must roll back and retry once")

	prefix := fmt.Sprintf("SH/%d/%02d/", incident.Year(), int(incident.Month()))
	assert.Equal(t, prefix+"00001", c.CaseNumber)

	// The rolled-back attempt must leave no trace: one case, one ledger entry.
	_, total, err := f.store.Cases().List(ctx, repository.CaseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateCaseRoutesStatusThroughTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)
	docsID := f.statusID(t, domain.StatusCodeDocuments)

	location := "Warszawa"
	detail, err := f.service.UpdateCase(ctx, f.actorID, c.ID, CaseUpdateInput{
		StatusID:         &docsID,
		IncidentLocation: &location,
	})
	require.NoError(t, err)
	assert.Equal(t, docsID, detail.Case.StatusID)
	assert.Equal(t, location, detail.Case.IncidentLocation)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, docsID, entries[1].ToStatusID)
}

func TestUpdateCasePatchWithoutStatusKeepsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	notes := "kontakt telefoniczny"
	detail, err := f.service.UpdateCase(ctx, f.actorID, c.ID, CaseUpdateInput{InternalNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, detail.Case.InternalNotes)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSoftDeleteKeepsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)

	require.NoError(t, f.service.SoftDeleteCase(ctx, f.actorID, c.ID))

	_, err := f.service.GetCase(ctx, c.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)

	entries, err := f.store.History().ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetCaseReturnsHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCase(t)
	docsID := f.statusID(t, domain.StatusCodeDocuments)

	_, err := f.service.ApplyTransition(ctx, c.ID, docsID, "", f.actorID)
	require.NoError(t, err)

	detail, err := f.service.GetCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, detail.History, 2)
	assert.Equal(t, docsID, detail.History[0].ToStatusID)
	assert.Nil(t, detail.History[1].FromStatusID)
	assert.NotEmpty(t, detail.History[0].ChangedByName)
}

func TestTransitionPublishesEventAfterCommit(t *testing.T) {
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()

	var mu sync.Mutex
	var received []events.Event
	dispatcher.Subscribe(events.EventCaseStatusChanged, func(ctx context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event)
		return nil
	})

	f := &fixture{store: store, service: NewCaseService(store, dispatcher)}
	ctx := context.Background()
	actor := &domain.User{ID: uuid.NewString(), Email: "a@b.pl", Role: domain.UserRoleAgent, IsActive: true}
	require.NoError(t, store.Users().Create(ctx, actor))
	client := &domain.Client{ID: uuid.NewString(), FirstName: "Jan", LastName: "Nowak", Pesel: "1", GDPRConsent: true, CreatedByUserID: actor.ID}
	require.NoError(t, store.Clients().Create(ctx, client))
	f.actorID = actor.ID
	f.clientID = client.ID

	c := f.createCase(t)
	docsID := f.statusID(t, domain.StatusCodeDocuments)

	// A no-op request publishes nothing.
	_, err := f.service.ApplyTransition(ctx, c.ID, c.StatusID, "", f.actorID)
	require.NoError(t, err)
	assert.Empty(t, received)

	_, err = f.service.ApplyTransition(ctx, c.ID, docsID, "przekazano", f.actorID)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	payload, ok := received[0].Payload.(events.CaseStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, c.StatusID, payload.FromStatusID)
	assert.Equal(t, docsID, payload.ToStatusID)
	assert.Equal(t, "przekazano", payload.Comment)
}

func TestListCasesFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createCase(t)
	f.createCase(t)

	_, err := f.service.ApplyTransition(ctx, first.ID, f.statusID(t, domain.StatusCodeDocuments), "", f.actorID)
	require.NoError(t, err)

	code := domain.StatusCodeDocuments
	items, total, err := f.service.ListCases(ctx, CaseListFilter{StatusCode: &code})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].Case.ID)
	assert.Equal(t, domain.StatusCodeDocuments, items[0].StatusCode)
}

func TestInactiveActorRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := &domain.User{ID: uuid.NewString(), Email: "off@b.pl", Role: domain.UserRoleAgent, IsActive: false}
	require.NoError(t, f.store.Users().Create(ctx, inactive))

	incident := time.Now()
	_, err := f.service.CreateCase(ctx, inactive.ID, CaseCreateInput{
		ClientID:     f.clientID,
		IncidentDate: &incident,
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
