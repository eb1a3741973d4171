package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
)

func TestNewStoreSeedsStatusCatalog(t *testing.T) {
	store := NewStore()
	statuses, err := store.Statuses().ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 8)
	assert.Equal(t, domain.StatusCodeNew, statuses[0].Code)
	assert.Equal(t, domain.StatusCodeClosed, statuses[7].Code)
	assert.True(t, statuses[7].IsFinal)
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &domain.User{ID: uuid.NewString(), Email: "a@b.pl", Role: domain.UserRoleAgent, IsActive: true}
	err := store.InTx(ctx, func(tx repository.Store) error {
		return tx.Users().Create(ctx, user)
	})
	require.NoError(t, err)

	loaded, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, loaded.Email)
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &domain.User{ID: uuid.NewString(), Email: "a@b.pl", Role: domain.UserRoleAgent, IsActive: true}
	err := store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	_, err = store.Users().GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNestedInTxJoinsOuterTransaction(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &domain.User{ID: uuid.NewString(), Email: "a@b.pl", Role: domain.UserRoleAgent, IsActive: true}
	err := store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.InTx(ctx, func(inner repository.Store) error {
			_, err := inner.Users().GetByID(ctx, user.ID)
			return err
		})
	})
	require.NoError(t, err)
}

func TestCaseNumberUniquenessEnforced(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := &domain.Case{ID: uuid.NewString(), CaseNumber: "SH/2026/08/00001", ClientID: "c", StatusID: 1, CreatedByUserID: "u"}
	require.NoError(t, store.Cases().Create(ctx, first))

	dup := &domain.Case{ID: uuid.NewString(), CaseNumber: "SH/2026/08/00001", ClientID: "c", StatusID: 1, CreatedByUserID: "u"}
	err := store.Cases().Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestMaxSequenceIgnoresOtherMonths(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, number := range []string{"SH/2026/08/00003", "SH/2026/07/00009"} {
		c := &domain.Case{ID: uuid.NewString(), CaseNumber: number, ClientID: "c", StatusID: 1, CreatedByUserID: "u"}
		require.NoError(t, store.Cases().Create(ctx, c))
	}

	highest, err := store.Cases().MaxSequence(ctx, "SH/2026/08/")
	require.NoError(t, err)
	assert.Equal(t, 3, highest)
}
