package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/repository"
)

func TestAccountStoreVersionedBalance(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()

	account := &models.Account{ID: uuid.New(), Type: models.AccountChecking, BalanceMinor: 1000}
	require.NoError(t, stores.Accounts.Create(ctx, account))

	require.NoError(t, stores.Accounts.UpdateBalance(ctx, account.ID, 500, 0))

	got, err := stores.Accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(500), got.BalanceMinor)
	assert.Equal(t, int64(1), got.Version)

	t.Run("stale version rejected", func(t *testing.T) {
		err := stores.Accounts.UpdateBalance(ctx, account.ID, 999, 0)
		assert.ErrorIs(t, err, repository.ErrVersionConflict)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := stores.Accounts.UpdateBalance(ctx, uuid.New(), 999, 0)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDebtShareStoreVersionedStatus(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()

	share := &models.DebtShare{ID: uuid.New(), Status: models.DebtPending, AmountMinor: 1000}
	require.NoError(t, stores.DebtShares.CreateBatch(ctx, []*models.DebtShare{share}))

	require.NoError(t, stores.DebtShares.UpdateStatus(ctx, share.ID, models.DebtPartial, 0))

	// A second writer holding the original version loses.
	err := stores.DebtShares.UpdateStatus(ctx, share.ID, models.DebtPaid, 0)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	got, err := stores.DebtShares.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DebtPartial, got.Status)
	assert.Equal(t, int64(1), got.Version)
}

func TestDebtShareStoreOrdering(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()
	debtor, creditor := uuid.New(), uuid.New()
	now := time.Now().UTC()

	tied1 := &models.DebtShare{ID: uuid.New(), DebtorID: debtor, CreditorID: creditor, CreatedAt: now}
	tied2 := &models.DebtShare{ID: uuid.New(), DebtorID: debtor, CreditorID: creditor, CreatedAt: now}
	newest := &models.DebtShare{ID: uuid.New(), DebtorID: debtor, CreditorID: creditor, CreatedAt: now.Add(time.Minute)}
	oldest := &models.DebtShare{ID: uuid.New(), DebtorID: debtor, CreditorID: creditor, CreatedAt: now.Add(-time.Minute)}
	other := &models.DebtShare{ID: uuid.New(), DebtorID: uuid.New(), CreditorID: creditor, CreatedAt: now}
	require.NoError(t, stores.DebtShares.CreateBatch(ctx, []*models.DebtShare{tied1, tied2, newest, oldest, other}))

	shares, err := stores.DebtShares.GetByPair(ctx, debtor, creditor)
	require.NoError(t, err)
	require.Len(t, shares, 4)

	assert.Equal(t, oldest.ID, shares[0].ID)
	assert.Equal(t, newest.ID, shares[3].ID)
	// Equal timestamps fall back to the id for a stable order.
	if tied2.ID.String() < tied1.ID.String() {
		tied1, tied2 = tied2, tied1
	}
	assert.Equal(t, tied1.ID, shares[1].ID)
	assert.Equal(t, tied2.ID, shares[2].ID)
}

func TestDebtShareStoreCopyOnRead(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()

	share := &models.DebtShare{ID: uuid.New(), Status: models.DebtPending}
	require.NoError(t, stores.DebtShares.CreateBatch(ctx, []*models.DebtShare{share}))

	got, err := stores.DebtShares.GetByID(ctx, share.ID)
	require.NoError(t, err)
	got.Status = models.DebtPaid

	again, err := stores.DebtShares.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DebtPending, again.Status, "mutating a read result must not leak into the store")
}

func TestTransactionStoreSplits(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()

	tx := &models.Transaction{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Splits:    []models.Split{{CategoryID: uuid.New(), AmountMinor: 1000}},
	}
	require.NoError(t, stores.Transactions.Create(ctx, tx))

	replacement := []models.Split{
		{CategoryID: uuid.New(), AmountMinor: 600},
		{CategoryID: uuid.New(), AmountMinor: 400},
	}
	require.NoError(t, stores.Transactions.ReplaceSplits(ctx, tx.ID, replacement, time.Now().UTC()))

	got, err := stores.Transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, got.Splits, 2)

	// The stored splits are detached from the caller's slice.
	replacement[0].AmountMinor = 9999
	again, err := stores.Transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(600), again.Splits[0].AmountMinor)
}

func TestTransactionStoreListOrdering(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Now().UTC()

	older := &models.Transaction{ID: uuid.New(), AccountID: accountID, Date: now.Add(-time.Hour)}
	newer := &models.Transaction{ID: uuid.New(), AccountID: accountID, Date: now}
	require.NoError(t, stores.Transactions.Create(ctx, older))
	require.NoError(t, stores.Transactions.Create(ctx, newer))

	txs, err := stores.Transactions.GetByAccountID(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, newer.ID, txs[0].ID, "newest first")
}

func TestDebtPaymentStoreAppendOnly(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()
	shareID := uuid.New()
	now := time.Now().UTC()

	first := &models.DebtPayment{ID: uuid.New(), DebtShareID: shareID, AmountMinor: 300, PaymentDate: now.Add(-time.Minute), CreatedAt: now.Add(-time.Minute)}
	second := &models.DebtPayment{ID: uuid.New(), DebtShareID: shareID, AmountMinor: 700, PaymentDate: now, CreatedAt: now}
	require.NoError(t, stores.DebtPayments.Create(ctx, second))
	require.NoError(t, stores.DebtPayments.Create(ctx, first))
	require.NoError(t, stores.DebtPayments.Create(ctx, &models.DebtPayment{ID: uuid.New(), DebtShareID: uuid.New(), AmountMinor: 1}))

	payments, err := stores.DebtPayments.GetByDebtShareID(ctx, shareID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, first.ID, payments[0].ID, "oldest payment first regardless of insertion order")
	assert.Equal(t, second.ID, payments[1].ID)
}
