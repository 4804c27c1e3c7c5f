package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/bizerror"
	"finledger/internal/models"
	"finledger/internal/money"
)

func TestCreateShares(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.seedExpense(t, f.checking, 10_000)

	shares, err := f.debts.CreateShares(ctx, tx.ID, []DebtShareInput{
		{DebtorID: f.alice.ID, AmountMinor: 3333},
		{DebtorID: f.bob.ID, AmountMinor: 3333},
		{DebtorID: f.alice.ID, AmountMinor: 3334},
	})
	require.NoError(t, err)
	require.Len(t, shares, 3)

	var sum money.Amount
	for _, share := range shares {
		sum += share.AmountMinor
		assert.Equal(t, models.DebtPending, share.Status)
		assert.Equal(t, f.user.ID, share.CreditorID)
		assert.Equal(t, tx.ID, share.TransactionID)
		assert.Equal(t, "EUR", share.Currency)
	}
	assert.Equal(t, tx.AmountMinor, sum, "shares cover the transaction exactly")
}

func TestCreateShares_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := f.debts.CreateShares(ctx, uuid.New(), []DebtShareInput{
			{DebtorID: f.alice.ID, AmountMinor: 100},
		})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeTransactionNotFound))
	})

	t.Run("non-expense transaction", func(t *testing.T) {
		income, err := f.tx.Create(ctx, CreateTransactionInput{
			UserID:      f.user.ID,
			AccountID:   f.checking.ID,
			Date:        time.Now().UTC().Add(-time.Hour),
			AmountMinor: 5000,
			Type:        models.TransactionIncome,
			CategoryID:  f.incomeCat.ID,
		})
		require.NoError(t, err)

		_, err = f.debts.CreateShares(ctx, income.ID, []DebtShareInput{
			{DebtorID: f.alice.ID, AmountMinor: 5000},
		})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeTransactionNotExpense))
	})

	t.Run("sum mismatch", func(t *testing.T) {
		tx := f.seedExpense(t, f.checking, 10_000)
		_, err := f.debts.CreateShares(ctx, tx.ID, []DebtShareInput{
			{DebtorID: f.alice.ID, AmountMinor: 9999},
		})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeSharesAmountMismatch))
	})

	t.Run("unknown debtor", func(t *testing.T) {
		tx := f.seedExpense(t, f.checking, 10_000)
		_, err := f.debts.CreateShares(ctx, tx.ID, []DebtShareInput{
			{DebtorID: uuid.New(), AmountMinor: 10_000},
		})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeDebtorNotFound))
	})

	t.Run("duplicate share set", func(t *testing.T) {
		tx := f.seedExpense(t, f.checking, 10_000)
		_, err := f.debts.CreateShares(ctx, tx.ID, []DebtShareInput{
			{DebtorID: f.alice.ID, AmountMinor: 10_000},
		})
		require.NoError(t, err)

		_, err = f.debts.CreateShares(ctx, tx.ID, []DebtShareInput{
			{DebtorID: f.bob.ID, AmountMinor: 10_000},
		})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeDuplicateDebtShares))
	})
}

func TestRecordPayment_StatusProgression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	share := f.seedShare(t, f.alice.ID, f.user.ID, 5000, time.Now().UTC())

	p1, err := f.debts.RecordPayment(ctx, share.ID, 2000, PaymentOptions{Note: "first half-ish"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, p1.PayerID)
	assert.Equal(t, f.user.ID, p1.PayeeID)
	assert.Equal(t, models.DebtPartial, f.shareStatus(t, share.ID))

	_, err = f.debts.RecordPayment(ctx, share.ID, 3000, PaymentOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.DebtPaid, f.shareStatus(t, share.ID))

	payments, err := f.debts.ListPayments(ctx, share.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, money.Amount(2000), payments[0].AmountMinor)
	assert.Equal(t, money.Amount(3000), payments[1].AmountMinor)
}

func TestRecordPayment_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	share := f.seedShare(t, f.alice.ID, f.user.ID, 5000, time.Now().UTC())

	t.Run("overpay", func(t *testing.T) {
		_, err := f.debts.RecordPayment(ctx, share.ID, 5001, PaymentOptions{})
		assert.True(t, bizerror.HasCode(err, bizerror.CodePaymentExceedsDebt))
	})

	t.Run("overpay after partial", func(t *testing.T) {
		_, err := f.debts.RecordPayment(ctx, share.ID, 4000, PaymentOptions{})
		require.NoError(t, err)
		_, err = f.debts.RecordPayment(ctx, share.ID, 1001, PaymentOptions{})
		assert.True(t, bizerror.HasCode(err, bizerror.CodePaymentExceedsDebt))
	})

	t.Run("already paid", func(t *testing.T) {
		_, err := f.debts.RecordPayment(ctx, share.ID, 1000, PaymentOptions{})
		require.NoError(t, err)
		require.Equal(t, models.DebtPaid, f.shareStatus(t, share.ID))

		_, err = f.debts.RecordPayment(ctx, share.ID, 1, PaymentOptions{})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeDebtAlreadyPaid))
	})

	t.Run("unknown share", func(t *testing.T) {
		_, err := f.debts.RecordPayment(ctx, uuid.New(), 100, PaymentOptions{})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeDebtShareNotFound))
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, err := f.debts.RecordPayment(ctx, share.ID, 0, PaymentOptions{})
		assert.True(t, bizerror.HasCode(err, bizerror.CodeInvalidAmount))
	})
}

func TestDebtsOwedToMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Alice owes 3000 + 5000, Bob owes 2000 of which 500 is paid off.
	f.seedShare(t, f.alice.ID, f.user.ID, 3000, now.Add(-48*time.Hour))
	f.seedShare(t, f.alice.ID, f.user.ID, 5000, now.Add(-24*time.Hour))
	bobShare := f.seedShare(t, f.bob.ID, f.user.ID, 2000, now)
	_, err := f.debts.RecordPayment(ctx, bobShare.ID, 500, PaymentOptions{})
	require.NoError(t, err)

	summaries, err := f.debts.DebtsOwedToMe(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, f.alice.ID, summaries[0].PersonID, "largest outstanding first")
	assert.Equal(t, "Alice", summaries[0].PersonName)
	assert.Equal(t, money.Amount(8000), summaries[0].TotalOwedMinor)
	assert.Equal(t, 2, summaries[0].DebtCount)
	assert.True(t, summaries[0].OldestDebtDate.Equal(now.Add(-48*time.Hour)))

	assert.Equal(t, f.bob.ID, summaries[1].PersonID)
	assert.Equal(t, money.Amount(1500), summaries[1].TotalOwedMinor, "net of payments")
}

func TestDebtsOwedToMe_ExcludesPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	share := f.seedShare(t, f.alice.ID, f.user.ID, 1000, time.Now().UTC())
	_, err := f.debts.RecordPayment(ctx, share.ID, 1000, PaymentOptions{})
	require.NoError(t, err)

	summaries, err := f.debts.DebtsOwedToMe(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestDebtsIOwe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	f.seedShare(t, f.user.ID, f.alice.ID, 4000, now)
	f.seedShare(t, f.alice.ID, f.user.ID, 9000, now) // other direction, must not leak in

	summaries, err := f.debts.DebtsIOwe(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, f.alice.ID, summaries[0].PersonID)
	assert.Equal(t, money.Amount(4000), summaries[0].TotalOwedMinor)
}

func TestDebtsOwedToMe_GroupsPerCurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	f.seedShareIn(t, f.alice.ID, f.user.ID, 3000, "EUR", now.Add(-time.Hour))
	f.seedShareIn(t, f.alice.ID, f.user.ID, 2000, "USD", now)

	summaries, err := f.debts.DebtsOwedToMe(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2, "one row per currency, amounts never mixed")

	assert.Equal(t, f.alice.ID, summaries[0].PersonID)
	assert.Equal(t, "EUR", summaries[0].Currency)
	assert.Equal(t, money.Amount(3000), summaries[0].TotalOwedMinor)
	assert.Equal(t, 1, summaries[0].DebtCount)

	assert.Equal(t, f.alice.ID, summaries[1].PersonID)
	assert.Equal(t, "USD", summaries[1].Currency)
	assert.Equal(t, money.Amount(2000), summaries[1].TotalOwedMinor)
}

func TestSummary_UnknownPersonFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ghost := uuid.New() // no person record exists
	f.seedShare(t, ghost, f.user.ID, 2500, time.Now().UTC())

	summaries, err := f.debts.DebtsOwedToMe(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, ghost, summaries[0].PersonID)
	assert.Equal(t, "Unknown Person", summaries[0].PersonName)
	assert.False(t, summaries[0].PersonActive)
}
