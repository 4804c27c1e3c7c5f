package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/repository/memory"
)

// fixture wires the three engines over fresh in-memory stores with a
// seeded user, accounts, categories and two external people.
type fixture struct {
	stores      *memory.Stores
	tx          *TransactionService
	debts       *DebtService
	settlements *SettlementService

	user     *models.User
	checking *models.Account
	savings  *models.Account
	credit   *models.Account

	expenseCat  *models.Category
	incomeCat   *models.Category
	transferCat *models.Category

	alice *models.ExternalPerson
	bob   *models.ExternalPerson
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	stores := memory.NewStores()
	logger := zap.NewNop()

	f := &fixture{stores: stores}
	f.tx = NewTransactionService(stores.Users, stores.Accounts, stores.Categories, stores.Transactions, logger)
	f.debts = NewDebtService(stores.Transactions, stores.Accounts, stores.Persons, stores.DebtShares, stores.DebtPayments, logger)
	f.settlements = NewSettlementService(f.debts, stores.DebtShares, stores.DebtPayments, logger)

	now := time.Now().UTC()
	f.user = &models.User{ID: uuid.New(), Username: "demo", Email: "demo@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, stores.Users.Create(ctx, f.user))

	f.checking = f.seedAccount(t, models.AccountChecking, 100_000)
	f.savings = f.seedAccount(t, models.AccountSavings, 50_000)
	f.credit = f.seedAccount(t, models.AccountCredit, 0)

	f.expenseCat = f.seedCategory(t, models.CategoryExpense)
	f.incomeCat = f.seedCategory(t, models.CategoryIncome)
	f.transferCat = f.seedCategory(t, models.CategoryTransfer)

	f.alice = f.seedPerson(t, "Alice")
	f.bob = f.seedPerson(t, "Bob")

	return f
}

func (f *fixture) seedAccount(t *testing.T, accountType models.AccountType, balance money.Amount) *models.Account {
	t.Helper()
	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		UserID:       f.user.ID,
		Name:         string(accountType),
		Type:         accountType,
		BalanceMinor: balance,
		Currency:     "EUR",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.stores.Accounts.Create(context.Background(), account))
	return account
}

func (f *fixture) seedCategory(t *testing.T, categoryType models.CategoryType) *models.Category {
	t.Helper()
	now := time.Now().UTC()
	category := &models.Category{
		ID:        uuid.New(),
		UserID:    f.user.ID,
		Name:      string(categoryType),
		Type:      categoryType,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.stores.Categories.Create(context.Background(), category))
	return category
}

func (f *fixture) seedPerson(t *testing.T, name string) *models.ExternalPerson {
	t.Helper()
	now := time.Now().UTC()
	person := &models.ExternalPerson{
		ID:        uuid.New(),
		UserID:    f.user.ID,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.stores.Persons.Create(context.Background(), person))
	return person
}

// seedExpense creates an expense transaction through the engine.
func (f *fixture) seedExpense(t *testing.T, account *models.Account, amount money.Amount) *models.Transaction {
	t.Helper()
	tx, err := f.tx.Create(context.Background(), CreateTransactionInput{
		UserID:      f.user.ID,
		AccountID:   account.ID,
		Date:        time.Now().UTC().Add(-time.Hour),
		AmountMinor: amount,
		Type:        models.TransactionExpense,
		CategoryID:  f.expenseCat.ID,
	})
	require.NoError(t, err)
	return tx
}

// seedShare plants a debt share directly in the store with full
// control over timestamps, for FIFO ordering tests.
func (f *fixture) seedShare(t *testing.T, debtorID, creditorID uuid.UUID, amount money.Amount, createdAt time.Time) *models.DebtShare {
	t.Helper()
	return f.seedShareIn(t, debtorID, creditorID, amount, "EUR", createdAt)
}

func (f *fixture) seedShareIn(t *testing.T, debtorID, creditorID uuid.UUID, amount money.Amount, currency string, createdAt time.Time) *models.DebtShare {
	t.Helper()
	share := &models.DebtShare{
		ID:            uuid.New(),
		CreditorID:    creditorID,
		DebtorID:      debtorID,
		TransactionID: uuid.New(),
		AmountMinor:   amount,
		Currency:      currency,
		Status:        models.DebtPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, f.stores.DebtShares.CreateBatch(context.Background(), []*models.DebtShare{share}))
	return share
}

func (f *fixture) accountBalance(t *testing.T, id uuid.UUID) money.Amount {
	t.Helper()
	account, err := f.stores.Accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return account.BalanceMinor
}

func (f *fixture) shareStatus(t *testing.T, id uuid.UUID) models.DebtStatus {
	t.Helper()
	share, err := f.stores.DebtShares.GetByID(context.Background(), id)
	require.NoError(t, err)
	return share.Status
}
