package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finledger/internal/bizerror"
	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/repository"
)

// maxCASRetries bounds the compare-and-swap retry loops on balances
// and debt share statuses.
const maxCASRetries = 5

// maxTransactionAge is how far in the past a transaction date may lie.
const maxTransactionAge = 10 * 365 * 24 * time.Hour

type TransactionService struct {
	users        repository.UserRepository
	accounts     repository.AccountRepository
	categories   repository.CategoryRepository
	transactions repository.TransactionRepository
	logger       *zap.Logger
}

func NewTransactionService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	categories repository.CategoryRepository,
	transactions repository.TransactionRepository,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		users:        users,
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
		logger:       logger,
	}
}

type SplitInput struct {
	CategoryID  uuid.UUID
	AmountMinor money.Amount
	Note        string
}

type CreateTransactionInput struct {
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Date        time.Time
	AmountMinor money.Amount
	Type        models.TransactionType
	// CategoryID builds the implicit single split when Splits is empty.
	CategoryID uuid.UUID
	Splits     []SplitInput
	// CounterpartyAccountID is the target account for transfers.
	CounterpartyAccountID uuid.UUID
	// Counterparty is a free-text payee for income/expense.
	Counterparty           string
	Description            string
	RecurringTransactionID uuid.UUID
}

// Create validates and persists a transaction and applies its balance
// effect. All validation happens before any write: a business error
// always means nothing was persisted. For transfers both legs are
// created and the paired leg points back at the source account.
func (s *TransactionService) Create(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, bizerror.New(bizerror.CodeUserNotFound, "user %s not found", input.UserID)
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	account, err := s.requireActiveAccount(ctx, input.AccountID, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validateDate(input.Date); err != nil {
		return nil, err
	}

	if err := input.AmountMinor.Validate(); err != nil {
		return nil, bizerror.New(bizerror.CodeInvalidAmount, "invalid transaction amount: %v", err)
	}

	splits, err := s.normalizeSplits(input)
	if err != nil {
		return nil, err
	}
	if err := s.validateSplitCategories(ctx, splits, input.UserID, input.Type); err != nil {
		return nil, err
	}

	var target *models.Account
	if input.Type == models.TransactionTransfer {
		target, err = s.validateTransferTarget(ctx, input, account)
		if err != nil {
			return nil, err
		}
	}

	// Funds are checked here for a clean business error before any
	// write, and re-checked inside the CAS loop under contention.
	if isDebit(input.Type) && !account.Type.AllowsOverdraft() && input.AmountMinor > account.BalanceMinor {
		return nil, insufficientFunds(account.BalanceMinor, input.AmountMinor)
	}

	now := time.Now().UTC()
	tx := &models.Transaction{
		ID:                     uuid.New(),
		UserID:                 input.UserID,
		AccountID:              input.AccountID,
		Date:                   input.Date,
		AmountMinor:            input.AmountMinor,
		Type:                   input.Type,
		Status:                 models.StatusPending,
		Splits:                 splits,
		Counterparty:           input.Counterparty,
		Description:            input.Description,
		RecurringTransactionID: input.RecurringTransactionID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if input.Type == models.TransactionTransfer {
		tx.Counterparty = target.ID.String()
	}

	// The debit is applied before the row is written; it is the only
	// effect that can still fail a business check (funds revalidated
	// on CAS conflict), so a failure here leaves nothing behind.
	if isDebit(input.Type) {
		if err := s.applyBalanceDelta(ctx, account.ID, -input.AmountMinor, true); err != nil {
			return nil, err
		}
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	switch input.Type {
	case models.TransactionIncome:
		if err := s.applyBalanceDelta(ctx, account.ID, input.AmountMinor, false); err != nil {
			return nil, err
		}
	case models.TransactionTransfer:
		paired := &models.Transaction{
			ID:           uuid.New(),
			UserID:       input.UserID,
			AccountID:    target.ID,
			Date:         input.Date,
			AmountMinor:  input.AmountMinor,
			Type:         models.TransactionTransfer,
			Status:       models.StatusPending,
			Splits:       splits,
			Counterparty: account.ID.String(),
			Description:  input.Description,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.transactions.Create(ctx, paired); err != nil {
			return nil, fmt.Errorf("persist paired transfer leg: %w", err)
		}
		if err := s.applyBalanceDelta(ctx, target.ID, input.AmountMinor, false); err != nil {
			return nil, err
		}
	}

	s.logger.Info("transaction created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", string(tx.Type)),
		zap.Int64("amount_minor", int64(tx.AmountMinor)),
	)

	return tx, nil
}

// Split replaces the full split set of a transaction. Reconciled
// transactions are immutable.
func (s *TransactionService) Split(ctx context.Context, transactionID uuid.UUID, splits []SplitInput) (*models.Transaction, error) {
	tx, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status == models.StatusReconciled {
		return nil, bizerror.New(bizerror.CodeAlreadyReconciled, "transaction %s is reconciled and cannot be modified", transactionID)
	}
	if len(splits) == 0 {
		return nil, bizerror.New(bizerror.CodeSplitAmountMismatch, "at least one split is required")
	}

	newSplits, err := buildSplits(splits, tx.AmountMinor)
	if err != nil {
		return nil, err
	}
	if err := s.validateSplitCategories(ctx, newSplits, tx.UserID, tx.Type); err != nil {
		return nil, err
	}

	updatedAt := time.Now().UTC()
	if err := s.transactions.ReplaceSplits(ctx, transactionID, newSplits, updatedAt); err != nil {
		return nil, fmt.Errorf("replace splits: %w", err)
	}

	tx.Splits = newSplits
	tx.UpdatedAt = updatedAt
	return tx, nil
}

// Reconcile advances the transaction to its terminal status.
func (s *TransactionService) Reconcile(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status == models.StatusReconciled {
		return nil, bizerror.New(bizerror.CodeAlreadyReconciled, "transaction %s is already reconciled", transactionID)
	}

	updatedAt := time.Now().UTC()
	if err := s.transactions.UpdateStatus(ctx, transactionID, models.StatusReconciled, updatedAt); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	tx.Status = models.StatusReconciled
	tx.UpdatedAt = updatedAt
	return tx, nil
}

func (s *TransactionService) Get(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, transactionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, bizerror.New(bizerror.CodeTransactionNotFound, "transaction %s not found", transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("look up transaction: %w", err)
	}
	return tx, nil
}

func (s *TransactionService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Transaction, error) {
	return s.transactions.GetByAccountID(ctx, accountID)
}

func (s *TransactionService) requireActiveAccount(ctx context.Context, accountID, userID uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, bizerror.New(bizerror.CodeAccountNotFound, "account %s not found", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if account.UserID != userID {
		return nil, bizerror.New(bizerror.CodeAccountNotFound, "account %s not found", accountID)
	}
	if !account.IsActive {
		return nil, bizerror.New(bizerror.CodeAccountNotActive, "account %s is not active", accountID)
	}
	return account, nil
}

func (s *TransactionService) validateDate(date time.Time) error {
	now := time.Now().UTC()
	if date.After(now) {
		return bizerror.New(bizerror.CodeTransactionDateInvalid, "transaction date %s is in the future", date.Format(time.RFC3339))
	}
	if date.Before(now.Add(-maxTransactionAge)) {
		return bizerror.New(bizerror.CodeTransactionDateInvalid, "transaction date %s is more than 10 years old", date.Format(time.RFC3339))
	}
	return nil
}

// normalizeSplits collapses the bare category+amount convenience form
// and the explicit split form into one representation.
func (s *TransactionService) normalizeSplits(input CreateTransactionInput) ([]models.Split, error) {
	if len(input.Splits) == 0 {
		if input.CategoryID == uuid.Nil {
			return nil, bizerror.New(bizerror.CodeCategoryNotFound, "a category or explicit splits are required")
		}
		return []models.Split{{CategoryID: input.CategoryID, AmountMinor: input.AmountMinor}}, nil
	}
	return buildSplits(input.Splits, input.AmountMinor)
}

func buildSplits(inputs []SplitInput, total money.Amount) ([]models.Split, error) {
	splits := make([]models.Split, 0, len(inputs))
	var sum money.Amount
	for _, in := range inputs {
		if err := in.AmountMinor.Validate(); err != nil {
			return nil, bizerror.New(bizerror.CodeInvalidAmount, "invalid split amount: %v", err)
		}
		sum += in.AmountMinor
		splits = append(splits, models.Split{CategoryID: in.CategoryID, AmountMinor: in.AmountMinor, Note: in.Note})
	}
	if sum != total {
		return nil, bizerror.New(bizerror.CodeSplitAmountMismatch, "splits sum to %d, transaction amount is %d", sum, total)
	}
	return splits, nil
}

func (s *TransactionService) validateSplitCategories(ctx context.Context, splits []models.Split, userID uuid.UUID, txType models.TransactionType) error {
	for _, split := range splits {
		category, err := s.categories.GetByID(ctx, split.CategoryID)
		if errors.Is(err, repository.ErrNotFound) {
			return bizerror.New(bizerror.CodeCategoryNotFound, "category %s not found", split.CategoryID)
		}
		if err != nil {
			return fmt.Errorf("look up category: %w", err)
		}
		if category.UserID != userID {
			return bizerror.New(bizerror.CodeCategoryNotFound, "category %s not found", split.CategoryID)
		}
		if !category.IsActive {
			return bizerror.New(bizerror.CodeCategoryNotActive, "category %s is not active", split.CategoryID)
		}
		if !category.Matches(txType) {
			return bizerror.New(bizerror.CodeCategoryTypeMismatch, "category %s has type %s, transaction has type %s", split.CategoryID, category.Type, txType)
		}
	}
	return nil
}

func (s *TransactionService) validateTransferTarget(ctx context.Context, input CreateTransactionInput, source *models.Account) (*models.Account, error) {
	if input.CounterpartyAccountID == uuid.Nil {
		return nil, bizerror.New(bizerror.CodeAccountNotFound, "transfer requires a counterparty account")
	}
	if input.CounterpartyAccountID == source.ID {
		return nil, bizerror.New(bizerror.CodeAccountNotFound, "transfer counterparty must be a different account")
	}
	return s.requireActiveAccount(ctx, input.CounterpartyAccountID, input.UserID)
}

// applyBalanceDelta mutates an account balance under optimistic
// concurrency. The overdraft rule is re-evaluated on every attempt so
// a concurrent spend cannot slip the account below zero.
func (s *TransactionService) applyBalanceDelta(ctx context.Context, accountID uuid.UUID, delta money.Amount, enforceFunds bool) error {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		account, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("look up account for balance update: %w", err)
		}

		newBalance := account.BalanceMinor + delta
		if enforceFunds && !account.Type.AllowsOverdraft() && newBalance < 0 {
			return insufficientFunds(account.BalanceMinor, -delta)
		}

		err = s.accounts.UpdateBalance(ctx, accountID, newBalance, account.Version)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		return nil
	}
	return fmt.Errorf("account %s: balance update contention not resolved after %d attempts", accountID, maxCASRetries)
}

func isDebit(txType models.TransactionType) bool {
	return txType == models.TransactionExpense || txType == models.TransactionTransfer
}

func insufficientFunds(balance, requested money.Amount) error {
	return bizerror.New(bizerror.CodeInsufficientFunds, "insufficient funds: balance %d, requested %d", balance, requested)
}
