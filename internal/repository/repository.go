// Package repository defines the persistence contracts the engines
// depend on, together with the postgres implementations. The engines
// never see a driver; tests run against the in-memory implementations
// in repository/memory.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"finledger/internal/models"
	"finledger/internal/money"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrVersionConflict is returned when a version-checked write
	// observes a stale version. Callers re-read and retry.
	ErrVersionConflict = errors.New("version conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Account, error)
	// UpdateBalance writes a new balance if and only if the stored
	// version equals expectedVersion, bumping the version on success.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance money.Amount, expectedVersion int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type PersonRepository interface {
	Create(ctx context.Context, person *models.ExternalPerson) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExternalPerson, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	// GetByAccountID returns the account's transactions, newest first.
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Transaction, error)
	// ReplaceSplits swaps the full split set of a transaction.
	ReplaceSplits(ctx context.Context, id uuid.UUID, splits []models.Split, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus, updatedAt time.Time) error
}

type DebtShareRepository interface {
	CreateBatch(ctx context.Context, shares []*models.DebtShare) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DebtShare, error)
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*models.DebtShare, error)
	// GetByCreditorID and GetByDebtorID return shares ordered by
	// (created_at, id) ascending; settlement correctness depends on
	// this ordering being stable.
	GetByCreditorID(ctx context.Context, creditorID uuid.UUID) ([]*models.DebtShare, error)
	GetByDebtorID(ctx context.Context, debtorID uuid.UUID) ([]*models.DebtShare, error)
	GetByPair(ctx context.Context, debtorID, creditorID uuid.UUID) ([]*models.DebtShare, error)
	// UpdateStatus is version-checked like AccountRepository.UpdateBalance.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DebtStatus, expectedVersion int64) error
}

// DebtPaymentRepository is append-only: payments are immutable ledger
// entries with no update or delete.
type DebtPaymentRepository interface {
	Create(ctx context.Context, payment *models.DebtPayment) error
	GetByDebtShareID(ctx context.Context, debtShareID uuid.UUID) ([]*models.DebtPayment, error)
}
