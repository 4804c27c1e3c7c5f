package models

import (
	"time"

	"github.com/google/uuid"

	"finledger/internal/money"
)

type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusCleared    TransactionStatus = "cleared"
	StatusReconciled TransactionStatus = "reconciled"
)

// Split attributes a portion of a transaction's amount to a category.
type Split struct {
	CategoryID  uuid.UUID    `db:"category_id"`
	AmountMinor money.Amount `db:"amount_minor"`
	Note        string       `db:"note"`
}

type Transaction struct {
	ID          uuid.UUID         `db:"id"`
	UserID      uuid.UUID         `db:"user_id"`
	AccountID   uuid.UUID         `db:"account_id"`
	Date        time.Time         `db:"date"`
	AmountMinor money.Amount      `db:"amount_minor"`
	Type        TransactionType   `db:"type"`
	Status      TransactionStatus `db:"status"`
	Splits      []Split
	// Counterparty holds a free-text payee name, or for transfer legs
	// the paired account's id so each leg points at the other.
	Counterparty           string    `db:"counterparty"`
	Description            string    `db:"description"`
	RecurringTransactionID uuid.UUID `db:"recurring_transaction_id"`
	CreatedAt              time.Time `db:"created_at"`
	UpdatedAt              time.Time `db:"updated_at"`
}

// SplitsTotal sums the split amounts. A stored transaction always
// satisfies SplitsTotal() == AmountMinor.
func (t *Transaction) SplitsTotal() money.Amount {
	var total money.Amount
	for _, s := range t.Splits {
		total += s.AmountMinor
	}
	return total
}
