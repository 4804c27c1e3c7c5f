package models

import (
	"time"

	"github.com/google/uuid"

	"finledger/internal/money"
)

type DebtStatus string

const (
	DebtPending DebtStatus = "pending"
	DebtPartial DebtStatus = "partial"
	DebtPaid    DebtStatus = "paid"
)

// CanTransition reports whether a debt share status change is legal.
// Paid is terminal and a share can never regress toward pending.
func (s DebtStatus) CanTransition(to DebtStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case DebtPending:
		return to == DebtPartial || to == DebtPaid
	case DebtPartial:
		return to == DebtPaid
	default: // DebtPaid
		return false
	}
}

// DebtStatusFor derives the status of a share from the cumulative
// amount paid against it.
func DebtStatusFor(totalPaid, amount money.Amount) DebtStatus {
	switch {
	case totalPaid >= amount:
		return DebtPaid
	case totalPaid > 0:
		return DebtPartial
	default:
		return DebtPending
	}
}

// DebtShare is a portion of an expense transaction owed to its owner
// by a third party.
type DebtShare struct {
	ID            uuid.UUID    `db:"id"`
	CreditorID    uuid.UUID    `db:"creditor_id"`
	DebtorID      uuid.UUID    `db:"debtor_id"`
	TransactionID uuid.UUID    `db:"transaction_id"`
	AmountMinor   money.Amount `db:"amount_minor"`
	Currency      string       `db:"currency"`
	Status        DebtStatus   `db:"status"`
	// Version guards status updates against concurrent payments.
	Version   int64     `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DebtPayment is an append-only ledger entry recording money paid
// against a single debt share. Payments are never updated or deleted.
type DebtPayment struct {
	ID          uuid.UUID    `db:"id"`
	DebtShareID uuid.UUID    `db:"debt_share_id"`
	PayerID     uuid.UUID    `db:"payer_id"`
	PayeeID     uuid.UUID    `db:"payee_id"`
	AmountMinor money.Amount `db:"amount_minor"`
	PaymentDate time.Time    `db:"payment_date"`
	// TransactionID optionally links the payment to a ledger
	// transaction for reconciliation.
	TransactionID uuid.UUID `db:"transaction_id"`
	Note          string    `db:"note"`
	CreatedAt     time.Time `db:"created_at"`
}
