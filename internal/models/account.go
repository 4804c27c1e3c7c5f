package models

import (
	"time"

	"github.com/google/uuid"

	"finledger/internal/money"
)

type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
)

// AllowsOverdraft reports whether an expense may drive the balance
// negative. Only credit accounts may.
func (t AccountType) AllowsOverdraft() bool {
	return t == AccountCredit
}

type Account struct {
	ID           uuid.UUID    `db:"id"`
	UserID       uuid.UUID    `db:"user_id"`
	Name         string       `db:"name"`
	Type         AccountType  `db:"type"`
	BalanceMinor money.Amount `db:"balance_minor"`
	Currency     string       `db:"currency"`
	IsActive     bool         `db:"is_active"`
	// Version guards balance updates against lost writes; every
	// balance change must carry the version it read.
	Version   int64     `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
