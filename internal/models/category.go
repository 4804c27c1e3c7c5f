package models

import (
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryIncome   CategoryType = "income"
	CategoryExpense  CategoryType = "expense"
	CategoryTransfer CategoryType = "transfer"
	CategoryDebt     CategoryType = "debt"
)

type Category struct {
	ID              uuid.UUID    `db:"id"`
	UserID          uuid.UUID    `db:"user_id"`
	Name            string       `db:"name"`
	Type            CategoryType `db:"type"`
	BudgetingMethod string       `db:"budgeting_method"`
	IsActive        bool         `db:"is_active"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

// Matches reports whether the category may be attached to a
// transaction of the given type. Transfer categories match anything.
func (c *Category) Matches(txType TransactionType) bool {
	if c.Type == CategoryTransfer {
		return true
	}
	return string(c.Type) == string(txType)
}
