// Package bizerror defines the single structured error kind used for
// all domain failures. Every validation failure a caller can recover
// from is a *BusinessError with a stable code; anything else is a
// technical error and propagates wrapped.
package bizerror

import (
	"errors"
	"fmt"
)

// Stable business error codes.
const (
	CodeTransactionNotFound      = "TRANSACTION_NOT_FOUND"
	CodeAccountNotFound          = "ACCOUNT_NOT_FOUND"
	CodeAccountNotActive         = "ACCOUNT_NOT_ACTIVE"
	CodeUserNotFound             = "USER_NOT_FOUND"
	CodeCategoryNotFound         = "CATEGORY_NOT_FOUND"
	CodeCategoryNotActive        = "CATEGORY_NOT_ACTIVE"
	CodeCategoryTypeMismatch     = "CATEGORY_TYPE_MISMATCH"
	CodeInsufficientFunds        = "INSUFFICIENT_FUNDS"
	CodeSplitAmountMismatch      = "SPLIT_AMOUNT_MISMATCH"
	CodeTransactionDateInvalid   = "TRANSACTION_DATE_INVALID"
	CodeAlreadyReconciled        = "ALREADY_RECONCILED"
	CodeDebtorNotFound           = "DEBTOR_NOT_FOUND"
	CodeTransactionNotExpense    = "TRANSACTION_NOT_EXPENSE"
	CodeSharesAmountMismatch     = "SHARES_AMOUNT_MISMATCH"
	CodeDuplicateDebtShares      = "DUPLICATE_DEBT_SHARES"
	CodeDebtShareNotFound        = "DEBT_SHARE_NOT_FOUND"
	CodeDebtAlreadyPaid          = "DEBT_ALREADY_PAID"
	CodePaymentExceedsDebt       = "PAYMENT_EXCEEDS_DEBT"
	CodeNoOutstandingDebts       = "NO_OUTSTANDING_DEBTS"
	CodeAmountExceedsOutstanding = "AMOUNT_EXCEEDS_OUTSTANDING"
	CodeInvalidAmount            = "INVALID_AMOUNT"
)

// BusinessError is a caller-recoverable domain failure.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// New creates a BusinessError with a formatted message.
func New(code, format string, args ...any) *BusinessError {
	return &BusinessError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// As extracts a BusinessError from an error chain.
func As(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// HasCode reports whether err is a BusinessError with the given code.
func HasCode(err error, code string) bool {
	be, ok := As(err)
	return ok && be.Code == code
}
