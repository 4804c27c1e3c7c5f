// Package money provides the integer minor-unit amount primitive used
// for every monetary value in the system. Amounts are never floats;
// decimals only appear at the presentation boundary.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in minor currency units (e.g. cents).
type Amount int64

// MaxMinor bounds a single amount. Anything larger is a data-entry
// error, not a real transaction.
const MaxMinor Amount = 1_000_000_000_000_000

// minorExponent is the number of decimal places in one major unit.
const minorExponent = 2

// Validate reports whether the amount is usable as a transaction,
// share or payment amount: strictly positive and within bounds.
func (a Amount) Validate() error {
	if a <= 0 {
		return fmt.Errorf("amount must be positive, got %d", a)
	}
	if a > MaxMinor {
		return fmt.Errorf("amount %d exceeds maximum %d", a, MaxMinor)
	}
	return nil
}

// IsValid is the boolean form of Validate.
func (a Amount) IsValid() bool {
	return a.Validate() == nil
}

// Decimal returns the amount in major units as an exact decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorExponent)
}

// String formats the amount in major units, e.g. 1234 -> "12.34".
func (a Amount) String() string {
	return a.Decimal().StringFixed(minorExponent)
}

// Parse converts a decimal string in major units ("12.34", "7") to an
// Amount. Fractions finer than the minor unit are rejected rather than
// rounded; rounding a ledger amount silently would corrupt balances.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	minor := d.Shift(minorExponent)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has sub-minor-unit precision", s)
	}
	a := Amount(minor.IntPart())
	if err := a.Validate(); err != nil {
		return 0, err
	}
	return a, nil
}

// Sum adds amounts without validating them; callers validate the parts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
