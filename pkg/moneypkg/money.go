// Package moneypkg provides fixed-point money amount handling.
//
// All balance math in the ledger runs on decimals with at most two
// fractional digits. Floats never touch money.
package moneypkg

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits for all money amounts.
const Scale = 2

var (
	// ErrMalformed indicates an amount that is not a decimal number.
	ErrMalformed = errors.New("amount is not a valid decimal number")
	// ErrNotPositive indicates a zero or negative amount.
	ErrNotPositive = errors.New("amount must be positive")
	// ErrTooPrecise indicates an amount with sub-cent precision.
	ErrTooPrecise = errors.New("amount has more than two fractional digits")
)

// Parse converts a string into a positive money amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrMalformed
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, ErrNotPositive
	}

	if d.Exponent() < -Scale {
		return decimal.Decimal{}, ErrTooPrecise
	}

	return d, nil
}

// ParseNonNegative converts a string into a money amount that may be zero.
func ParseNonNegative(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrMalformed
	}

	if d.IsNegative() {
		return decimal.Decimal{}, ErrNotPositive
	}

	if d.Exponent() < -Scale {
		return decimal.Decimal{}, ErrTooPrecise
	}

	return d, nil
}
