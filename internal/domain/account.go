// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNumberTaken indicates that the generated account number collides with an existing one.
	ErrAccountNumberTaken = errors.New("account number already exists")
	// ErrUnknownAccountType indicates an unrecognized account type token.
	ErrUnknownAccountType = errors.New("unknown account type")
	// ErrUnknownAccountStatus indicates an unrecognized account status token.
	ErrUnknownAccountStatus = errors.New("unknown account status")
)

// AccountType is the category of an account.
type AccountType string

// All supported account types.
const (
	Savings      AccountType = "savings"
	Checking     AccountType = "checking"
	FixedDeposit AccountType = "fixed_deposit"
)

// ParseAccountType converts a persisted token into an AccountType.
// Unrecognized tokens are a hard error, never coerced to a default.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case Savings, Checking, FixedDeposit:
		return AccountType(s), nil
	}

	return "", ErrUnknownAccountType
}

// AccountStatus tells whether an account accepts ledger operations.
type AccountStatus string

// All supported account statuses. Only Active accounts accept
// balance-mutating operations.
const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
	StatusFrozen   AccountStatus = "frozen"
)

// ParseAccountStatus converts a persisted token into an AccountStatus.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch AccountStatus(s) {
	case StatusActive, StatusInactive, StatusFrozen:
		return AccountStatus(s), nil
	}

	return "", ErrUnknownAccountStatus
}

// Account holds one account row. Balance is owned by the store and only
// ever changes through its atomic conditional update.
type Account struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Number       string          `json:"number"`
	Type         AccountType     `json:"type"`
	Balance      decimal.Decimal `json:"balance"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Status       AccountStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CanDebit reports whether the account could cover a debit of the given
// amount. It is a pure decision function over the in-memory snapshot;
// the authoritative check happens in the store's conditional update.
func (a Account) CanDebit(amount decimal.Decimal) bool {
	return a.Status == StatusActive &&
		amount.IsPositive() &&
		a.Balance.GreaterThanOrEqual(amount)
}

// CanCredit reports whether the account accepts a credit of the given amount.
func (a Account) CanCredit(amount decimal.Decimal) bool {
	return a.Status == StatusActive && amount.IsPositive()
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	UserID         int64           `json:"user_id"`
	Number         string          `json:"number"`
	Type           AccountType     `json:"type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
}
