package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a non-positive or malformed amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSelfTransfer indicates a transfer where source and destination are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
	// ErrAccountNotEligible indicates the account is missing or not active.
	ErrAccountNotEligible = errors.New("account not eligible")
	// ErrInsufficientFunds indicates an active account whose balance does not cover the debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDestinationNotEligible indicates the transfer destination is missing or not active.
	ErrDestinationNotEligible = errors.New("destination account not eligible")
	// ErrStoreUnavailable indicates a connectivity or transaction-boundary failure.
	// The failed operation was rolled back and is safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// DepositParams is the input data for a deposit unit of work.
type DepositParams struct {
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// WithdrawParams is the input data for a withdrawal unit of work.
type WithdrawParams struct {
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// TransferParams is the input data for a transfer unit of work.
type TransferParams struct {
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

// EntryResult is the committed outcome of a deposit or withdrawal.
type EntryResult struct {
	Account     Account     `json:"account"`
	Transaction Transaction `json:"transaction"`
}

// TransferTxResult is the committed outcome of a transfer: both updated
// accounts and the two cross-referencing ledger entries.
type TransferTxResult struct {
	FromAccount    Account     `json:"from_account"`
	ToAccount      Account     `json:"to_account"`
	OutTransaction Transaction `json:"out_transaction"`
	InTransaction  Transaction `json:"in_transaction"`
}
