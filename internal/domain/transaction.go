package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrUnknownTransactionKind indicates an unrecognized transaction kind token.
	ErrUnknownTransactionKind = errors.New("unknown transaction kind")
)

// TransactionKind is the kind of a ledger entry.
type TransactionKind string

// All supported transaction kinds.
const (
	Deposit     TransactionKind = "deposit"
	Withdrawal  TransactionKind = "withdrawal"
	TransferIn  TransactionKind = "transfer_in"
	TransferOut TransactionKind = "transfer_out"
)

// ParseTransactionKind converts a persisted token into a TransactionKind.
// Unrecognized tokens are a hard error; silently defaulting would corrupt
// the conservation invariant of the ledger.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case Deposit, Withdrawal, TransferIn, TransferOut:
		return TransactionKind(s), nil
	}

	return "", ErrUnknownTransactionKind
}

// Sign is -1 for kinds that reduce the balance and +1 for kinds that grow it.
func (k TransactionKind) Sign() int {
	if k == Withdrawal || k == TransferOut {
		return -1
	}

	return 1
}

// Transaction holds one immutable ledger entry. Entries are never updated
// or deleted; id and creation timestamp are assigned by the store.
type Transaction struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"account_id"`
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"` // always positive
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	CounterpartID *int64          `json:"counterpart_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewTransaction builds an unpersisted entry, validating amount and kind.
func NewTransaction(accountID int64, kind TransactionKind, amount, balanceAfter decimal.Decimal, description string) (Transaction, error) {
	if _, err := ParseTransactionKind(string(kind)); err != nil {
		return Transaction{}, err
	}

	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	return Transaction{
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  description,
	}, nil
}

// SignedAmount is the entry's effect on its account balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Kind.Sign() < 0 {
		return t.Amount.Neg()
	}

	return t.Amount
}
