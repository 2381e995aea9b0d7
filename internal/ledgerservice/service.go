// Package ledgerservice manages business logic layer of the ledger engine.
//
// The service is stateless and safe for concurrent use: serialization of
// conflicting operations is delegated to the store, not to in-process locks.
package ledgerservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/pkg/moneypkg"
)

// History limits for ListTransactions.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// Repo provides the mutating units of work needed by the ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	Deposit(ctx context.Context, arg domain.DepositParams) (domain.EntryResult, error)
	Withdraw(ctx context.Context, arg domain.WithdrawParams) (domain.EntryResult, error)
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferTxResult, error)
}

// TransactionReader provides read access to persisted ledger entries.
type TransactionReader interface {
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo         Repo
	transactions TransactionReader
	opTimeout    time.Duration
}

// New returns ledger service struct to manage ledger business logic.
func New(r Repo, tr TransactionReader, opTimeout time.Duration) *Service {
	return &Service{
		repo:         r,
		transactions: tr,
		opTimeout:    opTimeout,
	}
}

// withTimeout bounds a mutating unit of work. On expiry the store aborts
// the transaction and the operation reports ErrStoreUnavailable, safe to
// retry because nothing was committed.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, s.opTimeout)
}

// Deposit validates the request and credits the account in one unit of work.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount, description string) (domain.EntryResult, error) {
	l := zerolog.Ctx(ctx)

	amt, err := moneypkg.Parse(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.EntryResult{}, domain.ErrInvalidAmount
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.Deposit(ctx, domain.DepositParams{
		AccountID:   accountID,
		Amount:      amt,
		Description: description,
	})
}

// Withdraw validates the request and debits the account in one unit of work.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount, description string) (domain.EntryResult, error) {
	l := zerolog.Ctx(ctx)

	amt, err := moneypkg.Parse(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.EntryResult{}, domain.ErrInvalidAmount
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.Withdraw(ctx, domain.WithdrawParams{
		AccountID:   accountID,
		Amount:      amt,
		Description: description,
	})
}

// Transfer validates the request and moves money between two accounts in
// one unit of work. Validation failures reject the request before any
// store transaction is opened.
func (s *Service) Transfer(ctx context.Context, fromID, toID int64, amount, description string) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	amt, err := moneypkg.Parse(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, domain.ErrInvalidAmount
	}

	if fromID == toID {
		l.Info().Int64("account_id", fromID).Msg("self transfer rejected")
		return domain.TransferTxResult{}, domain.ErrSelfTransfer
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.Transfer(ctx, domain.TransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amt,
		Description:   description,
	})
}

// ListTransactions returns the account's entries, newest first.
func (s *Service) ListTransactions(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	return s.transactions.ListByAccount(ctx, accountID, limit)
}

// GetTransaction returns the entry with the given id.
func (s *Service) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	return s.transactions.Get(ctx, id)
}
