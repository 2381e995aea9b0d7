// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/pkg/moneypkg"
	"github.com/deskbank/deskbank/pkg/randompkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Account, error)
	SetStatus(ctx context.Context, id int64, status domain.AccountStatus) (domain.Account, error)
	Exists(ctx context.Context, number string) (bool, error)
	TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(r Repo) *Service {
	return &Service{repo: r}
}

// defaultInterestRate returns the informational interest rate for new
// accounts of the given type. The ledger engine never mutates it.
func defaultInterestRate(t domain.AccountType) decimal.Decimal {
	switch t {
	case domain.Savings:
		return decimal.New(35, -1) // 3.5
	case domain.FixedDeposit:
		return decimal.New(60, -1) // 6.0
	default:
		return decimal.New(5, -1) // 0.5
	}
}

// Create creates an account of the given type with a generated account
// number. A positive initial deposit becomes the opening balance and the
// account's first Deposit entry.
func (s *Service) Create(ctx context.Context, userID int64, accountType, initialDeposit string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	t, err := domain.ParseAccountType(accountType)
	if err != nil {
		l.Info().Err(err).Str("type", accountType).Send()
		return domain.Account{}, err
	}

	deposit, err := moneypkg.ParseNonNegative(initialDeposit)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, domain.ErrInvalidAmount
	}

	number, err := s.generateNumber(ctx)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.repo.Create(ctx, domain.CreateAccountParams{
		UserID:         userID,
		Number:         number,
		Type:           t,
		InitialDeposit: deposit,
		InterestRate:   defaultInterestRate(t),
	})
	if err != nil {
		return account, err
	}

	return account, nil
}

// generateNumber draws random account numbers until one is free. The
// unique constraint on accounts.number still backstops the race between
// the check and the insert.
func (s *Service) generateNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		number := randompkg.AccountNumber()

		taken, err := s.repo.Exists(ctx, number)
		if err != nil {
			return "", err
		}

		if !taken {
			return number, nil
		}
	}

	return "", domain.ErrAccountNumberTaken
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns the account with the given account number.
func (s *Service) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List returns the accounts owned by the given user.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Account, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SetStatus parses and applies a new account status. Freezing or
// deactivating an account stops all ledger-mutating operations on it.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	st, err := domain.ParseAccountStatus(status)
	if err != nil {
		l.Info().Err(err).Str("status", status).Send()
		return domain.Account{}, err
	}

	return s.repo.SetStatus(ctx, id, st)
}

// Exists reports whether an account with the given number exists.
func (s *Service) Exists(ctx context.Context, number string) (bool, error) {
	return s.repo.Exists(ctx, number)
}

// TotalBalance returns the sum of balances across the user's accounts.
func (s *Service) TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.TotalBalance(ctx, userID)
}
