// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/internal/transactionrepo"
	"github.com/deskbank/deskbank/pkg/dbpkg"
	"github.com/deskbank/deskbank/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns account RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

// NewRepoPGS returns account RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{db: db, conn: db}
}

// storeErr maps driver-level failures to the domain taxonomy. Context
// expiry aborts the transaction before commit, so the operation is safe
// to retry and reports ErrStoreUnavailable rather than an internal error.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrStoreUnavailable
	}

	return errorspkg.ErrInternal
}

const accountColumns = `id, user_id, number, type, balance, interest_rate, status, created_at`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a           domain.Account
		typeToken   string
		statusToken string
	)

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Number,
		&typeToken,
		&a.Balance,
		&a.InterestRate,
		&statusToken,
		&a.CreatedAt,
	)
	if err != nil {
		return a, err
	}

	// Unparseable persisted tokens are a hard error, never a default.
	if a.Type, err = domain.ParseAccountType(typeToken); err != nil {
		return a, err
	}

	if a.Status, err = domain.ParseAccountStatus(statusToken); err != nil {
		return a, err
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (user_id, number, type, balance, interest_rate)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING ` + accountColumns

// Create creates the account and returns it. A positive initial deposit is
// recorded as the account's first Deposit entry in the same unit of work.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	// Create opens its own transaction, so it needs a connection-backed
	// repo. A tx-bound repo from NewTxRepoPGS has no connection.
	if r.conn == nil {
		l.Error().Msg("Create called on a tx-bound repo")
		return domain.Account{}, errorspkg.ErrInternal
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.ErrStoreUnavailable
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	row := tx.QueryRowContext(ctx, createQuery,
		arg.UserID,
		arg.Number,
		string(arg.Type),
		arg.InitialDeposit,
		arg.InterestRate,
	)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_number_key":
				return a, domain.ErrAccountNumberTaken
			case "accounts_balance_check":
				return a, domain.ErrInvalidAmount
			}
		}

		return a, storeErr(err)
	}

	if arg.InitialDeposit.IsPositive() {
		entry, err := domain.NewTransaction(a.ID, domain.Deposit, arg.InitialDeposit, a.Balance, "Initial deposit")
		if err != nil {
			l.Error().Err(err).Send()
			return domain.Account{}, err
		}

		if _, err := transactionrepo.NewRepoPGS(tx).Append(ctx, entry); err != nil {
			l.Error().Err(err).Send()
			return domain.Account{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.ErrStoreUnavailable
	}

	return a, nil
}

const getQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		switch err {
		case sql.ErrNoRows:
			return a, domain.ErrAccountNotFound
		case domain.ErrUnknownAccountType, domain.ErrUnknownAccountStatus:
			return a, err
		}

		return a, storeErr(err)
	}

	return a, nil
}

const getByNumberQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE number = $1
`

// GetByNumber returns the account with the given human-facing number.
func (r *RepoPGS) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByNumberQuery, number))
	if err != nil {
		l.Error().Err(err).Send()

		switch err {
		case sql.ErrNoRows:
			return a, domain.ErrAccountNotFound
		case domain.ErrUnknownAccountType, domain.ErrUnknownAccountStatus:
			return a, err
		}

		return a, storeErr(err)
	}

	return a, nil
}

const listByUserQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE user_id = $1
ORDER BY created_at, id
`

// ListByUser returns all accounts owned by the given user.
func (r *RepoPGS) ListByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByUserQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, storeErr(err)
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var (
			a           domain.Account
			typeToken   string
			statusToken string
		)

		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Number,
			&typeToken,
			&a.Balance,
			&a.InterestRate,
			&statusToken,
			&a.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, storeErr(err)
		}

		if a.Type, err = domain.ParseAccountType(typeToken); err != nil {
			l.Error().Err(err).Send()
			return nil, err
		}

		if a.Status, err = domain.ParseAccountStatus(statusToken); err != nil {
			l.Error().Err(err).Send()
			return nil, err
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, storeErr(err)
	}

	return items, nil
}

const setStatusQuery = `
UPDATE accounts
SET status = $1
WHERE id = $2
RETURNING ` + accountColumns

// SetStatus updates the account status and returns the updated account.
func (r *RepoPGS) SetStatus(ctx context.Context, id int64, status domain.AccountStatus) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, setStatusQuery, string(status), id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, storeErr(err)
	}

	return a, nil
}

const existsQuery = `
SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1)
`

// Exists reports whether an account with the given number exists.
func (r *RepoPGS) Exists(ctx context.Context, number string) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool
	if err := r.db.QueryRowContext(ctx, existsQuery, number).Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, storeErr(err)
	}

	return exists, nil
}

const totalBalanceQuery = `
SELECT COALESCE(SUM(balance), 0)
FROM accounts
WHERE user_id = $1
`

// TotalBalance returns the sum of balances across the user's accounts.
func (r *RepoPGS) TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, totalBalanceQuery, userID).Scan(&total); err != nil {
		l.Error().Err(err).Send()
		return decimal.Decimal{}, storeErr(err)
	}

	return total, nil
}

const creditQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2 AND status = 'active'
RETURNING ` + accountColumns

// Credit atomically adds amount to the balance of an active account and
// returns the updated row. The read, the eligibility check, and the write
// happen in one statement so concurrent operations serialize in the store.
func (r *RepoPGS) Credit(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, creditQuery, amount, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotEligible
		}

		l.Error().Err(err).Send()

		return a, storeErr(err)
	}

	return a, nil
}

const debitQuery = `
UPDATE accounts
SET balance = balance - $1
WHERE id = $2 AND status = 'active' AND balance >= $1
RETURNING ` + accountColumns

// Debit atomically subtracts amount from the balance of an active account
// with sufficient funds and returns the updated row. When the conditional
// update matches no row, the account is re-read to report whether the
// failure was insufficient funds or an ineligible account.
func (r *RepoPGS) Debit(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, debitQuery, amount, id))
	if err == nil {
		return a, nil
	}

	if err != sql.ErrNoRows {
		l.Error().Err(err).Send()
		return a, storeErr(err)
	}

	current, err := r.Get(ctx, id)
	switch {
	case err == domain.ErrAccountNotFound:
		return domain.Account{}, domain.ErrAccountNotEligible
	case err != nil:
		return domain.Account{}, err
	case current.Status != domain.StatusActive:
		return domain.Account{}, domain.ErrAccountNotEligible
	}

	return domain.Account{}, domain.ErrInsufficientFunds
}
