// Package transactionrepo manages repository layer of ledger entries.
//
// Entries are append-only: the package exposes no update and no delete.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/pkg/dbpkg"
	"github.com/deskbank/deskbank/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
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

const transactionColumns = `id, account_id, kind, amount, balance_after, description, counterpart_id, created_at`

func scanTransaction(scan func(dest ...interface{}) error) (domain.Transaction, error) {
	var (
		t           domain.Transaction
		kindToken   string
		counterpart sql.NullInt64
	)

	err := scan(
		&t.ID,
		&t.AccountID,
		&kindToken,
		&t.Amount,
		&t.BalanceAfter,
		&t.Description,
		&counterpart,
		&t.CreatedAt,
	)
	if err != nil {
		return t, err
	}

	if t.Kind, err = domain.ParseTransactionKind(kindToken); err != nil {
		return t, err
	}

	if counterpart.Valid {
		t.CounterpartID = &counterpart.Int64
	}

	return t, nil
}

const appendQuery = `
INSERT INTO
    transactions (account_id, kind, amount, balance_after, description, counterpart_id)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING ` + transactionColumns

// Append persists an immutable entry; the store assigns id and timestamp.
func (r *RepoPGS) Append(ctx context.Context, entry domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var counterpart sql.NullInt64
	if entry.CounterpartID != nil {
		counterpart = sql.NullInt64{Int64: *entry.CounterpartID, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, appendQuery,
		entry.AccountID,
		string(entry.Kind),
		entry.Amount,
		entry.BalanceAfter,
		entry.Description,
		counterpart,
	)

	t, err := scanTransaction(row.Scan)
	if err != nil {
		l.Error().Err(err).Msgf("Append(ctx, %+v)", entry)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_account_id_fkey", "transactions_counterpart_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrInvalidAmount
			case "transactions_kind_check":
				return t, domain.ErrUnknownTransactionKind
			}
		}

		return t, storeErr(err)
	}

	return t, nil
}

const getQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE id = $1
`

// Get returns the entry with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, getQuery, id).Scan)
	if err != nil {
		l.Error().Err(err).Send()

		switch err {
		case sql.ErrNoRows:
			return t, domain.ErrTransactionNotFound
		case domain.ErrUnknownTransactionKind:
			return t, err
		}

		return t, storeErr(err)
	}

	return t, nil
}

const listByAccountQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`

// ListByAccount returns up to limit entries for the account, newest first.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountID, limit)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, storeErr(err)
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			l.Error().Err(err).Send()

			if err == domain.ErrUnknownTransactionKind {
				return nil, err
			}

			return nil, storeErr(err)
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, storeErr(err)
	}

	return items, nil
}
