// Package ledgerrepo manages the store side of the ledger engine.
//
// Every operation is one unit of work: a single database transaction that
// either commits the balance change together with its ledger entries or
// rolls back completely. Balance mutations go exclusively through the
// atomic conditional updates in accountrepo, so the classic
// read-compute-write race cannot occur.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/deskbank/deskbank/internal/accountrepo"
	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/internal/transactionrepo"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{conn: db}
}

func (r *RepoPGS) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return nil, domain.ErrStoreUnavailable
	}

	return tx, nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		zerolog.Ctx(ctx).Error().Err(err).Send()
	}
}

func commit(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return domain.ErrStoreUnavailable
	}

	return nil
}

// Deposit credits the account and appends the Deposit entry carrying the
// balance returned by the same conditional update.
func (r *RepoPGS) Deposit(ctx context.Context, arg domain.DepositParams) (domain.EntryResult, error) {
	var result domain.EntryResult

	tx, err := r.begin(ctx)
	if err != nil {
		return result, err
	}
	defer rollback(ctx, tx)

	accounts := accountrepo.NewTxRepoPGS(tx)
	entries := transactionrepo.NewRepoPGS(tx)

	result.Account, err = accounts.Credit(ctx, arg.AccountID, arg.Amount)
	if err != nil {
		return domain.EntryResult{}, err
	}

	entry, err := domain.NewTransaction(arg.AccountID, domain.Deposit, arg.Amount, result.Account.Balance, arg.Description)
	if err != nil {
		return domain.EntryResult{}, err
	}

	result.Transaction, err = entries.Append(ctx, entry)
	if err != nil {
		return domain.EntryResult{}, err
	}

	if err := commit(ctx, tx); err != nil {
		return domain.EntryResult{}, err
	}

	return result, nil
}

// Withdraw debits the account and appends the Withdrawal entry. The debit
// is conditional on status and sufficient balance in a single statement.
func (r *RepoPGS) Withdraw(ctx context.Context, arg domain.WithdrawParams) (domain.EntryResult, error) {
	var result domain.EntryResult

	tx, err := r.begin(ctx)
	if err != nil {
		return result, err
	}
	defer rollback(ctx, tx)

	accounts := accountrepo.NewTxRepoPGS(tx)
	entries := transactionrepo.NewRepoPGS(tx)

	result.Account, err = accounts.Debit(ctx, arg.AccountID, arg.Amount)
	if err != nil {
		return domain.EntryResult{}, err
	}

	entry, err := domain.NewTransaction(arg.AccountID, domain.Withdrawal, arg.Amount, result.Account.Balance, arg.Description)
	if err != nil {
		return domain.EntryResult{}, err
	}

	result.Transaction, err = entries.Append(ctx, entry)
	if err != nil {
		return domain.EntryResult{}, err
	}

	if err := commit(ctx, tx); err != nil {
		return domain.EntryResult{}, err
	}

	return result, nil
}

// Transfer moves money between two accounts in one unit of work: debit the
// source, credit the destination, append a TransferOut and a TransferIn
// entry that reference each other's account. Either all four effects are
// durable or none are.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferTxResult, error) {
	var result domain.TransferTxResult

	tx, err := r.begin(ctx)
	if err != nil {
		return result, err
	}
	defer rollback(ctx, tx)

	accounts := accountrepo.NewTxRepoPGS(tx)
	entries := transactionrepo.NewRepoPGS(tx)

	debitSource := func() error {
		var err error
		result.FromAccount, err = accounts.Debit(ctx, arg.FromAccountID, arg.Amount)

		return err
	}

	creditDestination := func() error {
		var err error

		result.ToAccount, err = accounts.Credit(ctx, arg.ToAccountID, arg.Amount)
		if err == domain.ErrAccountNotEligible {
			return domain.ErrDestinationNotEligible
		}

		return err
	}

	// Touch the lower account id first regardless of direction, so two
	// concurrent opposite transfers between the same pair cannot deadlock
	// on each other's row locks.
	if arg.FromAccountID < arg.ToAccountID {
		err = debitSource()
		if err == nil {
			err = creditDestination()
		}
	} else {
		err = creditDestination()
		if err == nil {
			err = debitSource()
		}
	}

	if err != nil {
		return domain.TransferTxResult{}, err
	}

	outEntry, err := domain.NewTransaction(
		arg.FromAccountID,
		domain.TransferOut,
		arg.Amount,
		result.FromAccount.Balance,
		arg.Description+" to "+result.ToAccount.Number,
	)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	outEntry.CounterpartID = &result.ToAccount.ID

	result.OutTransaction, err = entries.Append(ctx, outEntry)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	inEntry, err := domain.NewTransaction(
		arg.ToAccountID,
		domain.TransferIn,
		arg.Amount,
		result.ToAccount.Balance,
		arg.Description+" from "+result.FromAccount.Number,
	)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	inEntry.CounterpartID = &result.FromAccount.ID

	result.InTransaction, err = entries.Append(ctx, inEntry)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	if err := commit(ctx, tx); err != nil {
		return domain.TransferTxResult{}, err
	}

	return result, nil
}
