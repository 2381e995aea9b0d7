//go:build integration

package transactionrepo_test

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/internal/integrationtest"
	"github.com/deskbank/deskbank/internal/integrationtest/helpers"
	"github.com/deskbank/deskbank/internal/middleware"
	"github.com/deskbank/deskbank/internal/transactionrepo"
	"github.com/deskbank/deskbank/pkg/configpkg"
)

var (
	dbDriver string
	dbSource string
	ctx      context.Context
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	dbDriver = config.DBDriver
	dbSource = config.DBSource

	logger := middleware.CreateLogger(config)
	ctx = logger.WithContext(context.Background())

	os.Exit(m.Run())
}

var compareOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmpopts.EquateApproxTime(time.Second),
}

func seedEntry(t *testing.T, tx *sql.Tx, accountID int64, kind domain.TransactionKind, amount, balanceAfter string) domain.Transaction {
	t.Helper()

	entry, err := domain.NewTransaction(
		accountID,
		kind,
		decimal.RequireFromString(amount),
		decimal.RequireFromString(balanceAfter),
		"seed",
	)
	require.NoError(t, err)

	got, err := transactionrepo.NewRepoPGS(tx).Append(ctx, entry)
	require.NoError(t, err)

	return got
}

func TestAppend(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		tx := integrationtest.SetupTX(t, dbDriver, dbSource)
		repo := transactionrepo.NewRepoPGS(tx)

		account := helpers.SeedActiveAccount(t, tx, "100.00")

		want, err := domain.NewTransaction(
			account.ID,
			domain.Deposit,
			decimal.RequireFromString("50.00"),
			decimal.RequireFromString("150.00"),
			"paycheck",
		)
		require.NoError(t, err)

		got, err := repo.Append(ctx, want)
		require.NoError(t, err)

		require.NotZero(t, got.ID)
		require.NotZero(t, got.CreatedAt)
		require.Nil(t, got.CounterpartID)

		ignoreFields := cmpopts.IgnoreFields(domain.Transaction{}, "ID", "CreatedAt")
		if diff := cmp.Diff(want, got, ignoreFields, compareOpts); diff != "" {
			t.Errorf("repo.Append(ctx, %+v) returned unexpected difference (-want +got):\n%s", want, diff)
		}
	})

	t.Run("WithCounterpart", func(t *testing.T) {
		t.Parallel()

		tx := integrationtest.SetupTX(t, dbDriver, dbSource)
		repo := transactionrepo.NewRepoPGS(tx)

		account := helpers.SeedActiveAccount(t, tx, "100.00")
		counterpart := helpers.SeedActiveAccount(t, tx, "100.00")

		entry, err := domain.NewTransaction(
			account.ID,
			domain.TransferOut,
			decimal.RequireFromString("25.00"),
			decimal.RequireFromString("75.00"),
			"rent to "+counterpart.Number,
		)
		require.NoError(t, err)

		entry.CounterpartID = &counterpart.ID

		got, err := repo.Append(ctx, entry)
		require.NoError(t, err)
		require.NotNil(t, got.CounterpartID)
		require.Equal(t, counterpart.ID, *got.CounterpartID)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		t.Parallel()

		tx := integrationtest.SetupTX(t, dbDriver, dbSource)
		repo := transactionrepo.NewRepoPGS(tx)

		entry, err := domain.NewTransaction(
			0,
			domain.Deposit,
			decimal.RequireFromString("50.00"),
			decimal.RequireFromString("50.00"),
			"",
		)
		require.NoError(t, err)

		_, err = repo.Append(ctx, entry)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		t.Parallel()

		tx := integrationtest.SetupTX(t, dbDriver, dbSource)
		repo := transactionrepo.NewRepoPGS(tx)

		account := helpers.SeedActiveAccount(t, tx, "100.00")

		// Bypass the constructor to exercise the store-level check.
		entry := domain.Transaction{
			AccountID:    account.ID,
			Kind:         domain.Deposit,
			Amount:       decimal.Zero,
			BalanceAfter: account.Balance,
		}

		_, err := repo.Append(ctx, entry)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := transactionrepo.NewRepoPGS(tx)

	account := helpers.SeedActiveAccount(t, tx, "100.00")
	want := seedEntry(t, tx, account.ID, domain.Deposit, "50.00", "150.00")

	got, err := repo.Get(ctx, want.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, compareOpts); diff != "" {
		t.Errorf("repo.Get(ctx, %v) returned unexpected difference (-want +got):\n%s", want.ID, diff)
	}

	_, err = repo.Get(ctx, want.ID+1)
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestListByAccount(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := transactionrepo.NewRepoPGS(tx)

	account := helpers.SeedActiveAccount(t, tx, "0.00")
	other := helpers.SeedActiveAccount(t, tx, "0.00")

	first := seedEntry(t, tx, account.ID, domain.Deposit, "100.00", "100.00")
	second := seedEntry(t, tx, account.ID, domain.Withdrawal, "30.00", "70.00")
	third := seedEntry(t, tx, account.ID, domain.Deposit, "10.00", "80.00")
	seedEntry(t, tx, other.ID, domain.Deposit, "999.00", "999.00")

	t.Run("NewestFirst", func(t *testing.T) {
		got, err := repo.ListByAccount(ctx, account.ID, 10)
		require.NoError(t, err)

		want := []domain.Transaction{third, second, first}
		if diff := cmp.Diff(want, got, compareOpts); diff != "" {
			t.Errorf("repo.ListByAccount(ctx, %v, 10) returned unexpected difference (-want +got):\n%s", account.ID, diff)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		got, err := repo.ListByAccount(ctx, account.ID, 2)
		require.NoError(t, err)

		want := []domain.Transaction{third, second}
		if diff := cmp.Diff(want, got, compareOpts); diff != "" {
			t.Errorf("repo.ListByAccount(ctx, %v, 2) returned unexpected difference (-want +got):\n%s", account.ID, diff)
		}
	})

	t.Run("NoEntries", func(t *testing.T) {
		empty := helpers.SeedActiveAccount(t, tx, "0.00")

		got, err := repo.ListByAccount(ctx, empty.ID, 10)
		require.NoError(t, err)
		require.Empty(t, got)
	})
}
