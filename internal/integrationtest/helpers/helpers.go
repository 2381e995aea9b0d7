// Package helpers provides seed functions shared by integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/pkg/dbpkg"
	"github.com/deskbank/deskbank/pkg/randompkg"
)

const seedAccountQuery = `
INSERT INTO
    accounts (user_id, number, type, balance, interest_rate, status)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`

// SeedAccountWith seeds an account with the given balance and status,
// bypassing the repository layer so tests control the starting state exactly.
func SeedAccountWith(t *testing.T, db dbpkg.SQLInterface, balance string, status domain.AccountStatus) domain.Account {
	t.Helper()

	account := domain.Account{
		UserID:       randompkg.Int64Between(1, 1000),
		Number:       randompkg.AccountNumber(),
		Type:         domain.Checking,
		Balance:      decimal.RequireFromString(balance),
		InterestRate: decimal.RequireFromString("0.5"),
		Status:       status,
	}

	row := db.QueryRowContext(context.Background(), seedAccountQuery,
		account.UserID,
		account.Number,
		string(account.Type),
		account.Balance,
		account.InterestRate,
		string(account.Status),
	)

	if err := row.Scan(&account.ID, &account.CreatedAt); err != nil {
		t.Fatalf("seeding account failed: %v", err)
	}

	return account
}

// SeedActiveAccount seeds an active account with the given balance.
func SeedActiveAccount(t *testing.T, db dbpkg.SQLInterface, balance string) domain.Account {
	t.Helper()

	return SeedAccountWith(t, db, balance, domain.StatusActive)
}

// SeedAccountForUser seeds an active account owned by the given user.
func SeedAccountForUser(t *testing.T, db dbpkg.SQLInterface, userID int64, balance string) domain.Account {
	t.Helper()

	account := domain.Account{
		UserID:       userID,
		Number:       randompkg.AccountNumber(),
		Type:         domain.Savings,
		Balance:      decimal.RequireFromString(balance),
		InterestRate: decimal.RequireFromString("3.5"),
		Status:       domain.StatusActive,
	}

	row := db.QueryRowContext(context.Background(), seedAccountQuery,
		account.UserID,
		account.Number,
		string(account.Type),
		account.Balance,
		account.InterestRate,
		string(account.Status),
	)

	if err := row.Scan(&account.ID, &account.CreatedAt); err != nil {
		t.Fatalf("seeding account failed: %v", err)
	}

	return account
}
