// Package randompkg provides functionality for generating random application common items.
package randompkg

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const digits = "0123456789"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Int64Between generates a random integer between min and max.
func Int64Between(min, max int64) int64 {
	return min + Intn(int(max-min))
}

// AccountNumber generates a random human-facing account number.
func AccountNumber() string {
	var sb strings.Builder

	sb.WriteString("ACC")

	for i := 0; i < 10; i++ {
		_ = sb.WriteByte(digits[Intn(len(digits))]) // The returned err is always nil.
	}

	return sb.String()
}

// MoneyAmountBetween generates a random amount of money between min and max
// in whole cents.
func MoneyAmountBetween(min, max int64) decimal.Decimal {
	cents := Int64Between(min*100, max*100)
	return decimal.New(cents, -2)
}

// Description generates a random transaction description.
func Description() string {
	descriptions := []string{"rent", "groceries", "salary", "utilities", "savings top-up"}
	return descriptions[Intn(len(descriptions))]
}
