package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// accountNumberSpan covers the 12-digit range [100000000000, 999999999999].
var (
	accountNumberMin  = big.NewInt(100_000_000_000)
	accountNumberSpan = big.NewInt(900_000_000_000)
)

// NewAccountNumber returns a random 12-digit account number. Numbers come
// from a cryptographically random source, not a counter, so they are not
// guessable from one another. Uniqueness is enforced by the store.
func NewAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, accountNumberSpan)
	if err != nil {
		return "", fmt.Errorf("generating account number: %w", err)
	}

	return n.Add(n, accountNumberMin).String(), nil
}
