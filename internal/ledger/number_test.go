package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger"
)

func TestNewAccountNumber(t *testing.T) {
	for i := 0; i < 100; i++ {
		number, err := ledger.NewAccountNumber()
		require.NoError(t, err)

		assert.Len(t, number, 12)
		assert.NotEqual(t, byte('0'), number[0], "account numbers must not lose digits to a leading zero")

		for _, r := range number {
			assert.True(t, r >= '0' && r <= '9', "unexpected character %q in %s", r, number)
		}
	}
}
