package memstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger"
	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger/memstore"
)

func newAccount(t *testing.T, s *memstore.Store, ownerID uuid.UUID, deposit decimal.Decimal) *ledger.Account {
	t.Helper()

	acct := &ledger.Account{
		OwnerID:     ownerID,
		AccountType: "Checking",
		Currency:    "USD",
	}
	require.NoError(t, s.CreateAccount(context.Background(), acct, deposit))

	return acct
}

func apply(s *memstore.Store, ownerID, accountID uuid.UUID, amount decimal.Decimal, txType ledger.Type) (*ledger.Transaction, error) {
	tx := &ledger.Transaction{
		AccountID: accountID,
		OwnerID:   ownerID,
		Amount:    amount,
		Type:      txType,
	}

	if err := s.ApplyTransaction(context.Background(), tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func balanceOf(t *testing.T, s *memstore.Store, ownerID, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	accts, err := s.ListAccounts(context.Background(), ownerID)
	require.NoError(t, err)

	for _, acct := range accts {
		if acct.ID == accountID {
			return acct.Balance
		}
	}

	t.Fatalf("account %s not found", accountID)

	return decimal.Zero
}

func TestStore_InitialDeposit(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()

	acct := newAccount(t, s, ownerID, decimal.NewFromInt(100))

	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(100)))

	txs, err := s.ListTransactions(context.Background(), ownerID, &acct.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TypeCredit, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestStore_BalanceMatchesHistory(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()
	acct := newAccount(t, s, ownerID, decimal.Zero)

	steps := []struct {
		txType ledger.Type
		amount int64
		want   int64
	}{
		{ledger.TypeCredit, 200, 200},
		{ledger.TypeDebit, 50, 150},
		{ledger.TypeCredit, 25, 175},
		{ledger.TypeDebit, 175, 0},
	}

	for _, step := range steps {
		_, err := apply(s, ownerID, acct.ID, decimal.NewFromInt(step.amount), step.txType)
		require.NoError(t, err)

		got := balanceOf(t, s, ownerID, acct.ID)
		assert.True(t, got.Equal(decimal.NewFromInt(step.want)), "balance %s, want %d", got, step.want)
	}
}

func TestStore_InsufficientFundsLeavesNoTrace(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()
	acct := newAccount(t, s, ownerID, decimal.NewFromInt(50))

	_, err := apply(s, ownerID, acct.ID, decimal.NewFromInt(75), ledger.TypeDebit)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	got := balanceOf(t, s, ownerID, acct.ID)
	assert.True(t, got.Equal(decimal.NewFromInt(50)))

	txs, err := s.ListTransactions(context.Background(), ownerID, &acct.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "only the initial deposit should be recorded")
}

func TestStore_OwnerIsolation(t *testing.T) {
	s := memstore.New("USD")
	ownerA := uuid.New()
	ownerB := uuid.New()

	acct := newAccount(t, s, ownerA, decimal.NewFromInt(100))

	_, err := apply(s, ownerB, acct.ID, decimal.NewFromInt(10), ledger.TypeDebit)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	txs, err := s.ListTransactions(context.Background(), ownerB, nil)
	require.NoError(t, err)
	assert.Empty(t, txs)

	accts, err := s.ListAccounts(context.Background(), ownerB)
	require.NoError(t, err)

	for _, a := range accts {
		assert.NotEqual(t, acct.ID, a.ID)
	}
}

func TestStore_LazyDefaultAccount(t *testing.T) {
	s := memstore.New("EUR")
	ownerID := uuid.New()

	accts, err := s.ListAccounts(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, accts, 1)

	assert.Equal(t, "Checking", accts[0].AccountType)
	assert.Equal(t, "EUR", accts[0].Currency)
	assert.True(t, accts[0].Balance.IsZero())

	// A second read must not create another one.
	again, err := s.ListAccounts(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestStore_TransactionsNewestFirst(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()
	acct := newAccount(t, s, ownerID, decimal.Zero)

	for _, amount := range []int64{1, 2, 3} {
		_, err := apply(s, ownerID, acct.ID, decimal.NewFromInt(amount), ledger.TypeCredit)
		require.NoError(t, err)
	}

	txs, err := s.ListTransactions(context.Background(), ownerID, &acct.ID)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(3)))
	assert.True(t, txs[1].Amount.Equal(decimal.NewFromInt(2)))
	assert.True(t, txs[2].Amount.Equal(decimal.NewFromInt(1)))
}

func TestStore_AccountNumbersUnique(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()

	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		acct := newAccount(t, s, ownerID, decimal.Zero)

		_, dup := seen[acct.AccountNumber]
		require.False(t, dup, "duplicate account number %s", acct.AccountNumber)

		seen[acct.AccountNumber] = struct{}{}
	}
}

func TestStore_ConcurrentDebits(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()
	acct := newAccount(t, s, ownerID, decimal.NewFromInt(100))

	var wg sync.WaitGroup

	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, errs[i] = apply(s, ownerID, acct.ID, decimal.NewFromInt(60), ledger.TypeDebit)
		}(i)
	}

	wg.Wait()

	var failures int

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

			failures++
		}
	}

	assert.Equal(t, 1, failures, "exactly one of two 60 debits against 100 must fail")

	got := balanceOf(t, s, ownerID, acct.ID)
	assert.True(t, got.Equal(decimal.NewFromInt(40)), "final balance %s, want 40", got)
}

func TestStore_CurrencyFallsBackToAccount(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()
	acct := newAccount(t, s, ownerID, decimal.Zero)

	tx, err := apply(s, ownerID, acct.ID, decimal.NewFromInt(10), ledger.TypeCredit)
	require.NoError(t, err)

	assert.Equal(t, "USD", tx.Currency)
}

func TestStore_Payees(t *testing.T) {
	s := memstore.New("USD")
	ownerID := uuid.New()

	p := &ledger.Payee{OwnerID: ownerID, Name: "Acme Utilities", AccountNumber: "123456789012"}
	require.NoError(t, s.CreatePayee(context.Background(), p))
	assert.NotEqual(t, uuid.Nil, p.ID)

	dup := &ledger.Payee{OwnerID: ownerID, Name: "Acme Again", AccountNumber: "123456789012"}
	assert.ErrorIs(t, s.CreatePayee(context.Background(), dup), ledger.ErrPayeeExists)

	payees, err := s.ListPayees(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, payees, 1)

	otherOwner := uuid.New()
	assert.ErrorIs(t, s.DeletePayee(context.Background(), otherOwner, p.ID), ledger.ErrPayeeNotFound)

	require.NoError(t, s.DeletePayee(context.Background(), ownerID, p.ID))

	payees, err = s.ListPayees(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Empty(t, payees)
}
