// Package memstore is the in-process fallback store. It keeps the same
// entity shapes as the Postgres store but holds everything in maps behind
// a single mutex, so nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger"
)

// Store is created once at process start and never reset. One mutex
// serializes every operation, so the funds check and the balance mutation
// of an apply are a single critical section even for concurrent callers.
type Store struct {
	mu sync.Mutex

	accounts map[uuid.UUID]*ledger.Account
	txs      []*ledger.Transaction
	payees   map[uuid.UUID]*ledger.Payee
	numbers  map[string]struct{}

	defaultCurrency string
}

func New(defaultCurrency string) *Store {
	return &Store{
		accounts:        make(map[uuid.UUID]*ledger.Account),
		payees:          make(map[uuid.UUID]*ledger.Payee),
		numbers:         make(map[string]struct{}),
		defaultCurrency: defaultCurrency,
	}
}

func (s *Store) CreateAccount(_ context.Context, acct *ledger.Account, initialDeposit decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.createAccount(acct.OwnerID, acct.AccountType, acct.Currency, initialDeposit)
	if err != nil {
		return err
	}

	*acct = *created

	return nil
}

// createAccount inserts a new account under the held lock. An initial
// deposit becomes the opening balance plus a matching credit record, so
// the balance always equals the signed transaction sum.
func (s *Store) createAccount(ownerID uuid.UUID, accountType, currency string, initialDeposit decimal.Decimal) (*ledger.Account, error) {
	number, err := s.newNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	acct := &ledger.Account{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		AccountNumber: number,
		AccountType:   accountType,
		Balance:       decimal.Zero,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.accounts[acct.ID] = acct
	s.numbers[number] = struct{}{}

	if initialDeposit.IsPositive() {
		acct.Balance = initialDeposit
		s.txs = append(s.txs, &ledger.Transaction{
			ID:          uuid.New(),
			AccountID:   acct.ID,
			OwnerID:     ownerID,
			Amount:      initialDeposit,
			Currency:    currency,
			Type:        ledger.TypeCredit,
			Description: "Initial deposit",
			CreatedAt:   now,
		})
	}

	cp := *acct

	return &cp, nil
}

// newNumber regenerates until the number is unused within this store.
func (s *Store) newNumber() (string, error) {
	for {
		number, err := ledger.NewAccountNumber()
		if err != nil {
			return "", err
		}

		if _, taken := s.numbers[number]; !taken {
			return number, nil
		}
	}
}

// ensureOwner lazily provisions a default Checking account for owners
// seen for the first time on a read path.
func (s *Store) ensureOwner(ownerID uuid.UUID) error {
	for _, acct := range s.accounts {
		if acct.OwnerID == ownerID {
			return nil
		}
	}

	_, err := s.createAccount(ownerID, "Checking", s.defaultCurrency, decimal.Zero)

	return err
}

func (s *Store) ListAccounts(_ context.Context, ownerID uuid.UUID) ([]*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOwner(ownerID); err != nil {
		return nil, err
	}

	var accts []*ledger.Account

	for _, acct := range s.accounts {
		if acct.OwnerID != ownerID {
			continue
		}

		cp := *acct
		accts = append(accts, &cp)
	}

	sort.Slice(accts, func(i, j int) bool { return accts[i].CreatedAt.Before(accts[j].CreatedAt) })

	return accts, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID uuid.UUID, accountID *uuid.UUID) ([]*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOwner(ownerID); err != nil {
		return nil, err
	}

	var txs []*ledger.Transaction

	// Walk newest-first: transactions are appended in commit order.
	for i := len(s.txs) - 1; i >= 0; i-- {
		tx := s.txs[i]
		if tx.OwnerID != ownerID {
			continue
		}

		if accountID != nil && tx.AccountID != *accountID {
			continue
		}

		cp := *tx
		txs = append(txs, &cp)
	}

	return txs, nil
}

func (s *Store) ApplyTransaction(_ context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[tx.AccountID]
	if !ok || acct.OwnerID != tx.OwnerID {
		return ledger.ErrAccountNotFound
	}

	if tx.Currency == "" {
		tx.Currency = acct.Currency
	}

	delta := tx.Amount
	if tx.Type == ledger.TypeDebit {
		if tx.Amount.GreaterThan(acct.Balance) {
			return ledger.ErrInsufficientFunds
		}

		delta = delta.Neg()
	}

	now := time.Now().UTC()

	acct.Balance = acct.Balance.Add(delta)
	acct.UpdatedAt = now

	tx.ID = uuid.New()
	tx.CreatedAt = now

	cp := *tx
	s.txs = append(s.txs, &cp)

	return nil
}

func (s *Store) CreatePayee(_ context.Context, p *ledger.Payee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payees {
		if existing.OwnerID == p.OwnerID && existing.AccountNumber == p.AccountNumber {
			return ledger.ErrPayeeExists
		}
	}

	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()

	cp := *p
	s.payees[p.ID] = &cp

	return nil
}

func (s *Store) ListPayees(_ context.Context, ownerID uuid.UUID) ([]*ledger.Payee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payees []*ledger.Payee

	for _, p := range s.payees {
		if p.OwnerID != ownerID {
			continue
		}

		cp := *p
		payees = append(payees, &cp)
	}

	sort.Slice(payees, func(i, j int) bool { return payees[i].CreatedAt.After(payees[j].CreatedAt) })

	return payees, nil
}

func (s *Store) DeletePayee(_ context.Context, ownerID, payeeID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payees[payeeID]
	if !ok || p.OwnerID != ownerID {
		return ledger.ErrPayeeNotFound
	}

	delete(s.payees, payeeID)

	return nil
}

// EnsureSchema is a no-op; there is no schema to provision in memory.
func (s *Store) EnsureSchema(context.Context) error { return nil }
