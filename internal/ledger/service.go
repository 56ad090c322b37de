package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=ledger
type Store interface {
	CreateAccount(ctx context.Context, acct *Account, initialDeposit decimal.Decimal) error
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	ListTransactions(ctx context.Context, ownerID uuid.UUID, accountID *uuid.UUID) ([]*Transaction, error)
	ApplyTransaction(ctx context.Context, tx *Transaction) error

	CreatePayee(ctx context.Context, p *Payee) error
	ListPayees(ctx context.Context, ownerID uuid.UUID) ([]*Payee, error)
	DeletePayee(ctx context.Context, ownerID, payeeID uuid.UUID) error

	EnsureSchema(ctx context.Context) error
}

// Service is the ledger facade. It selects the durable store when one is
// configured, heals a missing schema once per call, and degrades to the
// volatile store when the durable store fails for any other reason.
type Service struct {
	durable         Store // nil when no database is configured
	volatile        Store
	defaultCurrency string
}

func NewService(durable, volatile Store, defaultCurrency string) *Service {
	return &Service{
		durable:         durable,
		volatile:        volatile,
		defaultCurrency: defaultCurrency,
	}
}

type CreateAccountParams struct {
	OwnerID        uuid.UUID
	AccountType    string
	Currency       string
	InitialDeposit decimal.Decimal
}

type ApplyParams struct {
	OwnerID     uuid.UUID
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Type        Type
	Description string
}

type PaymentParams struct {
	OwnerID            uuid.UUID
	AccountID          uuid.UUID
	Amount             decimal.Decimal
	Currency           string
	PayeeName          string
	PayeeAccountNumber string
	Description        string
}

func (s *Service) CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error) {
	cur, err := s.normalizeCurrency(params.Currency, s.defaultCurrency)
	if err != nil {
		return nil, err
	}

	accountType := strings.TrimSpace(params.AccountType)
	if accountType == "" {
		accountType = "Checking"
	}

	return run(ctx, s, func(st Store) (*Account, error) {
		acct := &Account{
			OwnerID:     params.OwnerID,
			AccountType: accountType,
			Currency:    cur,
		}
		if err := st.CreateAccount(ctx, acct, params.InitialDeposit); err != nil {
			return nil, err
		}

		return acct, nil
	})
}

func (s *Service) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*Account, error) {
	return run(ctx, s, func(st Store) ([]*Account, error) {
		return st.ListAccounts(ctx, ownerID)
	})
}

func (s *Service) ListTransactions(ctx context.Context, ownerID uuid.UUID, accountID *uuid.UUID) ([]*Transaction, error) {
	return run(ctx, s, func(st Store) ([]*Transaction, error) {
		return st.ListTransactions(ctx, ownerID, accountID)
	})
}

func (s *Service) ApplyTransaction(ctx context.Context, params ApplyParams) (*Transaction, error) {
	cur := strings.TrimSpace(params.Currency)
	if cur != "" {
		// Blank currency falls back to the account's own at apply time.
		normalized, err := s.normalizeCurrency(cur, "")
		if err != nil {
			return nil, err
		}

		cur = normalized
	}

	return run(ctx, s, func(st Store) (*Transaction, error) {
		tx := &Transaction{
			AccountID:   params.AccountID,
			OwnerID:     params.OwnerID,
			Amount:      params.Amount,
			Currency:    cur,
			Type:        params.Type,
			Description: params.Description,
		}
		if err := st.ApplyTransaction(ctx, tx); err != nil {
			return nil, err
		}

		return tx, nil
	})
}

// Pay is a debit whose description, when not supplied, is derived from the
// payee fields: "Payment to {name} ({accountNumber})", or just "Payment".
func (s *Service) Pay(ctx context.Context, params PaymentParams) (*Transaction, error) {
	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = paymentDescription(params.PayeeName, params.PayeeAccountNumber)
	}

	return s.ApplyTransaction(ctx, ApplyParams{
		OwnerID:     params.OwnerID,
		AccountID:   params.AccountID,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Type:        TypeDebit,
		Description: description,
	})
}

func (s *Service) CreatePayee(ctx context.Context, ownerID uuid.UUID, name, accountNumber string) (*Payee, error) {
	return run(ctx, s, func(st Store) (*Payee, error) {
		p := &Payee{
			OwnerID:       ownerID,
			Name:          name,
			AccountNumber: accountNumber,
		}
		if err := st.CreatePayee(ctx, p); err != nil {
			return nil, err
		}

		return p, nil
	})
}

func (s *Service) ListPayees(ctx context.Context, ownerID uuid.UUID) ([]*Payee, error) {
	return run(ctx, s, func(st Store) ([]*Payee, error) {
		return st.ListPayees(ctx, ownerID)
	})
}

func (s *Service) DeletePayee(ctx context.Context, ownerID, payeeID uuid.UUID) error {
	_, err := run(ctx, s, func(st Store) (struct{}, error) {
		return struct{}{}, st.DeletePayee(ctx, ownerID, payeeID)
	})

	return err
}

// run executes op against the selected store. Durable first when
// configured; a missing schema is healed and the op retried exactly once;
// any other durable failure falls back to the volatile store for this one
// call. Business errors are answers, not failures, and never fall back.
func run[T any](ctx context.Context, s *Service, op func(Store) (T, error)) (T, error) {
	if s.durable == nil {
		return op(s.volatile)
	}

	out, err := op(s.durable)
	if err == nil || isBusinessError(err) {
		return out, err
	}

	if errors.Is(err, ErrSchemaMissing) {
		if healErr := s.durable.EnsureSchema(ctx); healErr != nil {
			var zero T
			return zero, fmt.Errorf("provisioning schema: %w", healErr)
		}

		return op(s.durable)
	}

	slog.Warn("durable store unavailable, using in-memory store for this call", "error", err)

	return op(s.volatile)
}

func isBusinessError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrPayeeNotFound) ||
		errors.Is(err, ErrPayeeExists)
}

// normalizeCurrency canonicalizes a 3-letter ISO 4217 code, substituting
// fallback when the code is blank.
func (s *Service) normalizeCurrency(code, fallback string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return fallback, nil
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}

	return unit.String(), nil
}

func paymentDescription(name, accountNumber string) string {
	name = strings.TrimSpace(name)
	accountNumber = strings.TrimSpace(accountNumber)

	switch {
	case name != "" && accountNumber != "":
		return fmt.Sprintf("Payment to %s (%s)", name, accountNumber)
	case name != "":
		return fmt.Sprintf("Payment to %s", name)
	default:
		return "Payment"
	}
}
