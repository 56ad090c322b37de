package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the direction of a transaction (credit or debit).
type Type string

const (
	TypeCredit Type = "credit"
	TypeDebit  Type = "debit"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == TypeCredit || t == TypeDebit
}

// Account holds a single-entry balance for one owner.
// Balance is mutated only by ApplyTransaction; it always equals the
// signed sum of the account's transaction history.
type Account struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	AccountNumber string
	AccountType   string
	Balance       decimal.Decimal
	Currency      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transaction is an append-only record of a single balance mutation.
// Amount is a strictly positive magnitude; direction lives in Type.
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	OwnerID     uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Type        Type
	Description string
	CreatedAt   time.Time
}

// Payee is a saved payment destination.
type Payee struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	AccountNumber string
	CreatedAt     time.Time
}
