package ledger

import "errors"

var (
	// ErrAccountNotFound indicates no account with that id is owned by the caller.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates a debit larger than the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnauthorized indicates a mutation targeted a row the caller does not own.
	ErrUnauthorized = errors.New("not authorized for this account")
	// ErrPayeeNotFound indicates no payee with that id is owned by the caller.
	ErrPayeeNotFound = errors.New("payee not found")
	// ErrPayeeExists indicates the owner already has a payee with that account number.
	ErrPayeeExists = errors.New("payee already exists")
	// ErrInvalidCurrency indicates a currency code that is not ISO 4217.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrSchemaMissing is returned by the durable store when the backing
	// relation does not exist yet. The facade heals the schema and retries
	// the call once; callers never see this error on the happy path.
	ErrSchemaMissing = errors.New("storage schema missing")
	// ErrDuplicateAccountNumber indicates a generated account number
	// collided with an existing one.
	ErrDuplicateAccountNumber = errors.New("duplicate account number")
)
