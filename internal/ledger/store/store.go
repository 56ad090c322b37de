package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger"
)

// Store persists accounts, transactions and payees in Postgres. It
// provisions its own schema via EnsureSchema and reports a missing
// relation as ledger.ErrSchemaMissing so the facade can heal and retry.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// maxNumberAttempts bounds regeneration after an account number collision.
const maxNumberAttempts = 5

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*ledger.Account, error) {
	var acct ledger.Account

	if err := s.Scan(
		&acct.ID, &acct.OwnerID, &acct.AccountNumber, &acct.AccountType,
		&acct.Balance, &acct.Currency, &acct.CreatedAt, &acct.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &acct, nil
}

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.AccountID, &tx.OwnerID, &tx.Amount, &tx.Currency,
		&typeStr, &tx.Description, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = ledger.Type(typeStr)

	return &tx, nil
}

const selectAccountColumns = `
	id, owner_id, account_number, account_type, balance, currency, created_at, updated_at
`

const selectTransactionColumns = `
	id, account_id, owner_id, amount, currency, type, description, created_at
`

func (s *Store) CreateAccount(ctx context.Context, acct *ledger.Account, initialDeposit decimal.Decimal) error {
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		err = s.createAccount(ctx, acct, initialDeposit)
		if !errors.Is(err, ledger.ErrDuplicateAccountNumber) {
			return err
		}
	}

	return fmt.Errorf("creating account: %w", err)
}

func (s *Store) createAccount(ctx context.Context, acct *ledger.Account, initialDeposit decimal.Decimal) error {
	number, err := ledger.NewAccountNumber()
	if err != nil {
		return err
	}

	id := uuid.New()
	now := time.Now().UTC()
	balance := decimal.Zero

	if initialDeposit.IsPositive() {
		balance = initialDeposit
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "beginning transaction")
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO accounts (id, owner_id, account_number, account_type, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`

	if _, err := dbTx.ExecContext(ctx, query,
		id, acct.OwnerID, number, acct.AccountType, balance, acct.Currency, now,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccountNumber, number)
		}

		return classify(err, "inserting account")
	}

	if initialDeposit.IsPositive() {
		txQuery := `
			INSERT INTO transactions (id, account_id, owner_id, amount, currency, type, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		if _, err := dbTx.ExecContext(ctx, txQuery,
			uuid.New(), id, acct.OwnerID, initialDeposit, acct.Currency, ledger.TypeCredit, "Initial deposit", now,
		); err != nil {
			return classify(err, "inserting initial deposit")
		}
	}

	if err := dbTx.Commit(); err != nil {
		return classify(err, "committing account")
	}

	acct.ID = id
	acct.AccountNumber = number
	acct.Balance = balance
	acct.CreatedAt = now
	acct.UpdatedAt = now

	return nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts
		WHERE owner_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, classify(err, "listing accounts")
	}
	defer rows.Close()

	var accts []*ledger.Account

	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accts = append(accts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterating accounts")
	}

	return accts, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID uuid.UUID, accountID *uuid.UUID) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE owner_id = $1`

	args := []any{ownerID}

	if accountID != nil {
		query += " AND account_id = $2"

		args = append(args, *accountID)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "listing transactions")
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterating transactions")
	}

	return txs, nil
}

// ApplyTransaction validates funds and mutates the balance in one database
// transaction. The account row is locked for the duration, so balance
// updates on a single account are linearizable.
func (s *Store) ApplyTransaction(ctx context.Context, tx *ledger.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "beginning transaction")
	}
	defer dbTx.Rollback()

	var (
		balance  decimal.Decimal
		currency string
	)

	row := dbTx.QueryRowContext(ctx,
		`SELECT balance, currency FROM accounts WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
		tx.AccountID, tx.OwnerID,
	)
	if err := row.Scan(&balance, &currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrAccountNotFound
		}

		return classify(err, "loading account")
	}

	if tx.Currency == "" {
		tx.Currency = currency
	}

	delta := tx.Amount
	if tx.Type == ledger.TypeDebit {
		if tx.Amount.GreaterThan(balance) {
			return ledger.ErrInsufficientFunds
		}

		delta = delta.Neg()
	}

	now := time.Now().UTC()

	res, err := dbTx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4`,
		balance.Add(delta), now, tx.AccountID, tx.OwnerID,
	)
	if err != nil {
		return classify(err, "updating balance")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking balance update: %w", err)
	}

	// The row lock makes this unreachable in practice, but never insert an
	// orphan transaction if the account vanished underneath us.
	if affected == 0 {
		return ledger.ErrUnauthorized
	}

	id := uuid.New()

	if _, err := dbTx.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, owner_id, amount, currency, type, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, tx.AccountID, tx.OwnerID, tx.Amount, tx.Currency, tx.Type, tx.Description, now,
	); err != nil {
		return classify(err, "inserting transaction")
	}

	if err := dbTx.Commit(); err != nil {
		return classify(err, "committing transaction")
	}

	tx.ID = id
	tx.CreatedAt = now

	return nil
}

func (s *Store) CreatePayee(ctx context.Context, p *ledger.Payee) error {
	id := uuid.New()
	now := time.Now().UTC()

	query := `
		INSERT INTO payees (id, owner_id, name, account_number, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := s.db.ExecContext(ctx, query, id, p.OwnerID, p.Name, p.AccountNumber, now); err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrPayeeExists
		}

		return classify(err, "inserting payee")
	}

	p.ID = id
	p.CreatedAt = now

	return nil
}

func (s *Store) ListPayees(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Payee, error) {
	query := `
		SELECT id, owner_id, name, account_number, created_at
		FROM payees
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, classify(err, "listing payees")
	}
	defer rows.Close()

	var payees []*ledger.Payee

	for rows.Next() {
		var p ledger.Payee
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.AccountNumber, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payee: %w", err)
		}

		payees = append(payees, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterating payees")
	}

	return payees, nil
}

func (s *Store) DeletePayee(ctx context.Context, ownerID, payeeID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM payees WHERE id = $1 AND owner_id = $2`, payeeID, ownerID,
	)
	if err != nil {
		return classify(err, "deleting payee")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking payee delete: %w", err)
	}

	if affected == 0 {
		return ledger.ErrPayeeNotFound
	}

	return nil
}

// EnsureSchema provisions the three tables and their indexes. Every
// statement is create-if-not-exists, so it is safe to call concurrently
// and repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			account_number TEXT NOT NULL,
			account_type TEXT NOT NULL,
			balance NUMERIC(18,2) NOT NULL DEFAULT 0,
			currency CHAR(3) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS accounts_account_number_idx ON accounts (account_number)`,
		`CREATE INDEX IF NOT EXISTS accounts_owner_id_idx ON accounts (owner_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL,
			owner_id UUID NOT NULL,
			amount NUMERIC(18,2) NOT NULL,
			currency CHAR(3) NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_account_id_idx ON transactions (account_id)`,
		`CREATE INDEX IF NOT EXISTS transactions_owner_id_idx ON transactions (owner_id)`,
		`CREATE TABLE IF NOT EXISTS payees (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			account_number TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS payees_owner_account_idx ON payees (owner_id, account_number)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}

	return nil
}

// Postgres SQLSTATE codes the store reacts to.
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// classify wraps a driver error, tagging a missing relation as
// ledger.ErrSchemaMissing so the facade's heal-and-retry can recognize it.
func classify(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
		return fmt.Errorf("%s: %w", msg, ledger.ErrSchemaMissing)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
