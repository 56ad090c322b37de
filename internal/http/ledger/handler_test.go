package ledger_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anubhavsharmawork/fintech-sub000/internal/http/auth"
	ledgerHandler "github.com/anubhavsharmawork/fintech-sub000/internal/http/ledger"
	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger"
	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger/memstore"
)

type accountResponse struct {
	ID            uuid.UUID       `json:"id"`
	AccountNumber string          `json:"account_number"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
}

type transactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Type        ledger.Type     `json:"type"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newRouter() http.Handler {
	svc := ledger.NewService(nil, memstore.New("USD"), "USD")
	h := ledgerHandler.NewHandler(svc)

	router := chi.NewRouter()
	router.Route("/accounts", h.AccountRoutes)
	router.Route("/transactions", h.TransactionRoutes)
	router.Route("/payments", h.PaymentRoutes)

	return router
}

func do(t *testing.T, router http.Handler, ownerID uuid.UUID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithOwner(req.Context(), ownerID))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func createAccount(t *testing.T, router http.Handler, ownerID uuid.UUID, body string) accountResponse {
	t.Helper()

	rec := do(t, router, ownerID, http.MethodPost, "/accounts/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var acct accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acct))

	return acct
}

func TestHandler_CreateAccountWithInitialDeposit(t *testing.T) {
	router := newRouter()
	ownerID := uuid.New()

	acct := createAccount(t, router, ownerID, `{"account_type":"Checking","currency":"usd","initial_deposit":100}`)

	assert.Len(t, acct.AccountNumber, 12)
	assert.Equal(t, "USD", acct.Currency)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(100)))

	rec := do(t, router, ownerID, http.MethodGet, "/transactions/?account_id="+acct.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var txs []transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TypeCredit, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestHandler_RejectedDebitChangesNothing(t *testing.T) {
	router := newRouter()
	ownerID := uuid.New()

	acct := createAccount(t, router, ownerID, `{"initial_deposit":50}`)

	rec := do(t, router, ownerID, http.MethodPost, "/transactions/",
		`{"account_id":"`+acct.ID.String()+`","amount":75,"type":"debit"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, ownerID, http.MethodGet, "/accounts/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var accts []accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accts))
	require.Len(t, accts, 1)
	assert.True(t, accts[0].Balance.Equal(decimal.NewFromInt(50)))
}

func TestHandler_CallerSideValidation(t *testing.T) {
	router := newRouter()
	ownerID := uuid.New()

	acct := createAccount(t, router, ownerID, `{"initial_deposit":10}`)

	type testCase struct {
		name string
		body string
	}

	tests := []testCase{
		{
			name: "NegativeAmount",
			body: `{"account_id":"` + acct.ID.String() + `","amount":-5,"type":"credit"}`,
		},
		{
			name: "ZeroAmount",
			body: `{"account_id":"` + acct.ID.String() + `","amount":0,"type":"credit"}`,
		},
		{
			name: "UnknownType",
			body: `{"account_id":"` + acct.ID.String() + `","amount":5,"type":"transfer"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, ownerID, http.MethodPost, "/transactions/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_OwnerIsolation(t *testing.T) {
	router := newRouter()
	ownerA := uuid.New()
	ownerB := uuid.New()

	acct := createAccount(t, router, ownerA, `{"initial_deposit":100}`)

	// Another owner debiting the account looks like a missing account,
	// never a leak of its existence.
	rec := do(t, router, ownerB, http.MethodPost, "/transactions/",
		`{"account_id":"`+acct.ID.String()+`","amount":10,"type":"debit"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, ownerB, http.MethodGet, "/accounts/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var accts []accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accts))

	for _, a := range accts {
		assert.NotEqual(t, acct.ID, a.ID)
	}
}

func TestHandler_Payment(t *testing.T) {
	router := newRouter()
	ownerID := uuid.New()

	acct := createAccount(t, router, ownerID, `{"initial_deposit":200}`)

	rec := do(t, router, ownerID, http.MethodPost, "/payments/",
		`{"account_id":"`+acct.ID.String()+`","amount":80,"payee_name":"Acme Utilities","payee_account_number":"123456789012"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tx transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))

	assert.Equal(t, ledger.TypeDebit, tx.Type)
	assert.Equal(t, "Payment to Acme Utilities (123456789012)", tx.Description)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(80)))

	rec = do(t, router, ownerID, http.MethodGet, "/accounts/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var accts []accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accts))
	require.Len(t, accts, 1)
	assert.True(t, accts[0].Balance.Equal(decimal.NewFromInt(120)))
}
