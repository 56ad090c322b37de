package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anubhavsharmawork/fintech-sub000/internal/http/auth"
	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) AccountRoutes(r chi.Router) {
	r.Post("/", h.createAccount)
	r.Get("/", h.listAccounts)
}

func (h *Handler) TransactionRoutes(r chi.Router) {
	r.Post("/", h.createTransaction)
	r.Get("/", h.listTransactions)
}

func (h *Handler) PaymentRoutes(r chi.Router) {
	r.Post("/", h.createPayment)
}

type createAccountRequest struct {
	AccountType    string          `json:"account_type"`
	Currency       string          `json:"currency"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.InitialDeposit.IsNegative() {
		http.Error(w, "initial_deposit must not be negative", http.StatusBadRequest)
		return
	}

	acct, err := h.svc.CreateAccount(r.Context(), ledger.CreateAccountParams{
		OwnerID:        ownerID,
		AccountType:    req.AccountType,
		Currency:       req.Currency,
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(acct))
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	accts, err := h.svc.ListAccounts(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponseList(accts))
}

type createTransactionRequest struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Type        ledger.Type     `json:"type"`
	Description string          `json:"description"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !req.Amount.IsPositive() {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	if !req.Type.Valid() {
		http.Error(w, "type must be credit or debit", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.ApplyTransaction(r.Context(), ledger.ApplyParams{
		OwnerID:     ownerID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var accountID *uuid.UUID

	if s := r.URL.Query().Get("account_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}

		accountID = &id
	}

	txs, err := h.svc.ListTransactions(r.Context(), ownerID, accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponseList(txs))
}

type createPaymentRequest struct {
	AccountID          uuid.UUID       `json:"account_id"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	PayeeName          string          `json:"payee_name"`
	PayeeAccountNumber string          `json:"payee_account_number"`
	Description        string          `json:"description"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !req.Amount.IsPositive() {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Pay(r.Context(), ledger.PaymentParams{
		OwnerID:            ownerID,
		AccountID:          req.AccountID,
		Amount:             req.Amount,
		Currency:           req.Currency,
		PayeeName:          req.PayeeName,
		PayeeAccountNumber: req.PayeeAccountNumber,
		Description:        req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ledger.ErrInvalidCurrency):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
