package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/anubhavsharmawork/fintech-sub000/internal/http/auth"
	ledgerHandler "github.com/anubhavsharmawork/fintech-sub000/internal/http/ledger"
	payeeHandler "github.com/anubhavsharmawork/fintech-sub000/internal/http/payee"
)

func New(
	ledgerV1 *ledgerHandler.Handler,
	payeeV1 *payeeHandler.Handler,
	jwtSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.AccountRoutes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.TransactionRoutes(r)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.PaymentRoutes(r)
		})

		r.Route("/payees", payeeV1.Routes)
	})

	return router
}
