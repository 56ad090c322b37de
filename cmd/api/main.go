package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/anubhavsharmawork/fintech-sub000/internal/config"
	"github.com/anubhavsharmawork/fintech-sub000/internal/database"
	appHttp "github.com/anubhavsharmawork/fintech-sub000/internal/http"
	ledgerHandler "github.com/anubhavsharmawork/fintech-sub000/internal/http/ledger"
	payeeHandler "github.com/anubhavsharmawork/fintech-sub000/internal/http/payee"
	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger"
	"github.com/anubhavsharmawork/fintech-sub000/internal/ledger/memstore"
	ledgerStore "github.com/anubhavsharmawork/fintech-sub000/internal/ledger/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The durable store is optional: without one (or when it cannot be
	// reached at startup) the ledger serves everything from memory.
	var durable ledger.Store

	if cfg.DatabaseConfigured() {
		db, err := database.New(context.Background(), cfg.ConnectionString())
		if err != nil {
			slog.Warn("database unreachable, continuing with in-memory store only", "error", err)
		} else {
			defer db.Close()

			durable = ledgerStore.New(db)
		}
	} else {
		slog.Info("no database configured, using in-memory store")
	}

	ledgerService := ledger.NewService(durable, memstore.New(cfg.Ledger.DefaultCurrency), cfg.Ledger.DefaultCurrency)

	var (
		ledgerH = ledgerHandler.NewHandler(ledgerService)
		payeeH  = payeeHandler.NewHandler(ledgerService)
	)

	router := appHttp.New(ledgerH, payeeH, cfg.Auth.JWTSecret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
