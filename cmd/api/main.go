package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/prabink/khaatabook/internal/auth"
	authStore "github.com/prabink/khaatabook/internal/auth/store"
	"github.com/prabink/khaatabook/internal/config"
	"github.com/prabink/khaatabook/internal/database"
	"github.com/prabink/khaatabook/internal/export"
	khaatabookHttp "github.com/prabink/khaatabook/internal/http"
	customerHandler "github.com/prabink/khaatabook/internal/http/customer"
	exportHandler "github.com/prabink/khaatabook/internal/http/export"
	importHandler "github.com/prabink/khaatabook/internal/http/importcsv"
	reportHandler "github.com/prabink/khaatabook/internal/http/report"
	sessionHandler "github.com/prabink/khaatabook/internal/http/session"
	suggestionHandler "github.com/prabink/khaatabook/internal/http/suggestion"
	txHandler "github.com/prabink/khaatabook/internal/http/transaction"
	"github.com/prabink/khaatabook/internal/importer"
	"github.com/prabink/khaatabook/internal/ledger"
	ledgerStore "github.com/prabink/khaatabook/internal/ledger/store"
	"github.com/prabink/khaatabook/internal/report"
	"github.com/prabink/khaatabook/internal/suggest"
	suggestStore "github.com/prabink/khaatabook/internal/suggest/store"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		ledgerService  = ledger.NewService(ledgerStore.New(db))
		authService    = auth.NewService(authStore.New(db), cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
		suggestService = suggest.NewService(suggestStore.New(db))
		importService  = importer.NewService()
		exportService  = export.NewService(ledgerService)
		reportService  = report.NewService(ledgerService)
	)

	var (
		sessionH    = sessionHandler.NewHandler(authService)
		customerH   = customerHandler.NewHandler(ledgerService)
		txH         = txHandler.NewHandler(ledgerService)
		suggestionH = suggestionHandler.NewHandler(suggestService)
		exportH     = exportHandler.NewHandler(exportService)
		reportH     = reportHandler.NewHandler(reportService)
		importH     = importHandler.NewHandler(importService, ledgerService)
	)

	router := khaatabookHttp.New(
		authService,
		cfg.CORS.AllowedOrigins,
		sessionH,
		customerH,
		txH,
		suggestionH,
		exportH,
		reportH,
		importH,
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
