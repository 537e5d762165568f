package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/adevcorp-0/xero-shopify/internal/application/factories/infrastructure"
	"github.com/adevcorp-0/xero-shopify/internal/config"
	"github.com/adevcorp-0/xero-shopify/internal/expectation"
	"github.com/adevcorp-0/xero-shopify/internal/infrastructure/postgres"
	"github.com/adevcorp-0/xero-shopify/internal/worker"
	"github.com/adevcorp-0/xero-shopify/internal/xero"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to init postgres", "error", err)
		os.Exit(1)
	}

	tokenRepo := postgres.NewTokenRepository(pgPool)
	retryRepo := postgres.NewPaymentRetryRepository(pgPool)
	expectationRepo := postgres.NewExpectationRepository(pgPool)

	xeroAuth := xero.NewAuth(cfg.Xero.ClientID, cfg.Xero.ClientSecret, cfg.Xero.RedirectURI, tokenRepo)
	xeroClient := xero.NewClient(xeroAuth)

	expectationLedger := expectation.NewLedger(expectationRepo, cfg.Sync.ExpectationTTL)

	// Metrics endpoint for the sweeper process
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("sweeper metrics listening on :9093")
		if err := http.ListenAndServe(":9093", mux); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	poller := worker.NewPaymentRetryPoller(retryRepo, xeroClient)
	sweeper := worker.NewExpectationSweeper(expectationLedger)

	go func() {
		if err := sweeper.Run(ctx); err != nil {
			logger.Error("expectation sweeper stopped", "error", err)
		}
	}()

	if err := poller.Run(ctx); err != nil {
		logger.Error("payment retry poller stopped", "error", err)
	}

	logger.Info("sweeper stopped")
}
