package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/adevcorp-0/xero-shopify/internal/api"
	"github.com/adevcorp-0/xero-shopify/internal/application/factories/infrastructure"
	"github.com/adevcorp-0/xero-shopify/internal/config"
	"github.com/adevcorp-0/xero-shopify/internal/dedup"
	"github.com/adevcorp-0/xero-shopify/internal/expectation"
	"github.com/adevcorp-0/xero-shopify/internal/infrastructure/postgres"
	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/usecase"
	"github.com/adevcorp-0/xero-shopify/internal/xero"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to init postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	// Repositories
	txManager := postgres.NewTxManager(pgPool)
	expectationRepo := postgres.NewExpectationRepository(pgPool)
	itemBillRepo := postgres.NewItemBillRepository(pgPool)
	tokenRepo := postgres.NewTokenRepository(pgPool)
	retryRepo := postgres.NewPaymentRetryRepository(pgPool)
	logRepo := postgres.NewInventoryLogRepository(pgPool)

	// Collaborators
	shopifyClient := shopify.NewClient(cfg.Shopify.StoreDomain, cfg.Shopify.AccessToken, cfg.Shopify.APIVersion)
	xeroAuth := xero.NewAuth(cfg.Xero.ClientID, cfg.Xero.ClientSecret, cfg.Xero.RedirectURI, tokenRepo)
	xeroClient := xero.NewClient(xeroAuth)

	// Core components
	window := dedup.NewWindow(redisClient, cfg.Sync.DedupTTL)
	expectationLedger := expectation.NewLedger(expectationRepo, cfg.Sync.ExpectationTTL)

	inventorySync := usecase.NewSyncInventory(shopifyClient, xeroClient, expectationLedger, itemBillRepo, txManager, usecase.SyncInventoryConfig{
		SKUPrefix:          cfg.Sync.SKUPrefix,
		AssetAccountCode:   cfg.Sync.AssetAccountCode,
		COGSAccountCode:    cfg.Sync.COGSAccountCode,
		SalesAccountCode:   cfg.Sync.SalesAccountCode,
		ReconcileDecreases: cfg.Sync.ReconcileDecreases,
	})
	orderPaid := usecase.NewSyncOrderPaid(xeroClient, retryRepo, usecase.SyncOrderPaidConfig{
		SalesAccountCode:   cfg.Sync.SalesAccountCode,
		PaymentAccountCode: cfg.Xero.PaymentAccountCode,
	})
	orderCancelled := usecase.NewSyncOrderCancelled(xeroClient)
	refundSync := usecase.NewSyncRefund(shopifyClient, xeroClient, usecase.SyncRefundConfig{
		SalesAccountCode: cfg.Sync.SalesAccountCode,
	})

	handlers := api.NewHandlers(
		cfg.Shopify.WebhookSecret,
		cfg.Sync.InternalToken,
		window,
		inventorySync,
		orderPaid,
		orderCancelled,
		refundSync,
		expectationLedger,
		logRepo,
		xeroAuth,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go registerWebhooks(ctx, shopifyClient, cfg.Shopify.AppServer)

	go func() {
		logger.Info("server listening", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// registerWebhooks makes sure every topic this service handles has a Shopify
// subscription pointing at us. Failures are logged, not fatal: the server is
// still useful for manually registered shops.
func registerWebhooks(ctx context.Context, client *shopify.Client, appServer string) {
	if appServer == "" {
		slog.Warn("SHOPIFY_APP_SERVER not set, skipping webhook registration")
		return
	}

	subscriptions := map[string]string{
		shopify.TopicInventoryLevelsUpdate: appServer + "/webhook/inventory",
		shopify.TopicOrdersPaid:            appServer + "/webhook/inventory/orders",
		shopify.TopicOrdersCancelled:       appServer + "/webhook/inventory/orders",
		shopify.TopicRefundsCreate:         appServer + "/webhook/inventory/orders",
	}

	for topic, address := range subscriptions {
		if err := client.EnsureWebhookRegistered(ctx, topic, address); err != nil {
			slog.Error("webhook registration failed", "topic", topic, "error", err)
		}
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
