package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gharbeti/gharbeti/internal/app"
	"github.com/gharbeti/gharbeti/internal/billing"
	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/ledger/builders"
	"github.com/gharbeti/gharbeti/internal/ledger/journal"
	"github.com/gharbeti/gharbeti/internal/ledger/reports"
	"github.com/gharbeti/gharbeti/internal/liability"
	"github.com/gharbeti/gharbeti/internal/observability"
	"github.com/gharbeti/gharbeti/internal/platform/cache"
	"github.com/gharbeti/gharbeti/internal/platform/db"
	"github.com/gharbeti/gharbeti/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, summary cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo)
	if err := accountsService.Seed(ctx); err != nil {
		logger.Error("seed chart of accounts", slog.Any("error", err))
		os.Exit(1)
	}
	accountsHandler := accounts.NewHandler(logger, accountsService)

	summaryCache := reports.NewCache(redisClient, cfg.SummaryCacheTTL)

	journalRepo := journal.NewRepository(pool)
	journalService := journal.NewService(logger, journalRepo, auditLogger, summaryCache, metrics)
	journalHandler := journal.NewHandler(logger, journalService)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(logger, reportsRepo, summaryCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	liabilityRepo := liability.NewRepository(pool)
	liabilityService := liability.NewService(liabilityRepo, auditLogger)
	liabilityHandler := liability.NewHandler(logger, liabilityService)

	billingService := billing.NewService(logger, journalRepo, journalService, accountsService, builders.FallbackToRevenue)
	billingHandler := billing.NewHandler(logger, billingService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AccountsHandler:  accountsHandler,
		JournalHandler:   journalHandler,
		ReportsHandler:   reportsHandler,
		LiabilityHandler: liabilityHandler,
		BillingHandler:   billingHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
