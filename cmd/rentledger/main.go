package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/rentledger/rentledger/internal/app"
	"github.com/rentledger/rentledger/internal/automation"
	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/gateway"
	"github.com/rentledger/rentledger/internal/ledger"
	"github.com/rentledger/rentledger/internal/observability"
	"github.com/rentledger/rentledger/internal/recurring"
	"github.com/rentledger/rentledger/internal/seed"
	"github.com/rentledger/rentledger/internal/shared"
	"github.com/rentledger/rentledger/jobs"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditTrail := shared.NewAuditTrail()
	activityFeed := shared.NewActivityFeed()
	metrics := observability.NewMetrics()

	ledgerStore := ledger.NewStore()
	ledgerService := ledger.NewService(ledgerStore, auditTrail, activityFeed)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	billingStore := billing.NewStore()
	billingService := billing.NewService(billingStore, auditTrail, activityFeed)
	billingHandler := billing.NewHandler(logger, billingService)

	processor := gateway.NewSimulator(cfg.GatewayDelay, cfg.GatewayFailureRate)
	processor.SetSimulateFailures(cfg.GatewaySimulateFailures)
	gatewayHandler := gateway.NewHandler(logger, processor)

	recurringStore := recurring.NewStore()
	recurringService := recurring.NewService(recurringStore, processor, billingService, auditTrail, activityFeed)
	recurringHandler := recurring.NewHandler(logger, recurringService)

	automationStore := automation.NewStore()
	automationBus := automation.NewBus()
	automationService := automation.NewService(automationStore, automationBus, activityFeed, cfg.StepFailureRate)
	automationService.SetSimulateFailures(cfg.StepSimulateFailures)
	automationHandler := automation.NewHandler(logger, automationService)

	if cfg.SeedDemo {
		if err := seed.Demo(ctx, seed.Stores{
			Ledger:     ledgerStore,
			Billing:    billingStore,
			Recurring:  recurringStore,
			Automation: automationStore,
		}); err != nil {
			logger.Error("seed demo data", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("demo data seeded")
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		LedgerHandler:     ledgerHandler,
		BillingHandler:    billingHandler,
		RecurringHandler:  recurringHandler,
		AutomationHandler: automationHandler,
		GatewayHandler:    gatewayHandler,
		JobHandler:        jobHandler,
		AuditTrail:        auditTrail,
		ActivityFeed:      activityFeed,
		Metrics:           metrics,
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
