package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/rentledger/rentledger/internal/app"
	"github.com/rentledger/rentledger/internal/automation"
	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/gateway"
	"github.com/rentledger/rentledger/internal/observability"
	"github.com/rentledger/rentledger/internal/recurring"
	"github.com/rentledger/rentledger/internal/seed"
	"github.com/rentledger/rentledger/internal/shared"
	"github.com/rentledger/rentledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	auditTrail := shared.NewAuditTrail()
	activityFeed := shared.NewActivityFeed()
	metrics := observability.NewMetrics()

	billingStore := billing.NewStore()
	billingService := billing.NewService(billingStore, auditTrail, activityFeed)

	processor := gateway.NewSimulator(cfg.GatewayDelay, cfg.GatewayFailureRate)
	processor.SetSimulateFailures(cfg.GatewaySimulateFailures)

	recurringStore := recurring.NewStore()
	recurringService := recurring.NewService(recurringStore, processor, billingService, auditTrail, activityFeed)

	automationStore := automation.NewStore()
	automationBus := automation.NewBus()
	automationService := automation.NewService(automationStore, automationBus, activityFeed, cfg.StepFailureRate)
	automationService.SetSimulateFailures(cfg.StepSimulateFailures)

	if cfg.SeedDemo {
		if err := seed.Demo(ctx, seed.Stores{
			Billing:    billingStore,
			Recurring:  recurringStore,
			Automation: automationStore,
		}); err != nil {
			logger.Error("seed demo data", slog.Any("error", err))
			os.Exit(1)
		}
	}

	sweepJob := jobs.NewRecurringSweepJob(recurringService, redisClient, logger, metrics)
	settlementJob := jobs.NewACHSettlementJob(billingService, redisClient, logger)
	advanceJob := jobs.NewAutomationAdvanceJob(automationService, logger)
	overdueJob := jobs.NewOverdueRefreshJob(billingService, logger)

	sweepTask, err := jobs.NewRecurringSweepTask("scheduler")
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}
	settlementTask, err := jobs.NewACHSettlementTask("scheduler")
	if err != nil {
		logger.Error("build settlement task", slog.Any("error", err))
		os.Exit(1)
	}
	advanceTask, err := jobs.NewAutomationAdvanceTask()
	if err != nil {
		logger.Error("build advance task", slog.Any("error", err))
		os.Exit(1)
	}
	overdueTask, err := jobs.NewOverdueRefreshTask()
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRecurringSweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskACHSettlement, Handler: settlementJob.Handle},
			{Type: jobs.TaskAutomationAdvance, Handler: advanceJob.Handle},
			{Type: jobs.TaskOverdueRefresh, Handler: overdueJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 22 * * *", Task: settlementTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 */4 * * *", Task: advanceTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
			{Spec: "15 0 * * *", Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
