package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/rentledger/rentledger/internal/observability"
	"github.com/rentledger/rentledger/internal/recurring"
	"github.com/rentledger/rentledger/internal/shared"
)

// RecurringRunner executes every due recurring plan.
type RecurringRunner interface {
	RunAllDueRecurring(ctx context.Context, actor, role string) ([]recurring.RunResult, error)
}

// RecurringSweepJob charges all due recurring payment plans.
type RecurringSweepJob struct {
	Runner  RecurringRunner
	Redis   *redis.Client
	Logger  *slog.Logger
	Metrics *observability.Metrics
	lockTTL time.Duration
}

// NewRecurringSweepJob initialises the sweep handler.
func NewRecurringSweepJob(runner RecurringRunner, rdb *redis.Client, logger *slog.Logger, metrics *observability.Metrics) *RecurringSweepJob {
	return &RecurringSweepJob{
		Runner:  runner,
		Redis:   rdb,
		Logger:  logger,
		Metrics: metrics,
		lockTTL: 10 * time.Minute,
	}
}

// Handle executes the sweep.
func (j *RecurringSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Runner == nil {
		return errors.New("recurring sweep: handler not configured")
	}
	var payload RecurringSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Actor == "" {
		payload.Actor = "scheduler"
	}

	logger := j.logger()

	acquired, release, err := acquireLock(ctx, j.Redis, shared.SweepLockKey, j.lockTTL)
	if err != nil {
		logger.Error("acquire sweep lock", slog.Any("error", err))
		return err
	}
	if !acquired {
		logger.Info("sweep already running elsewhere, skipping")
		return nil
	}
	defer release()

	start := time.Now()
	results, err := j.Runner.RunAllDueRecurring(ctx, payload.Actor, "system")
	if err != nil {
		logger.Error("sweep failed", slog.Any("error", err))
		return err
	}

	succeeded := 0
	for _, res := range results {
		if j.Metrics != nil {
			j.Metrics.CountSweepOutcome(res.Success)
		}
		if res.Success {
			succeeded++
		} else {
			logger.Warn("recurring charge failed",
				slog.String("plan_id", res.PlanID),
				slog.String("message", res.Message),
			)
		}
	}

	logger.Info("completed recurring sweep",
		slog.Int("processed", len(results)),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", len(results)-succeeded),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *RecurringSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRecurringSweep))
	}
	return slog.Default().With(slog.String("job", TaskRecurringSweep))
}
