package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/rentledger/rentledger/internal/shared"
)

// Settler clears pending ACH payments in bulk.
type Settler interface {
	ClearAllPendingACH(ctx context.Context, actor, role string) (int, error)
}

// ACHSettlementJob settles every pending ACH payment at end of day.
type ACHSettlementJob struct {
	Settler Settler
	Redis   *redis.Client
	Logger  *slog.Logger
	lockTTL time.Duration
}

// NewACHSettlementJob initialises the settlement handler.
func NewACHSettlementJob(settler Settler, rdb *redis.Client, logger *slog.Logger) *ACHSettlementJob {
	return &ACHSettlementJob{
		Settler: settler,
		Redis:   rdb,
		Logger:  logger,
		lockTTL: 10 * time.Minute,
	}
}

// Handle executes the settlement batch.
func (j *ACHSettlementJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Settler == nil {
		return errors.New("ach settlement: handler not configured")
	}
	var payload ACHSettlementPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Actor == "" {
		payload.Actor = "scheduler"
	}

	logger := j.logger()

	acquired, release, err := acquireLock(ctx, j.Redis, shared.SettlementLockKey, j.lockTTL)
	if err != nil {
		logger.Error("acquire settlement lock", slog.Any("error", err))
		return err
	}
	if !acquired {
		logger.Info("settlement already running elsewhere, skipping")
		return nil
	}
	defer release()

	start := time.Now()
	cleared, err := j.Settler.ClearAllPendingACH(ctx, payload.Actor, "system")
	if err != nil {
		logger.Error("settlement failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed ach settlement",
		slog.Int("cleared", cleared),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *ACHSettlementJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskACHSettlement))
	}
	return slog.Default().With(slog.String("job", TaskACHSettlement))
}
