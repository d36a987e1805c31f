package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// OverdueRefresher flags unpaid invoices past their due date.
type OverdueRefresher interface {
	RefreshOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// OverdueRefreshJob marks overdue invoices once a day.
type OverdueRefreshJob struct {
	Refresher OverdueRefresher
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewOverdueRefreshJob initialises the refresh handler.
func NewOverdueRefreshJob(refresher OverdueRefresher, logger *slog.Logger) *OverdueRefreshJob {
	return &OverdueRefreshJob{
		Refresher: refresher,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the refresh pass.
func (j *OverdueRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Refresher == nil {
		return errors.New("overdue refresh: handler not configured")
	}
	logger := j.logger()

	flagged, err := j.Refresher.RefreshOverdue(ctx, j.clock())
	if err != nil {
		logger.Error("overdue refresh failed", slog.Any("error", err))
		return err
	}
	logger.Info("completed overdue refresh", slog.Int("flagged", flagged))
	return nil
}

func (j *OverdueRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOverdueRefresh))
	}
	return slog.Default().With(slog.String("job", TaskOverdueRefresh))
}
