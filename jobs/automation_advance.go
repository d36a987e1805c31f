package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// EnrollmentAdvancer steps active enrollments through their automations.
type EnrollmentAdvancer interface {
	AdvanceEnrollments(ctx context.Context) (int, error)
}

// AutomationAdvanceJob advances every active enrollment one step.
type AutomationAdvanceJob struct {
	Advancer EnrollmentAdvancer
	Logger   *slog.Logger
}

// NewAutomationAdvanceJob initialises the advance handler.
func NewAutomationAdvanceJob(advancer EnrollmentAdvancer, logger *slog.Logger) *AutomationAdvanceJob {
	return &AutomationAdvanceJob{Advancer: advancer, Logger: logger}
}

// Handle executes one advance pass.
func (j *AutomationAdvanceJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Advancer == nil {
		return errors.New("automation advance: handler not configured")
	}
	logger := j.logger()

	start := time.Now()
	advanced, err := j.Advancer.AdvanceEnrollments(ctx)
	if err != nil {
		logger.Error("advance failed", slog.Any("error", err))
		return err
	}
	logger.Info("completed automation advance",
		slog.Int("advanced", advanced),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *AutomationAdvanceJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAutomationAdvance))
	}
	return slog.Default().With(slog.String("job", TaskAutomationAdvance))
}
