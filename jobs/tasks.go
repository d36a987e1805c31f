package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecurringSweep runs every due recurring payment plan.
	TaskRecurringSweep = "recurring:sweep"
	// TaskACHSettlement clears every pending ACH payment at end of day.
	TaskACHSettlement = "payments:ach-settle"
	// TaskAutomationAdvance moves active automation enrollments one step forward.
	TaskAutomationAdvance = "automation:advance"
	// TaskOverdueRefresh flags unpaid invoices past their due date.
	TaskOverdueRefresh = "billing:overdue-refresh"
)

// RecurringSweepPayload configures a sweep run.
type RecurringSweepPayload struct {
	Actor string `json:"actor"`
}

// NewRecurringSweepTask constructs the sweep task.
func NewRecurringSweepTask(actor string) (*asynq.Task, error) {
	data, err := json.Marshal(RecurringSweepPayload{Actor: actor})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecurringSweep, data), nil
}

// ACHSettlementPayload configures a settlement batch.
type ACHSettlementPayload struct {
	Actor string `json:"actor"`
}

// NewACHSettlementTask constructs the settlement task.
func NewACHSettlementTask(actor string) (*asynq.Task, error) {
	data, err := json.Marshal(ACHSettlementPayload{Actor: actor})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskACHSettlement, data), nil
}

// NewAutomationAdvanceTask constructs the enrollment-advance task.
func NewAutomationAdvanceTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskAutomationAdvance, nil), nil
}

// NewOverdueRefreshTask constructs the overdue-invoice refresh task.
func NewOverdueRefreshTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskOverdueRefresh, nil), nil
}
