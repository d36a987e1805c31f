package recurring

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the billing cadence of a recurring plan.
type Frequency string

const (
	FreqWeekly    Frequency = "weekly"
	FreqBiweekly  Frequency = "biweekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
)

// ValidFrequency reports whether f is a known cadence.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FreqWeekly, FreqBiweekly, FreqMonthly, FreqQuarterly:
		return true
	}
	return false
}

// PlanStatus is a node in the plan state machine:
// active <-> paused, and either -> cancelled (terminal).
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanPaused    PlanStatus = "paused"
	PlanCancelled PlanStatus = "cancelled"
)

// RunStatus records how the most recent charge attempt went.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// RecurringPlan is a scheduled repeating charge against a tenant's payment
// method. NextRunDate advances only on a successful run, so a failed charge
// stays due and is retried on the next sweep.
type RecurringPlan struct {
	ID              string          `json:"id"`
	TenantName      string          `json:"tenant_name"`
	Property        string          `json:"property"`
	Unit            string          `json:"unit,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Frequency       Frequency       `json:"frequency"`
	PaymentMethodID string          `json:"payment_method_id"`
	NextRunDate     time.Time       `json:"next_run_date"`
	LastRunDate     *time.Time      `json:"last_run_date,omitempty"`
	LastRunStatus   RunStatus       `json:"last_run_status,omitempty"`
	Status          PlanStatus      `json:"status"`
}

// MethodKind is the instrument type behind a stored payment method.
type MethodKind string

const (
	MethodCard MethodKind = "card"
	MethodACH  MethodKind = "ach"
)

// PaymentMethod is a stored card or bank account. Exactly one method is the
// default at any time; setting a new default unsets the rest.
type PaymentMethod struct {
	ID        string     `json:"id"`
	Type      MethodKind `json:"type"`
	Last4     string     `json:"last4"`
	IsDefault bool       `json:"is_default"`
}

// RunResult is the per-plan outcome of a manual run or a sweep.
type RunResult struct {
	PlanID  string `json:"plan_id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
