package recurring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/gateway"
	"github.com/rentledger/rentledger/internal/shared"
)

// ProcessorPort is the slice of the payment gateway the scheduler uses.
type ProcessorPort interface {
	ProcessCard(ctx context.Context, amount decimal.Decimal, methodID string) gateway.Outcome
	ProcessACH(ctx context.Context, amount decimal.Decimal, methodID string) gateway.Outcome
}

// PaymentRecorder appends payment records for gateway attempts.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, pay billing.Payment) (billing.Payment, error)
}

// AuditPort records structured compliance entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ActivityPort records human-readable feed entries.
type ActivityPort interface {
	Add(ctx context.Context, actor, category, msg string)
}

// Service owns recurring plans and payment methods. All charge attempts,
// manual or swept, run one at a time under runMu: the scheduler never fires
// two attempts concurrently, which keeps ordering deterministic and rules out
// double-charging a shared payment method within one sweep.
type Service struct {
	repo      Repository
	processor ProcessorPort
	payments  PaymentRecorder
	audit     AuditPort
	activity  ActivityPort
	now       func() time.Time

	runMu sync.Mutex
}

// NewService builds a scheduler Service.
func NewService(repo Repository, processor ProcessorPort, payments PaymentRecorder, audit AuditPort, activity ActivityPort) *Service {
	return &Service{
		repo:      repo,
		processor: processor,
		payments:  payments,
		audit:     audit,
		activity:  activity,
		now:       time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) ListPlans(ctx context.Context) ([]RecurringPlan, error) {
	return s.repo.ListPlans(ctx)
}

func (s *Service) ListMethods(ctx context.Context) ([]PaymentMethod, error) {
	return s.repo.ListMethods(ctx)
}

// SetupInput carries the fields for a new recurring plan.
type SetupInput struct {
	TenantName      string
	Property        string
	Unit            string
	Amount          decimal.Decimal
	Frequency       Frequency
	PaymentMethodID string
	FirstChargeDate time.Time
	Actor           string
	ActorRole       string
}

// SetupRecurringPayment creates an active plan whose first charge falls on
// the given date.
func (s *Service) SetupRecurringPayment(ctx context.Context, input SetupInput) (RecurringPlan, error) {
	if input.TenantName == "" {
		return RecurringPlan{}, fmt.Errorf("%w: tenant name required", shared.ErrValidation)
	}
	if !input.Amount.IsPositive() {
		return RecurringPlan{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if !ValidFrequency(input.Frequency) {
		return RecurringPlan{}, fmt.Errorf("%w: unknown frequency %q", shared.ErrValidation, input.Frequency)
	}
	if input.FirstChargeDate.IsZero() {
		return RecurringPlan{}, fmt.Errorf("%w: first charge date required", shared.ErrValidation)
	}
	if _, err := s.repo.GetMethod(ctx, input.PaymentMethodID); err != nil {
		return RecurringPlan{}, fmt.Errorf("payment method: %w", err)
	}
	plan := RecurringPlan{
		ID:              "plan_" + uuid.NewString(),
		TenantName:      input.TenantName,
		Property:        input.Property,
		Unit:            input.Unit,
		Amount:          input.Amount,
		Frequency:       input.Frequency,
		PaymentMethodID: input.PaymentMethodID,
		NextRunDate:     input.FirstChargeDate,
		Status:          PlanActive,
	}
	if err := s.repo.InsertPlan(ctx, plan); err != nil {
		return RecurringPlan{}, err
	}
	s.recordAudit(ctx, input.Actor, input.ActorRole, "plan.create", plan.ID, nil, map[string]any{
		"tenant": plan.TenantName, "amount": plan.Amount.String(), "frequency": string(plan.Frequency),
	})
	s.addActivity(ctx, input.Actor, "recurring", fmt.Sprintf("Set up %s autopay of %s for %s",
		plan.Frequency, shared.FormatUSD(plan.Amount), plan.TenantName))
	return plan, nil
}

// PauseRecurringPlan flips an active plan to paused. Cancelled plans are left
// untouched.
func (s *Service) PauseRecurringPlan(ctx context.Context, id, actor, role string) (RecurringPlan, error) {
	return s.setPlanStatus(ctx, id, PlanPaused, "plan.pause", actor, role)
}

// ResumeRecurringPlan flips a paused plan back to active. Cancelled plans are
// left untouched.
func (s *Service) ResumeRecurringPlan(ctx context.Context, id, actor, role string) (RecurringPlan, error) {
	return s.setPlanStatus(ctx, id, PlanActive, "plan.resume", actor, role)
}

// CancelRecurringPayment terminates a plan. One-way; repeat calls no-op.
func (s *Service) CancelRecurringPayment(ctx context.Context, id, actor, role string) (RecurringPlan, error) {
	return s.setPlanStatus(ctx, id, PlanCancelled, "plan.cancel", actor, role)
}

func (s *Service) setPlanStatus(ctx context.Context, id string, to PlanStatus, action, actor, role string) (RecurringPlan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return RecurringPlan{}, err
	}
	if plan.Status == PlanCancelled || plan.Status == to {
		return plan, nil
	}
	old := plan.Status
	plan.Status = to
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return RecurringPlan{}, err
	}
	s.recordAudit(ctx, actor, role, action, plan.ID,
		map[string]any{"status": string(old)},
		map[string]any{"status": string(to)})
	s.addActivity(ctx, actor, "recurring", fmt.Sprintf("Autopay for %s is now %s", plan.TenantName, to))
	return plan, nil
}

// RunRecurringNow charges a single plan immediately.
func (s *Service) RunRecurringNow(ctx context.Context, planID, actor, role string) (RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runLocked(ctx, planID, actor, role)
}

// RunAllDueRecurring sweeps every active plan whose next run date has
// arrived, charging them sequentially in ascending plan-ID order.
func (s *Service) RunAllDueRecurring(ctx context.Context, actor, role string) ([]RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now()
	results := make([]RunResult, 0)
	for _, plan := range plans {
		if plan.Status != PlanActive || plan.NextRunDate.After(today) {
			continue
		}
		res, err := s.runLocked(ctx, plan.ID, actor, role)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// runLocked performs one charge attempt. Callers must hold runMu. The plan's
// status is re-read after the gateway call: if the plan was cancelled while
// the attempt was in flight, the schedule update is skipped even though the
// payment record for the attempt is kept.
func (s *Service) runLocked(ctx context.Context, planID, actor, role string) (RunResult, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return RunResult{}, err
	}
	if plan.Status != PlanActive {
		return RunResult{PlanID: plan.ID, Success: false, Message: fmt.Sprintf("plan is %s", plan.Status)}, nil
	}
	method, err := s.repo.GetMethod(ctx, plan.PaymentMethodID)
	if err != nil {
		return RunResult{PlanID: plan.ID, Success: false, Message: "payment method not found"}, nil
	}

	var outcome gateway.Outcome
	var payMethod billing.PayMethod
	switch method.Type {
	case MethodACH:
		outcome = s.processor.ProcessACH(ctx, plan.Amount, method.ID)
		payMethod = billing.MethodACH
	default:
		outcome = s.processor.ProcessCard(ctx, plan.Amount, method.ID)
		payMethod = billing.MethodCard
	}

	if s.payments != nil {
		_, _ = s.payments.RecordPayment(ctx, billing.Payment{
			Date:       s.now(),
			Type:       billing.PaymentTenant,
			PayerPayee: plan.TenantName,
			Property:   plan.Property,
			Amount:     plan.Amount,
			Method:     payMethod,
			Status:     settlementToStatus(outcome.Status),
			Reference:  plan.ID,
		})
	}

	current, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return RunResult{}, err
	}
	if current.Status == PlanCancelled {
		return RunResult{PlanID: plan.ID, Success: false, Message: "plan cancelled while charge was in flight"}, nil
	}

	today := s.now()
	oldNext := current.NextRunDate
	current.LastRunDate = &today
	if outcome.Success {
		current.LastRunStatus = RunSuccess
		next, err := NextRunDate(today, current.Frequency)
		if err != nil {
			return RunResult{}, err
		}
		current.NextRunDate = next
	} else {
		// A failed charge stays due: NextRunDate is untouched so the next
		// sweep retries the same due date.
		current.LastRunStatus = RunFailed
	}
	if err := s.repo.SavePlan(ctx, current); err != nil {
		return RunResult{}, err
	}

	s.recordAudit(ctx, actor, role, "plan.run", current.ID,
		map[string]any{"next_run_date": oldNext.Format(time.RFC3339)},
		map[string]any{
			"next_run_date":   current.NextRunDate.Format(time.RFC3339),
			"last_run_status": string(current.LastRunStatus),
		})
	if outcome.Success {
		s.addActivity(ctx, actor, "recurring", fmt.Sprintf("Charged %s autopay of %s",
			current.TenantName, shared.FormatUSD(current.Amount)))
	} else {
		s.addActivity(ctx, actor, "recurring", fmt.Sprintf("Autopay for %s failed: %s",
			current.TenantName, outcome.Message))
	}
	return RunResult{PlanID: current.ID, Success: outcome.Success, Message: outcome.Message}, nil
}

// AddPaymentMethod stores a card or bank account. The first method saved
// becomes the default regardless of the flag.
func (s *Service) AddPaymentMethod(ctx context.Context, kind MethodKind, last4 string, isDefault bool, actor, role string) (PaymentMethod, error) {
	if kind != MethodCard && kind != MethodACH {
		return PaymentMethod{}, fmt.Errorf("%w: unknown method type %q", shared.ErrValidation, kind)
	}
	if len(last4) != 4 {
		return PaymentMethod{}, fmt.Errorf("%w: last4 must be four digits", shared.ErrValidation)
	}
	existing, err := s.repo.ListMethods(ctx)
	if err != nil {
		return PaymentMethod{}, err
	}
	method := PaymentMethod{
		ID:        "pm_" + uuid.NewString(),
		Type:      kind,
		Last4:     last4,
		IsDefault: isDefault || len(existing) == 0,
	}
	if err := s.repo.InsertMethod(ctx, method); err != nil {
		return PaymentMethod{}, err
	}
	s.recordAudit(ctx, actor, role, "method.create", method.ID, nil, map[string]any{
		"type": string(method.Type), "last4": method.Last4, "is_default": method.IsDefault,
	})
	return method, nil
}

// SetDefaultPaymentMethod makes one method the default and unsets the rest.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, id, actor, role string) error {
	if err := s.repo.SetDefaultMethod(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, role, "method.set_default", id, nil, map[string]any{"is_default": true})
	return nil
}

func settlementToStatus(status gateway.SettlementStatus) billing.PaymentStatus {
	switch status {
	case gateway.StatusCleared:
		return billing.PaymentCleared
	case gateway.StatusPending:
		return billing.PaymentPending
	default:
		return billing.PaymentFailed
	}
}

func (s *Service) recordAudit(ctx context.Context, actor, role, action, entityID string, old, new map[string]any) {
	if s.audit == nil {
		return
	}
	entity := "recurring_plan"
	if action == "method.create" || action == "method.set_default" {
		entity = "payment_method"
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:     actor,
		ActorRole: role,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		OldValue:  old,
		NewValue:  new,
		At:        s.now(),
	})
}

func (s *Service) addActivity(ctx context.Context, actor, category, msg string) {
	if s.activity != nil {
		s.activity.Add(ctx, actor, category, msg)
	}
}
