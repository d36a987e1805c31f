package recurring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/gateway"
)

type fakeProcessor struct {
	outcome gateway.Outcome
	before  func()
	charges []string
}

func (f *fakeProcessor) ProcessCard(_ context.Context, _ decimal.Decimal, methodID string) gateway.Outcome {
	if f.before != nil {
		f.before()
	}
	f.charges = append(f.charges, methodID)
	return f.outcome
}

func (f *fakeProcessor) ProcessACH(_ context.Context, _ decimal.Decimal, methodID string) gateway.Outcome {
	if f.before != nil {
		f.before()
	}
	f.charges = append(f.charges, methodID)
	return f.outcome
}

type fakeRecorder struct {
	payments []billing.Payment
}

func (f *fakeRecorder) RecordPayment(_ context.Context, pay billing.Payment) (billing.Payment, error) {
	pay.ID = fmt.Sprintf("pay_%d", len(f.payments)+1)
	f.payments = append(f.payments, pay)
	return pay, nil
}

func successOutcome() gateway.Outcome {
	return gateway.Outcome{Success: true, Status: gateway.StatusCleared, TransactionID: "txn_1", Message: "approved"}
}

func failedOutcome() gateway.Outcome {
	return gateway.Outcome{Success: false, Status: gateway.StatusFailed, Message: "declined"}
}

func newTestService(t *testing.T, outcome gateway.Outcome, today time.Time) (*Service, *Store, *fakeProcessor, *fakeRecorder) {
	t.Helper()
	store := NewStore()
	processor := &fakeProcessor{outcome: outcome}
	recorder := &fakeRecorder{}
	svc := NewService(store, processor, recorder, nil, nil)
	svc.WithNow(func() time.Time { return today })
	return svc, store, processor, recorder
}

func seedPlan(t *testing.T, store *Store, plan RecurringPlan) {
	t.Helper()
	require.NoError(t, store.InsertMethod(context.Background(), PaymentMethod{ID: plan.PaymentMethodID, Type: MethodCard, Last4: "4242"}))
	require.NoError(t, store.InsertPlan(context.Background(), plan))
}

func TestSetupRecurringPaymentRequiresKnownMethod(t *testing.T) {
	svc, _, _, _ := newTestService(t, successOutcome(), date(2025, time.June, 1))
	_, err := svc.SetupRecurringPayment(context.Background(), SetupInput{
		TenantName:      "Sarah Mitchell",
		Amount:          decimal.NewFromInt(1850),
		Frequency:       FreqMonthly,
		PaymentMethodID: "pm-missing",
		FirstChargeDate: date(2025, time.June, 1),
	})
	require.Error(t, err)
}

func TestSetupRecurringPaymentStartsActive(t *testing.T) {
	today := date(2025, time.June, 1)
	svc, store, _, _ := newTestService(t, successOutcome(), today)
	require.NoError(t, store.InsertMethod(context.Background(), PaymentMethod{ID: "pm-1", Type: MethodCard, Last4: "4242"}))

	plan, err := svc.SetupRecurringPayment(context.Background(), SetupInput{
		TenantName:      "Sarah Mitchell",
		Property:        "Maple Court",
		Amount:          decimal.NewFromInt(1850),
		Frequency:       FreqMonthly,
		PaymentMethodID: "pm-1",
		FirstChargeDate: date(2025, time.June, 15),
	})
	require.NoError(t, err)
	require.Equal(t, PlanActive, plan.Status)
	require.True(t, plan.NextRunDate.Equal(date(2025, time.June, 15)))
	require.Empty(t, plan.LastRunStatus)
}

func TestRunRecurringNowSuccessAdvancesSchedule(t *testing.T) {
	today := date(2025, time.June, 20)
	svc, store, _, recorder := newTestService(t, successOutcome(), today)
	seedPlan(t, store, RecurringPlan{
		ID: "plan-1", TenantName: "Sarah Mitchell", Amount: decimal.NewFromInt(1850),
		Frequency: FreqMonthly, PaymentMethodID: "pm-1",
		NextRunDate: date(2025, time.June, 15), Status: PlanActive,
	})

	res, err := svc.RunRecurringNow(context.Background(), "plan-1", "manager", "admin")
	require.NoError(t, err)
	require.True(t, res.Success)

	plan, err := store.GetPlan(context.Background(), "plan-1")
	require.NoError(t, err)
	require.Equal(t, RunSuccess, plan.LastRunStatus)
	require.NotNil(t, plan.LastRunDate)
	require.True(t, plan.LastRunDate.Equal(today))
	// The new due date is computed from the day the charge ran, not from the
	// old due date.
	require.True(t, plan.NextRunDate.Equal(date(2025, time.July, 20)))

	require.Len(t, recorder.payments, 1)
	require.Equal(t, billing.PaymentCleared, recorder.payments[0].Status)
	require.Equal(t, "plan-1", recorder.payments[0].Reference)
}

func TestRunRecurringNowFailureLeavesScheduleDue(t *testing.T) {
	today := date(2025, time.June, 20)
	svc, store, _, recorder := newTestService(t, failedOutcome(), today)
	due := date(2025, time.June, 15)
	seedPlan(t, store, RecurringPlan{
		ID: "plan-1", TenantName: "Sarah Mitchell", Amount: decimal.NewFromInt(1850),
		Frequency: FreqMonthly, PaymentMethodID: "pm-1",
		NextRunDate: due, Status: PlanActive,
	})

	res, err := svc.RunRecurringNow(context.Background(), "plan-1", "manager", "admin")
	require.NoError(t, err)
	require.False(t, res.Success)

	plan, err := store.GetPlan(context.Background(), "plan-1")
	require.NoError(t, err)
	require.Equal(t, RunFailed, plan.LastRunStatus)
	require.True(t, plan.NextRunDate.Equal(due), "failed charge must stay due")

	require.Len(t, recorder.payments, 1)
	require.Equal(t, billing.PaymentFailed, recorder.payments[0].Status)
}

func TestRunRecurringNowSkipsInactivePlan(t *testing.T) {
	svc, store, processor, recorder := newTestService(t, successOutcome(), date(2025, time.June, 20))
	seedPlan(t, store, RecurringPlan{
		ID: "plan-1", TenantName: "Sarah Mitchell", Amount: decimal.NewFromInt(1850),
		Frequency: FreqMonthly, PaymentMethodID: "pm-1",
		NextRunDate: date(2025, time.June, 15), Status: PlanPaused,
	})

	res, err := svc.RunRecurringNow(context.Background(), "plan-1", "manager", "admin")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.Message, "paused")
	require.Empty(t, processor.charges)
	require.Empty(t, recorder.payments)
}

func TestRunAllDueRecurringChargesDuePlansInOrder(t *testing.T) {
	today := date(2025, time.June, 20)
	svc, store, _, _ := newTestService(t, successOutcome(), today)
	require.NoError(t, store.InsertMethod(context.Background(), PaymentMethod{ID: "pm-1", Type: MethodCard, Last4: "4242"}))

	plans := []RecurringPlan{
		{ID: "plan-c", TenantName: "C", Amount: decimal.NewFromInt(100), Frequency: FreqWeekly, PaymentMethodID: "pm-1", NextRunDate: today.AddDate(0, 0, -1), Status: PlanActive},
		{ID: "plan-a", TenantName: "A", Amount: decimal.NewFromInt(100), Frequency: FreqWeekly, PaymentMethodID: "pm-1", NextRunDate: today, Status: PlanActive},
		{ID: "plan-b", TenantName: "B", Amount: decimal.NewFromInt(100), Frequency: FreqWeekly, PaymentMethodID: "pm-1", NextRunDate: today.AddDate(0, 0, 5), Status: PlanActive},
		{ID: "plan-d", TenantName: "D", Amount: decimal.NewFromInt(100), Frequency: FreqWeekly, PaymentMethodID: "pm-1", NextRunDate: today, Status: PlanPaused},
	}
	for _, p := range plans {
		require.NoError(t, store.InsertPlan(context.Background(), p))
	}

	results, err := svc.RunAllDueRecurring(context.Background(), "scheduler", "system")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "plan-a", results[0].PlanID)
	require.Equal(t, "plan-c", results[1].PlanID)

	notDue, err := store.GetPlan(context.Background(), "plan-b")
	require.NoError(t, err)
	require.Empty(t, notDue.LastRunStatus)
}

func TestCancelDuringInFlightRunSkipsScheduleUpdate(t *testing.T) {
	today := date(2025, time.June, 20)
	due := date(2025, time.June, 15)
	svc, store, processor, recorder := newTestService(t, successOutcome(), today)
	seedPlan(t, store, RecurringPlan{
		ID: "plan-1", TenantName: "Sarah Mitchell", Amount: decimal.NewFromInt(1850),
		Frequency: FreqMonthly, PaymentMethodID: "pm-1",
		NextRunDate: due, Status: PlanActive,
	})
	processor.before = func() {
		_, err := svc.CancelRecurringPayment(context.Background(), "plan-1", "manager", "admin")
		require.NoError(t, err)
	}

	res, err := svc.RunRecurringNow(context.Background(), "plan-1", "manager", "admin")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.Message, "cancelled")

	// The attempt itself still leaves a payment record.
	require.Len(t, recorder.payments, 1)

	plan, err := store.GetPlan(context.Background(), "plan-1")
	require.NoError(t, err)
	require.Equal(t, PlanCancelled, plan.Status)
	require.True(t, plan.NextRunDate.Equal(due))
	require.Nil(t, plan.LastRunDate)
}

func TestCancelledPlanStatusIsTerminal(t *testing.T) {
	svc, store, _, _ := newTestService(t, successOutcome(), date(2025, time.June, 20))
	seedPlan(t, store, RecurringPlan{
		ID: "plan-1", TenantName: "Sarah Mitchell", Amount: decimal.NewFromInt(1850),
		Frequency: FreqMonthly, PaymentMethodID: "pm-1",
		NextRunDate: date(2025, time.July, 1), Status: PlanCancelled,
	})

	plan, err := svc.ResumeRecurringPlan(context.Background(), "plan-1", "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, PlanCancelled, plan.Status)

	plan, err = svc.PauseRecurringPlan(context.Background(), "plan-1", "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, PlanCancelled, plan.Status)
}

func TestAddPaymentMethodFirstBecomesDefault(t *testing.T) {
	svc, store, _, _ := newTestService(t, successOutcome(), date(2025, time.June, 20))

	first, err := svc.AddPaymentMethod(context.Background(), MethodCard, "4242", false, "manager", "admin")
	require.NoError(t, err)
	require.True(t, first.IsDefault, "first stored method is always the default")

	second, err := svc.AddPaymentMethod(context.Background(), MethodACH, "6789", false, "manager", "admin")
	require.NoError(t, err)
	require.False(t, second.IsDefault)

	require.NoError(t, svc.SetDefaultPaymentMethod(context.Background(), second.ID, "manager", "admin"))
	methods, err := store.ListMethods(context.Background())
	require.NoError(t, err)
	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
			require.Equal(t, second.ID, m.ID)
		}
	}
	require.Equal(t, 1, defaults)
}

func TestAddPaymentMethodValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t, successOutcome(), date(2025, time.June, 20))

	_, err := svc.AddPaymentMethod(context.Background(), MethodKind("crypto"), "4242", false, "manager", "admin")
	require.Error(t, err)

	_, err = svc.AddPaymentMethod(context.Background(), MethodCard, "42", false, "manager", "admin")
	require.Error(t, err)
}
