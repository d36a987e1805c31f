package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger/internal/shared"
)

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(t *testing.T) (*Service, *Store, *shared.AuditTrail) {
	t.Helper()
	store := NewStore()
	trail := shared.NewAuditTrail()
	svc := NewService(store, trail, nil)
	svc.WithNow(func() time.Time {
		return time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)
	})
	return svc, store, trail
}

func TestApplyPaymentReducesBalance(t *testing.T) {
	svc, store, trail := newTestService(t)
	require.NoError(t, store.InsertInvoice(context.Background(), Invoice{
		ID: "INV-1", Tenant: "Sarah Mitchell", Total: usd("1850.00"), Balance: usd("1850.00"), Status: InvoiceOpen,
	}))

	pay, err := svc.ApplyPayment(context.Background(), "INV-1", usd("850.00"), MethodCard, "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, PaymentCleared, pay.Status)
	require.Equal(t, PaymentTenant, pay.Type)

	inv, err := store.GetInvoice(context.Background(), "INV-1")
	require.NoError(t, err)
	require.True(t, inv.Balance.Equal(usd("1000.00")))
	require.Equal(t, InvoicePartiallyPaid, inv.Status)

	logs, err := trail.List(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "invoice.apply_payment", logs[0].Action)
}

func TestApplyPaymentFullBalanceMarksPaid(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertInvoice(context.Background(), Invoice{
		ID: "INV-1", Tenant: "Sarah Mitchell", Total: usd("1850.00"), Balance: usd("1850.00"), Status: InvoiceOpen,
	}))

	_, err := svc.ApplyPayment(context.Background(), "INV-1", usd("1850.00"), MethodACH, "manager", "admin")
	require.NoError(t, err)

	inv, err := store.GetInvoice(context.Background(), "INV-1")
	require.NoError(t, err)
	require.True(t, inv.Balance.IsZero())
	require.Equal(t, InvoicePaid, inv.Status)
}

func TestApplyPaymentRejectsOverpayment(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertInvoice(context.Background(), Invoice{
		ID: "INV-1", Tenant: "Sarah Mitchell", Total: usd("1850.00"), Balance: usd("500.00"), Status: InvoicePartiallyPaid,
	}))

	_, err := svc.ApplyPayment(context.Background(), "INV-1", usd("500.01"), MethodCard, "manager", "admin")
	require.ErrorIs(t, err, shared.ErrValidation)

	inv, err := store.GetInvoice(context.Background(), "INV-1")
	require.NoError(t, err)
	require.True(t, inv.Balance.Equal(usd("500.00")), "rejected payment must not change the invoice")

	payments, err := store.ListPayments(context.Background())
	require.NoError(t, err)
	require.Empty(t, payments)
}

func TestRefreshOverdueFlagsPastDueInvoices(t *testing.T) {
	svc, store, _ := newTestService(t)
	asOf := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertInvoice(context.Background(), Invoice{
		ID: "INV-late", Tenant: "A", Total: usd("100"), Balance: usd("100"), Status: InvoiceOpen, DueDate: asOf.AddDate(0, 0, -3),
	}))
	require.NoError(t, store.InsertInvoice(context.Background(), Invoice{
		ID: "INV-ok", Tenant: "B", Total: usd("100"), Balance: usd("100"), Status: InvoiceOpen, DueDate: asOf.AddDate(0, 0, 3),
	}))
	require.NoError(t, store.InsertInvoice(context.Background(), Invoice{
		ID: "INV-paid", Tenant: "C", Total: usd("100"), Balance: usd("0"), Status: InvoicePaid, DueDate: asOf.AddDate(0, 0, -3),
	}))

	changed, err := svc.RefreshOverdue(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	late, err := store.GetInvoice(context.Background(), "INV-late")
	require.NoError(t, err)
	require.Equal(t, InvoiceOverdue, late.Status)

	paid, err := store.GetInvoice(context.Background(), "INV-paid")
	require.NoError(t, err)
	require.Equal(t, InvoicePaid, paid.Status)
}

func TestBillLifecycle(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertBill(context.Background(), Bill{
		ID: "BILL-1", Vendor: "Apex Plumbing", Total: usd("640.00"), Balance: usd("640.00"), Status: BillPending,
	}))

	// Paying an unapproved bill is rejected.
	_, err := svc.PayBill(context.Background(), "BILL-1", MethodACH, "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	bill, err := svc.ApproveBill(context.Background(), "BILL-1", "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, BillApproved, bill.Status)

	// Approving twice is rejected.
	_, err = svc.ApproveBill(context.Background(), "BILL-1", "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	pay, err := svc.PayBill(context.Background(), "BILL-1", MethodACH, "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, PaymentPending, pay.Status, "vendor ACH payments settle later")
	require.Equal(t, PaymentVendor, pay.Type)
	require.True(t, pay.Amount.Equal(usd("640.00")))

	bill, err = store.GetBill(context.Background(), "BILL-1")
	require.NoError(t, err)
	require.Equal(t, BillPaid, bill.Status)
	require.True(t, bill.Balance.IsZero())
}

func TestReleaseDepositRefundsRemainder(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertDeposit(context.Background(), SecurityDeposit{
		ID: "DEP-1", Tenant: "Sarah Mitchell", Amount: usd("2000.00"), Status: DepositHeld,
	}))

	pay, err := svc.ReleaseDeposit(context.Background(), "DEP-1", []decimal.Decimal{usd("500.00"), usd("300.00")}, "manager", "admin")
	require.NoError(t, err)
	require.NotNil(t, pay)
	require.Equal(t, PaymentRefund, pay.Type)
	require.Equal(t, PaymentPending, pay.Status)
	require.Equal(t, MethodCheck, pay.Method)
	require.True(t, pay.Amount.Equal(usd("-1200.00")), "refund payments carry a negative amount")

	dep, err := store.GetDeposit(context.Background(), "DEP-1")
	require.NoError(t, err)
	require.Equal(t, DepositReleased, dep.Status)
}

func TestReleaseDepositFullDeductionEmitsNoPayment(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertDeposit(context.Background(), SecurityDeposit{
		ID: "DEP-1", Tenant: "Sarah Mitchell", Amount: usd("2000.00"), Status: DepositHeld,
	}))

	pay, err := svc.ReleaseDeposit(context.Background(), "DEP-1", []decimal.Decimal{usd("2000.00")}, "manager", "admin")
	require.NoError(t, err)
	require.Nil(t, pay)

	payments, err := store.ListPayments(context.Background())
	require.NoError(t, err)
	require.Empty(t, payments)
}

func TestReleaseDepositRejectsOverDeduction(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertDeposit(context.Background(), SecurityDeposit{
		ID: "DEP-1", Tenant: "Sarah Mitchell", Amount: usd("2000.00"), Status: DepositHeld,
	}))

	_, err := svc.ReleaseDeposit(context.Background(), "DEP-1", []decimal.Decimal{usd("1500.00"), usd("600.00")}, "manager", "admin")
	require.ErrorIs(t, err, shared.ErrValidation)

	dep, err := store.GetDeposit(context.Background(), "DEP-1")
	require.NoError(t, err)
	require.Equal(t, DepositHeld, dep.Status, "rejected release must not change the deposit")
}

func TestStatementLifecycleIsForwardOnly(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertStatement(context.Background(), OwnerStatement{
		ID: "STMT-1", Owner: "Hollis Properties LLC", Period: "2025-05",
		GrossIncome: usd("4250.00"), Expenses: usd("960.00"), ManagementFee: usd("340.00"),
		Status: StatementDraft,
	}))

	// Sending a draft is rejected.
	_, err := svc.SendStatement(context.Background(), "STMT-1", "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	st, err := svc.GenerateStatement(context.Background(), "STMT-1", "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, StatementGenerated, st.Status)
	require.True(t, st.NetToOwner.Equal(usd("2950.00")))

	_, err = svc.GenerateStatement(context.Background(), "STMT-1", "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	st, err = svc.SendStatement(context.Background(), "STMT-1", "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, StatementSent, st.Status)
	require.NotNil(t, st.PayoutDate)
}

func TestRefundPaymentEmitsOffsettingRecord(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-1", Type: PaymentTenant, PayerPayee: "Sarah Mitchell",
		Amount: usd("1850.00"), Method: MethodCard, Status: PaymentCleared,
	}))

	pay, err := svc.RefundPayment(context.Background(), "pay-1", "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, PaymentRefunded, pay.Status)
	require.Len(t, pay.LinkedEntries, 1)

	offset, err := store.GetPayment(context.Background(), pay.LinkedEntries[0])
	require.NoError(t, err)
	require.Equal(t, PaymentRefund, offset.Type)
	require.Equal(t, PaymentPending, offset.Status)
	require.True(t, offset.Amount.Equal(usd("-1850.00")))
	require.Equal(t, "pay-1", offset.Reference)
}

// flakySaveRepo fails SavePayment after the first N calls succeed.
type flakySaveRepo struct {
	Repository
	saves     int
	failAfter int
}

func (f *flakySaveRepo) SavePayment(ctx context.Context, pay Payment) error {
	f.saves++
	if f.saves > f.failAfter {
		return errors.New("save rejected")
	}
	return f.Repository.SavePayment(ctx, pay)
}

func TestRefundPaymentSurfacesLinkSaveFailure(t *testing.T) {
	store := NewStore()
	repo := &flakySaveRepo{Repository: store, failAfter: 1}
	svc := NewService(repo, shared.NewAuditTrail(), nil)
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-1", Type: PaymentTenant, Amount: usd("1850.00"), Method: MethodCard, Status: PaymentCleared,
	}))

	_, err := svc.RefundPayment(context.Background(), "pay-1", "manager", "admin")
	require.Error(t, err, "a refund whose link could not be persisted must not report success")
	require.Equal(t, 2, repo.saves)
}

func TestRefundPaymentGuards(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-pending", Type: PaymentTenant, Amount: usd("100"), Method: MethodACH, Status: PaymentPending,
	}))
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-refund", Type: PaymentRefund, Amount: usd("-100"), Method: MethodCheck, Status: PaymentCleared,
	}))

	_, err := svc.RefundPayment(context.Background(), "pay-pending", "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus, "pending payments cannot be refunded")

	_, err = svc.RefundPayment(context.Background(), "pay-refund", "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus, "refunds cannot be refunded")
}

func TestVoidPaymentGuards(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-1", Type: PaymentTenant, Amount: usd("100"), Method: MethodCard, Status: PaymentPending,
	}))

	pay, err := svc.VoidPayment(context.Background(), "pay-1", "manager", "admin")
	require.NoError(t, err)
	require.Equal(t, PaymentVoided, pay.Status)

	// Terminal states stay terminal.
	_, err = svc.VoidPayment(context.Background(), "pay-1", "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
	_, err = svc.RefundPayment(context.Background(), "pay-1", "manager", "admin")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestClearAllPendingACH(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-ach-1", Type: PaymentTenant, Amount: usd("100"), Method: MethodACH, Status: PaymentPending,
	}))
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-ach-2", Type: PaymentVendor, Amount: usd("200"), Method: MethodACH, Status: PaymentPending,
	}))
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-card", Type: PaymentTenant, Amount: usd("300"), Method: MethodCard, Status: PaymentPending,
	}))
	require.NoError(t, store.InsertPayment(context.Background(), Payment{
		ID: "pay-voided", Type: PaymentTenant, Amount: usd("400"), Method: MethodACH, Status: PaymentVoided,
	}))

	cleared, err := svc.ClearAllPendingACH(context.Background(), "scheduler", "system")
	require.NoError(t, err)
	require.Equal(t, 2, cleared)

	for _, id := range []string{"pay-ach-1", "pay-ach-2"} {
		pay, err := store.GetPayment(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, PaymentCleared, pay.Status)
	}
	card, err := store.GetPayment(context.Background(), "pay-card")
	require.NoError(t, err)
	require.Equal(t, PaymentPending, card.Status)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateInvoice(context.Background(), Invoice{Tenant: "", Total: usd("100")}, "manager", "admin")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.CreateInvoice(context.Background(), Invoice{Tenant: "A", Total: usd("0")}, "manager", "admin")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetMissingRecordsReturnNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ApplyPayment(context.Background(), "missing", usd("100"), MethodCard, "manager", "admin")
	require.True(t, errors.Is(err, shared.ErrNotFound))
}
