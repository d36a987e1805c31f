package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger/internal/shared"
)

// AuditPort records structured compliance entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ActivityPort records human-readable feed entries.
type ActivityPort interface {
	Add(ctx context.Context, actor, category, msg string)
}

// Service owns every receivable/payable mutation. Each operation applies its
// primary state change, then records one audit entry and one activity entry;
// the secondary writes are best-effort and never fail the mutation.
type Service struct {
	repo     Repository
	audit    AuditPort
	activity ActivityPort
	now      func() time.Time
}

// NewService builds a billing Service.
func NewService(repo Repository, audit AuditPort, activity ActivityPort) *Service {
	return &Service{repo: repo, audit: audit, activity: activity, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) ListInvoices(ctx context.Context) ([]Invoice, error)       { return s.repo.ListInvoices(ctx) }
func (s *Service) ListBills(ctx context.Context) ([]Bill, error)             { return s.repo.ListBills(ctx) }
func (s *Service) ListPayments(ctx context.Context) ([]Payment, error)       { return s.repo.ListPayments(ctx) }
func (s *Service) ListDeposits(ctx context.Context) ([]SecurityDeposit, error) {
	return s.repo.ListDeposits(ctx)
}
func (s *Service) ListStatements(ctx context.Context) ([]OwnerStatement, error) {
	return s.repo.ListStatements(ctx)
}

// CreateInvoice adds an open invoice.
func (s *Service) CreateInvoice(ctx context.Context, inv Invoice, actor, role string) (Invoice, error) {
	if inv.Tenant == "" || !inv.Total.IsPositive() {
		return Invoice{}, fmt.Errorf("%w: invoice requires tenant and positive total", shared.ErrValidation)
	}
	if inv.ID == "" {
		inv.ID = "inv_" + uuid.NewString()
	}
	inv.Balance = inv.Total
	inv.Status = InvoiceOpen
	if err := s.repo.InsertInvoice(ctx, inv); err != nil {
		return Invoice{}, err
	}
	s.recordAudit(ctx, actor, role, "invoice.create", "invoice", inv.ID, nil, map[string]any{
		"tenant": inv.Tenant, "total": inv.Total.String(),
	})
	s.addActivity(ctx, actor, "billing", fmt.Sprintf("Created invoice %s for %s (%s)", inv.ID, inv.Tenant, shared.FormatUSD(inv.Total)))
	return inv, nil
}

// ApplyPayment collects against an invoice. Amount must be positive and no
// greater than the remaining balance; the resulting payment clears
// immediately since funds were taken in hand.
func (s *Service) ApplyPayment(ctx context.Context, invoiceID string, amount decimal.Decimal, method PayMethod, actor, role string) (Payment, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return Payment{}, err
	}
	if !amount.IsPositive() {
		return Payment{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	if amount.GreaterThan(inv.Balance) {
		return Payment{}, fmt.Errorf("%w: payment of %s exceeds invoice balance %s",
			shared.ErrValidation, amount.StringFixed(2), inv.Balance.StringFixed(2))
	}
	oldBalance := inv.Balance
	oldStatus := inv.Status
	inv.Balance = inv.Balance.Sub(amount)
	if inv.Balance.IsZero() {
		inv.Status = InvoicePaid
	} else {
		inv.Status = InvoicePartiallyPaid
	}
	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return Payment{}, err
	}
	pay := Payment{
		ID:         "pay_" + uuid.NewString(),
		Date:       s.now(),
		Type:       PaymentTenant,
		PayerPayee: inv.Tenant,
		Property:   inv.Property,
		Amount:     amount,
		Method:     method,
		Status:     PaymentCleared,
		Reference:  inv.ID,
	}
	if err := s.repo.InsertPayment(ctx, pay); err != nil {
		return Payment{}, err
	}
	s.recordAudit(ctx, actor, role, "invoice.apply_payment", "invoice", inv.ID,
		map[string]any{"balance": oldBalance.String(), "status": string(oldStatus)},
		map[string]any{"balance": inv.Balance.String(), "status": string(inv.Status)})
	s.addActivity(ctx, actor, "billing", fmt.Sprintf("Collected %s from %s on invoice %s", shared.FormatUSD(amount), inv.Tenant, inv.ID))
	return pay, nil
}

// RefreshOverdue flags open invoices past their due date. Returns how many
// invoices changed status.
func (s *Service) RefreshOverdue(ctx context.Context, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, inv := range invoices {
		if inv.Status != InvoiceOpen && inv.Status != InvoicePartiallyPaid {
			continue
		}
		if !inv.DueDate.Before(asOf) {
			continue
		}
		old := inv.Status
		inv.Status = InvoiceOverdue
		if err := s.repo.SaveInvoice(ctx, inv); err != nil {
			return changed, err
		}
		s.recordAudit(ctx, "system", "system", "invoice.overdue", "invoice", inv.ID,
			map[string]any{"status": string(old)},
			map[string]any{"status": string(InvoiceOverdue)})
		changed++
	}
	return changed, nil
}

// CreateBill adds a pending vendor bill.
func (s *Service) CreateBill(ctx context.Context, bill Bill, actor, role string) (Bill, error) {
	if bill.Vendor == "" || !bill.Total.IsPositive() {
		return Bill{}, fmt.Errorf("%w: bill requires vendor and positive total", shared.ErrValidation)
	}
	if bill.ID == "" {
		bill.ID = "bill_" + uuid.NewString()
	}
	bill.Balance = bill.Total
	bill.Status = BillPending
	if err := s.repo.InsertBill(ctx, bill); err != nil {
		return Bill{}, err
	}
	s.recordAudit(ctx, actor, role, "bill.create", "bill", bill.ID, nil, map[string]any{
		"vendor": bill.Vendor, "total": bill.Total.String(),
	})
	s.addActivity(ctx, actor, "billing", fmt.Sprintf("Entered bill %s from %s (%s)", bill.ID, bill.Vendor, shared.FormatUSD(bill.Total)))
	return bill, nil
}

// ApproveBill moves a pending bill to approved.
func (s *Service) ApproveBill(ctx context.Context, billID, actor, role string) (Bill, error) {
	bill, err := s.repo.GetBill(ctx, billID)
	if err != nil {
		return Bill{}, err
	}
	if bill.Status != BillPending {
		return Bill{}, fmt.Errorf("%w: bill %s is %s", shared.ErrInvalidStatus, bill.ID, bill.Status)
	}
	bill.Status = BillApproved
	if err := s.repo.SaveBill(ctx, bill); err != nil {
		return Bill{}, err
	}
	s.recordAudit(ctx, actor, role, "bill.approve", "bill", bill.ID,
		map[string]any{"status": string(BillPending)},
		map[string]any{"status": string(BillApproved)})
	s.addActivity(ctx, actor, "billing", fmt.Sprintf("Approved bill %s from %s", bill.ID, bill.Vendor))
	return bill, nil
}

// PayBill settles an approved bill in full. Partial bill payments are not
// supported; the bill zeroes out and a pending vendor payment is emitted.
func (s *Service) PayBill(ctx context.Context, billID string, method PayMethod, actor, role string) (Payment, error) {
	bill, err := s.repo.GetBill(ctx, billID)
	if err != nil {
		return Payment{}, err
	}
	if bill.Status != BillApproved {
		return Payment{}, fmt.Errorf("%w: bill %s is %s, only approved bills can be paid", shared.ErrInvalidStatus, bill.ID, bill.Status)
	}
	oldBalance := bill.Balance
	bill.Balance = decimal.Zero
	bill.Status = BillPaid
	if err := s.repo.SaveBill(ctx, bill); err != nil {
		return Payment{}, err
	}
	pay := Payment{
		ID:         "pay_" + uuid.NewString(),
		Date:       s.now(),
		Type:       PaymentVendor,
		PayerPayee: bill.Vendor,
		Property:   bill.Property,
		Amount:     oldBalance,
		Method:     method,
		Status:     PaymentPending,
		Reference:  bill.ID,
	}
	if err := s.repo.InsertPayment(ctx, pay); err != nil {
		return Payment{}, err
	}
	s.recordAudit(ctx, actor, role, "bill.pay", "bill", bill.ID,
		map[string]any{"balance": oldBalance.String(), "status": string(BillApproved)},
		map[string]any{"balance": "0", "status": string(BillPaid)})
	s.addActivity(ctx, actor, "billing", fmt.Sprintf("Paid bill %s to %s (%s)", bill.ID, bill.Vendor, shared.FormatUSD(oldBalance)))
	return pay, nil
}

// CreateDeposit records a held security deposit.
func (s *Service) CreateDeposit(ctx context.Context, dep SecurityDeposit, actor, role string) (SecurityDeposit, error) {
	if dep.Tenant == "" || !dep.Amount.IsPositive() {
		return SecurityDeposit{}, fmt.Errorf("%w: deposit requires tenant and positive amount", shared.ErrValidation)
	}
	if dep.ID == "" {
		dep.ID = "dep_" + uuid.NewString()
	}
	dep.Status = DepositHeld
	if err := s.repo.InsertDeposit(ctx, dep); err != nil {
		return SecurityDeposit{}, err
	}
	s.recordAudit(ctx, actor, role, "deposit.create", "deposit", dep.ID, nil, map[string]any{
		"tenant": dep.Tenant, "amount": dep.Amount.String(),
	})
	s.addActivity(ctx, actor, "billing", fmt.Sprintf("Holding deposit %s for %s (%s)", dep.ID, dep.Tenant, shared.FormatUSD(dep.Amount)))
	return dep, nil
}

// ReleaseDeposit closes out a held deposit. Deductions must not exceed the
// deposit amount; any remainder goes back to the tenant as a pending refund
// payment. A zero remainder emits no payment.
func (s *Service) ReleaseDeposit(ctx context.Context, depositID string, deductions []decimal.Decimal, actor, role string) (*Payment, error) {
	dep, err := s.repo.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if dep.Status != DepositHeld {
		return nil, fmt.Errorf("%w: deposit %s already released", shared.ErrInvalidStatus, dep.ID)
	}
	var deducted decimal.Decimal
	for _, d := range deductions {
		if d.IsNegative() {
			return nil, fmt.Errorf("%w: deductions cannot be negative", shared.ErrValidation)
		}
		deducted = deducted.Add(d)
	}
	if deducted.GreaterThan(dep.Amount) {
		return nil, fmt.Errorf("%w: deductions of %s exceed deposit of %s",
			shared.ErrValidation, deducted.StringFixed(2), dep.Amount.StringFixed(2))
	}
	refund := dep.Amount.Sub(deducted)
	dep.Status = DepositReleased
	if err := s.repo.SaveDeposit(ctx, dep); err != nil {
		return nil, err
	}
	var pay *Payment
	if refund.IsPositive() {
		p := Payment{
			ID:         "pay_" + uuid.NewString(),
			Date:       s.now(),
			Type:       PaymentRefund,
			PayerPayee: dep.Tenant,
			Property:   dep.Property,
			Amount:     refund.Neg(),
			Method:     MethodCheck,
			Status:     PaymentPending,
			Reference:  dep.ID,
		}
		if err := s.repo.InsertPayment(ctx, p); err != nil {
			return nil, err
		}
		pay = &p
	}
	s.recordAudit(ctx, actor, role, "deposit.release", "deposit", dep.ID,
		map[string]any{"status": string(DepositHeld)},
		map[string]any{"status": string(DepositReleased), "deductions": deducted.String(), "refund": refund.String()})
	s.addActivity(ctx, actor, "billing", fmt.Sprintf("Released deposit %s, refunding %s to %s", dep.ID, shared.FormatUSD(refund), dep.Tenant))
	return pay, nil
}

// CreateStatement adds a draft owner statement.
func (s *Service) CreateStatement(ctx context.Context, st OwnerStatement, actor, role string) (OwnerStatement, error) {
	if st.Owner == "" || st.Period == "" {
		return OwnerStatement{}, fmt.Errorf("%w: statement requires owner and period", shared.ErrValidation)
	}
	if st.ID == "" {
		st.ID = "stmt_" + uuid.NewString()
	}
	st.Status = StatementDraft
	if err := s.repo.InsertStatement(ctx, st); err != nil {
		return OwnerStatement{}, err
	}
	s.recordAudit(ctx, actor, role, "statement.create", "statement", st.ID, nil, map[string]any{
		"owner": st.Owner, "period": st.Period,
	})
	return st, nil
}

// GenerateStatement computes the net figure and moves Draft to Generated.
// The lifecycle is forward-only.
func (s *Service) GenerateStatement(ctx context.Context, id, actor, role string) (OwnerStatement, error) {
	st, err := s.repo.GetStatement(ctx, id)
	if err != nil {
		return OwnerStatement{}, err
	}
	if st.Status != StatementDraft {
		return OwnerStatement{}, fmt.Errorf("%w: statement %s is %s", shared.ErrInvalidStatus, st.ID, st.Status)
	}
	st.NetToOwner = st.GrossIncome.Sub(st.Expenses).Sub(st.ManagementFee)
	st.Status = StatementGenerated
	if err := s.repo.SaveStatement(ctx, st); err != nil {
		return OwnerStatement{}, err
	}
	s.recordAudit(ctx, actor, role, "statement.generate", "statement", st.ID,
		map[string]any{"status": string(StatementDraft)},
		map[string]any{"status": string(StatementGenerated), "net_to_owner": st.NetToOwner.String()})
	s.addActivity(ctx, actor, "statements", fmt.Sprintf("Generated statement %s for %s (%s net)", st.ID, st.Owner, shared.FormatUSD(st.NetToOwner)))
	return st, nil
}

// SendStatement moves Generated to Sent and stamps the payout date. Sending
// straight from Draft is rejected.
func (s *Service) SendStatement(ctx context.Context, id, actor, role string) (OwnerStatement, error) {
	st, err := s.repo.GetStatement(ctx, id)
	if err != nil {
		return OwnerStatement{}, err
	}
	if st.Status != StatementGenerated {
		return OwnerStatement{}, fmt.Errorf("%w: statement %s is %s, generate it first", shared.ErrInvalidStatus, st.ID, st.Status)
	}
	st.Status = StatementSent
	payout := s.now()
	st.PayoutDate = &payout
	if err := s.repo.SaveStatement(ctx, st); err != nil {
		return OwnerStatement{}, err
	}
	s.recordAudit(ctx, actor, role, "statement.send", "statement", st.ID,
		map[string]any{"status": string(StatementGenerated)},
		map[string]any{"status": string(StatementSent)})
	s.addActivity(ctx, actor, "statements", fmt.Sprintf("Sent statement %s to %s", st.ID, st.Owner))
	return st, nil
}

// RecordPayment appends an externally produced payment record, used by the
// recurring scheduler to log gateway attempts.
func (s *Service) RecordPayment(ctx context.Context, pay Payment) (Payment, error) {
	if pay.ID == "" {
		pay.ID = "pay_" + uuid.NewString()
	}
	if pay.Date.IsZero() {
		pay.Date = s.now()
	}
	if err := s.repo.InsertPayment(ctx, pay); err != nil {
		return Payment{}, err
	}
	return pay, nil
}

// RefundPayment moves a cleared payment to Refunded and emits an offsetting
// pending refund record. Refund-type payments themselves can never be
// refunded, and pending payments can only be voided or left to clear.
func (s *Service) RefundPayment(ctx context.Context, paymentID, actor, role string) (Payment, error) {
	pay, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	if !pay.CanRefund() {
		return Payment{}, fmt.Errorf("%w: %s payment %s cannot be refunded", shared.ErrInvalidStatus, pay.Status, pay.ID)
	}
	old := pay.Status
	pay.Status = PaymentRefunded
	if err := s.repo.SavePayment(ctx, pay); err != nil {
		return Payment{}, err
	}
	offset := Payment{
		ID:         "pay_" + uuid.NewString(),
		Date:       s.now(),
		Type:       PaymentRefund,
		PayerPayee: pay.PayerPayee,
		Property:   pay.Property,
		Amount:     pay.Amount.Neg(),
		Method:     pay.Method,
		Status:     PaymentPending,
		Reference:  pay.ID,
	}
	if err := s.repo.InsertPayment(ctx, offset); err != nil {
		return Payment{}, err
	}
	pay.LinkedEntries = append(pay.LinkedEntries, offset.ID)
	if err := s.repo.SavePayment(ctx, pay); err != nil {
		return Payment{}, err
	}
	s.recordAudit(ctx, actor, role, "payment.refund", "payment", pay.ID,
		map[string]any{"status": string(old)},
		map[string]any{"status": string(PaymentRefunded), "refund_payment": offset.ID})
	s.addActivity(ctx, actor, "payments", fmt.Sprintf("Refunded %s to %s", shared.FormatUSD(pay.Amount), pay.PayerPayee))
	return pay, nil
}

// VoidPayment cancels a pending or cleared payment.
func (s *Service) VoidPayment(ctx context.Context, paymentID, actor, role string) (Payment, error) {
	pay, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	if !pay.CanVoid() {
		return Payment{}, fmt.Errorf("%w: %s payment %s cannot be voided", shared.ErrInvalidStatus, pay.Status, pay.ID)
	}
	old := pay.Status
	pay.Status = PaymentVoided
	if err := s.repo.SavePayment(ctx, pay); err != nil {
		return Payment{}, err
	}
	s.recordAudit(ctx, actor, role, "payment.void", "payment", pay.ID,
		map[string]any{"status": string(old)},
		map[string]any{"status": string(PaymentVoided)})
	s.addActivity(ctx, actor, "payments", fmt.Sprintf("Voided payment %s (%s)", pay.ID, shared.FormatUSD(pay.Amount)))
	return pay, nil
}

// ClearAllPendingACH bulk-settles pending ACH payments, simulating the
// end-of-day settlement batch. Returns how many payments cleared.
func (s *Service) ClearAllPendingACH(ctx context.Context, actor, role string) (int, error) {
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, pay := range payments {
		if pay.Method != MethodACH || pay.Status != PaymentPending {
			continue
		}
		pay.Status = PaymentCleared
		if err := s.repo.SavePayment(ctx, pay); err != nil {
			return cleared, err
		}
		s.recordAudit(ctx, actor, role, "payment.settle", "payment", pay.ID,
			map[string]any{"status": string(PaymentPending)},
			map[string]any{"status": string(PaymentCleared)})
		cleared++
	}
	if cleared > 0 {
		s.addActivity(ctx, actor, "payments", fmt.Sprintf("Settled %d pending ACH payments", cleared))
	}
	return cleared, nil
}

func (s *Service) recordAudit(ctx context.Context, actor, role, action, entity, entityID string, old, new map[string]any) {
	if s.audit == nil {
		return
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
