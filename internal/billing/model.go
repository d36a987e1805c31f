package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus tracks tenant invoice collection state.
type InvoiceStatus string

const (
	InvoiceOpen          InvoiceStatus = "Open"
	InvoicePartiallyPaid InvoiceStatus = "Partially Paid"
	InvoicePaid          InvoiceStatus = "Paid"
	InvoiceOverdue       InvoiceStatus = "Overdue"
)

// Invoice is a receivable charged to a tenant. Balance only decreases, via
// ApplyPayment.
type Invoice struct {
	ID       string          `json:"id"`
	Tenant   string          `json:"tenant"`
	Property string          `json:"property"`
	Total    decimal.Decimal `json:"total"`
	Balance  decimal.Decimal `json:"balance"`
	Status   InvoiceStatus   `json:"status"`
	DueDate  time.Time       `json:"due_date"`
}

// BillStatus tracks the vendor bill lifecycle: Pending -> Approved -> Paid.
type BillStatus string

const (
	BillPending  BillStatus = "Pending"
	BillApproved BillStatus = "Approved"
	BillPaid     BillStatus = "Paid"
)

// Bill is a payable owed to a vendor.
type Bill struct {
	ID       string          `json:"id"`
	Vendor   string          `json:"vendor"`
	Property string          `json:"property"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Balance  decimal.Decimal `json:"balance"`
	Status   BillStatus      `json:"status"`
	Is1099   bool            `json:"is_1099"`
}

// PaymentType classifies the money movement a payment record represents.
type PaymentType string

const (
	PaymentTenant          PaymentType = "Tenant"
	PaymentVendor          PaymentType = "Vendor"
	PaymentOwnerPayout     PaymentType = "Owner Payout"
	PaymentDepositMovement PaymentType = "Deposit Movement"
	PaymentRefund          PaymentType = "Refund"
)

// PayMethod is the instrument used for a payment.
type PayMethod string

const (
	MethodACH   PayMethod = "ACH"
	MethodCard  PayMethod = "Card"
	MethodCheck PayMethod = "Check"
	MethodWire  PayMethod = "Wire"
	MethodCash  PayMethod = "Cash"
)

// PaymentStatus is a node in the payment state machine:
//
//	Pending  -> Cleared | Failed | Voided
//	Cleared  -> Refunded | Voided
//	Failed, Refunded, Voided are terminal.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentCleared  PaymentStatus = "Cleared"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
	PaymentVoided   PaymentStatus = "Voided"
)

// Payment records one money movement. Reference links back to the entity that
// produced it (invoice, bill, deposit, plan or the refunded payment).
type Payment struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Type          PaymentType     `json:"type"`
	PayerPayee    string          `json:"payer_payee"`
	Property      string          `json:"property,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PayMethod       `json:"method"`
	Status        PaymentStatus   `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	LinkedEntries []string        `json:"linked_entries,omitempty"`
}

// CanRefund reports whether the payment may move to Refunded. Only cleared
// payments qualify, and a refund can never itself be refunded.
func (p Payment) CanRefund() bool {
	return p.Status == PaymentCleared && p.Type != PaymentRefund
}

// CanVoid reports whether the payment may move to Voided.
func (p Payment) CanVoid() bool {
	return p.Status == PaymentPending || p.Status == PaymentCleared
}

// CanSettle reports whether the payment may move to Cleared or Failed.
func (p Payment) CanSettle() bool {
	return p.Status == PaymentPending
}

// DepositStatus tracks a security deposit: Held -> Released.
type DepositStatus string

const (
	DepositHeld     DepositStatus = "Held"
	DepositReleased DepositStatus = "Released"
)

// SecurityDeposit is money held against a lease.
type SecurityDeposit struct {
	ID         string          `json:"id"`
	Tenant     string          `json:"tenant"`
	Property   string          `json:"property"`
	Unit       string          `json:"unit,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	MoveInDate time.Time       `json:"move_in_date"`
	Status     DepositStatus   `json:"status"`
}

// StatementStatus tracks the forward-only owner statement lifecycle:
// Draft -> Generated -> Sent.
type StatementStatus string

const (
	StatementDraft     StatementStatus = "Draft"
	StatementGenerated StatementStatus = "Generated"
	StatementSent      StatementStatus = "Sent"
)

// OwnerStatement summarises a property's period for its owner.
type OwnerStatement struct {
	ID            string          `json:"id"`
	Owner         string          `json:"owner"`
	Property      string          `json:"property"`
	Period        string          `json:"period"`
	GrossIncome   decimal.Decimal `json:"gross_income"`
	Expenses      decimal.Decimal `json:"expenses"`
	ManagementFee decimal.Decimal `json:"management_fee"`
	NetToOwner    decimal.Decimal `json:"net_to_owner"`
	Status        StatementStatus `json:"status"`
	PayoutDate    *time.Time      `json:"payout_date,omitempty"`
}
