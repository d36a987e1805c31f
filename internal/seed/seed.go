// Package seed loads demo fixtures so a fresh process has data to explore.
package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger/internal/automation"
	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/ledger"
	"github.com/rentledger/rentledger/internal/recurring"
)

// Stores collects the in-memory stores the demo fixtures populate.
type Stores struct {
	Ledger     *ledger.Store
	Billing    *billing.Store
	Recurring  *recurring.Store
	Automation *automation.Store
}

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Demo inserts the standard demo data set: a chart of accounts, open
// receivables and payables, a held deposit, an owner statement draft,
// stored payment methods, recurring plans and one active drip sequence.
func Demo(ctx context.Context, s Stores) error {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if s.Ledger != nil {
		accounts := []ledger.Account{
			{ID: 1000, Name: "Operating Cash", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalDebit, Balance: usd("45250.00"), Status: ledger.AccountActive, System: true},
			{ID: 1100, Name: "Accounts Receivable", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalDebit, Balance: usd("7350.00"), Status: ledger.AccountActive, System: true},
			{ID: 2000, Name: "Accounts Payable", Type: ledger.AccountTypeLiability, NormalBalance: ledger.NormalCredit, Balance: usd("2840.00"), Status: ledger.AccountActive, System: true},
			{ID: 2100, Name: "Security Deposits Held", Type: ledger.AccountTypeLiability, NormalBalance: ledger.NormalCredit, Balance: usd("6200.00"), Status: ledger.AccountActive, System: true},
			{ID: 3000, Name: "Owner Equity", Type: ledger.AccountTypeEquity, NormalBalance: ledger.NormalCredit, Balance: usd("43560.00"), Status: ledger.AccountActive, System: true},
			{ID: 4000, Name: "Rental Income", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalCredit, Balance: usd("18400.00"), Status: ledger.AccountActive, System: true},
			{ID: 5000, Name: "Repairs & Maintenance", Type: ledger.AccountTypeExpense, NormalBalance: ledger.NormalDebit, Balance: usd("1430.00"), Status: ledger.AccountActive},
			{ID: 5100, Name: "Management Fees", Type: ledger.AccountTypeExpense, NormalBalance: ledger.NormalDebit, Balance: usd("920.00"), Status: ledger.AccountActive},
		}
		for _, acct := range accounts {
			if _, err := s.Ledger.InsertAccount(ctx, acct); err != nil {
				return err
			}
		}
	}

	if s.Billing != nil {
		invoices := []billing.Invoice{
			{ID: "INV-1001", Tenant: "Sarah Mitchell", Property: "Maple Court 2B", Total: usd("1850.00"), Balance: usd("1850.00"), Status: billing.InvoiceOpen, DueDate: today.AddDate(0, 0, 5)},
			{ID: "INV-1002", Tenant: "James Okafor", Property: "Harbor View 14", Total: usd("2400.00"), Balance: usd("1200.00"), Status: billing.InvoicePartiallyPaid, DueDate: today.AddDate(0, 0, 10)},
			{ID: "INV-1003", Tenant: "Dana Reyes", Property: "Elm Street 3A", Total: usd("1600.00"), Balance: usd("1600.00"), Status: billing.InvoiceOverdue, DueDate: today.AddDate(0, 0, -12)},
		}
		for _, inv := range invoices {
			if err := s.Billing.InsertInvoice(ctx, inv); err != nil {
				return err
			}
		}

		bills := []billing.Bill{
			{ID: "BILL-2001", Vendor: "Apex Plumbing", Property: "Maple Court 2B", Category: "Repairs", Total: usd("640.00"), Balance: usd("640.00"), Status: billing.BillPending, Is1099: true},
			{ID: "BILL-2002", Vendor: "Greenway Landscaping", Property: "Harbor View 14", Category: "Grounds", Total: usd("320.00"), Balance: usd("320.00"), Status: billing.BillApproved, Is1099: true},
			{ID: "BILL-2003", Vendor: "City Utilities", Property: "Elm Street 3A", Category: "Utilities", Total: usd("185.00"), Balance: usd("185.00"), Status: billing.BillPending},
		}
		for _, bill := range bills {
			if err := s.Billing.InsertBill(ctx, bill); err != nil {
				return err
			}
		}

		deposits := []billing.SecurityDeposit{
			{ID: "DEP-3001", Tenant: "Sarah Mitchell", Property: "Maple Court", Unit: "2B", Amount: usd("1850.00"), MoveInDate: today.AddDate(-1, -2, 0), Status: billing.DepositHeld},
			{ID: "DEP-3002", Tenant: "James Okafor", Property: "Harbor View", Unit: "14", Amount: usd("2400.00"), MoveInDate: today.AddDate(0, -8, 0), Status: billing.DepositHeld},
		}
		for _, dep := range deposits {
			if err := s.Billing.InsertDeposit(ctx, dep); err != nil {
				return err
			}
		}

		statements := []billing.OwnerStatement{
			{ID: "STMT-4001", Owner: "Hollis Properties LLC", Property: "Maple Court", Period: today.AddDate(0, -1, 0).Format("2006-01"), Status: billing.StatementDraft},
		}
		for _, st := range statements {
			if err := s.Billing.InsertStatement(ctx, st); err != nil {
				return err
			}
		}
	}

	if s.Recurring != nil {
		methods := []recurring.PaymentMethod{
			{ID: "pm-visa-4242", Type: recurring.MethodCard, Last4: "4242", IsDefault: true},
			{ID: "pm-chase-6789", Type: recurring.MethodACH, Last4: "6789"},
		}
		for _, m := range methods {
			if err := s.Recurring.InsertMethod(ctx, m); err != nil {
				return err
			}
		}

		plans := []recurring.RecurringPlan{
			{ID: "plan-001", TenantName: "Sarah Mitchell", Property: "Maple Court", Unit: "2B", Amount: usd("1850.00"), Frequency: recurring.FreqMonthly, PaymentMethodID: "pm-visa-4242", NextRunDate: today, Status: recurring.PlanActive},
			{ID: "plan-002", TenantName: "James Okafor", Property: "Harbor View", Unit: "14", Amount: usd("2400.00"), Frequency: recurring.FreqMonthly, PaymentMethodID: "pm-chase-6789", NextRunDate: today.AddDate(0, 0, 9), Status: recurring.PlanActive},
			{ID: "plan-003", TenantName: "Dana Reyes", Property: "Elm Street", Unit: "3A", Amount: usd("400.00"), Frequency: recurring.FreqWeekly, PaymentMethodID: "pm-visa-4242", NextRunDate: today.AddDate(0, 0, -2), Status: recurring.PlanPaused},
		}
		for _, plan := range plans {
			if err := s.Recurring.InsertPlan(ctx, plan); err != nil {
				return err
			}
		}
	}

	if s.Automation != nil {
		drip := automation.Automation{
			ID:            "auto-lease-renewal",
			Name:          "Lease Renewal Outreach",
			Status:        automation.StatusActive,
			TriggerType:   "manual",
			CooldownHours: 72,
			Steps: []automation.Step{
				{ID: "step-1", Order: 0, Name: "Renewal notice email", Kind: automation.StepEmail},
				{ID: "step-2", Order: 1, Name: "Follow-up text", Kind: automation.StepSMS},
				{ID: "step-3", Order: 2, Name: "Schedule walkthrough", Kind: automation.StepTask},
			},
		}
		if err := s.Automation.InsertAutomation(ctx, drip); err != nil {
			return err
		}
	}

	return nil
}
