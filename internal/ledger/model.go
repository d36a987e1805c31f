package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a general ledger account.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
)

// NormalBalance is the side on which an account naturally increases.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "Debit"
	NormalCredit NormalBalance = "Credit"
)

// AccountStatus marks whether an account accepts postings.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

// Account is one row in the chart of accounts. System accounts are seeded by
// the application and reject edits.
type Account struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Type          AccountType     `json:"type"`
	NormalBalance NormalBalance   `json:"normal_balance"`
	Balance       decimal.Decimal `json:"balance"`
	ParentID      *int64          `json:"parent_id,omitempty"`
	Status        AccountStatus   `json:"status"`
	System        bool            `json:"system"`
}

// Transaction is one journal line. Lines sharing a Ref form one journal entry
// and always balance; PostJournalEntry enforces this before writing any line.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Ref         string          `json:"ref"`
	AccountID   int64           `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Property    string          `json:"property,omitempty"`
	CreatedBy   string          `json:"created_by"`
}

// ValidType reports whether t is a known account type.
func ValidType(t AccountType) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DefaultNormalBalance returns the conventional normal balance for a type.
func DefaultNormalBalance(t AccountType) NormalBalance {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalDebit
	default:
		return NormalCredit
	}
}

// BalanceDelta applies the normal-balance sign convention to a posted line.
func BalanceDelta(nb NormalBalance, debit, credit decimal.Decimal) decimal.Decimal {
	if nb == NormalDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
