package ledger

import (
	"context"
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

func seedAccount(t *testing.T, store *Store, acct Account) {
	t.Helper()
	_, err := store.InsertAccount(context.Background(), acct)
	require.NoError(t, err)
}

func TestCreateAccountAssignsSpacedIDs(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name: "Operating Cash", Type: AccountTypeAsset, Actor: "manager",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1000), first.ID)
	require.Equal(t, NormalDebit, first.NormalBalance)

	second, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name: "Rental Income", Type: AccountTypeRevenue, Actor: "manager",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1100), second.ID)
	require.Equal(t, NormalCredit, second.NormalBalance)
}

func TestCreateAccountParentMustShareType(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedAccount(t, store, Account{ID: 1000, Name: "Assets", Type: AccountTypeAsset, NormalBalance: NormalDebit, Status: AccountActive})

	parent := int64(1000)
	_, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name: "Late Fees", Type: AccountTypeRevenue, ParentID: &parent, Actor: "manager",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateAccountRejectsSystemAccounts(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedAccount(t, store, Account{ID: 1000, Name: "Operating Cash", Type: AccountTypeAsset, NormalBalance: NormalDebit, Status: AccountActive, System: true})

	name := "Renamed"
	_, err := svc.UpdateAccount(context.Background(), 1000, UpdateAccountInput{Name: &name, Actor: "manager"})
	require.ErrorIs(t, err, shared.ErrSystemAccount)

	acct, err := store.GetAccount(context.Background(), 1000)
	require.NoError(t, err)
	require.Equal(t, "Operating Cash", acct.Name)
}

func TestPostJournalEntryRejectsUnbalanced(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedAccount(t, store, Account{ID: 1000, Name: "Cash", Type: AccountTypeAsset, NormalBalance: NormalDebit, Status: AccountActive})
	seedAccount(t, store, Account{ID: 4000, Name: "Rental Income", Type: AccountTypeRevenue, NormalBalance: NormalCredit, Status: AccountActive})

	_, _, err := svc.PostJournalEntry(context.Background(), PostingInput{
		Lines: []PostingLine{
			{AccountID: 1000, Debit: usd("1850.00")},
			{AccountID: 4000, Credit: usd("1800.00")},
		},
		Actor: "manager",
	})
	require.ErrorIs(t, err, shared.ErrUnbalancedEntry)

	rows, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Empty(t, rows, "no line may be written for a rejected entry")
}

func TestPostJournalEntryAppliesSignConvention(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedAccount(t, store, Account{ID: 1000, Name: "Cash", Type: AccountTypeAsset, NormalBalance: NormalDebit, Balance: usd("500.00"), Status: AccountActive})
	seedAccount(t, store, Account{ID: 4000, Name: "Rental Income", Type: AccountTypeRevenue, NormalBalance: NormalCredit, Balance: usd("200.00"), Status: AccountActive})

	ref, rows, err := svc.PostJournalEntry(context.Background(), PostingInput{
		Property: "Maple Court",
		Lines: []PostingLine{
			{AccountID: 1000, Debit: usd("1850.00"), Description: "June rent"},
			{AccountID: 4000, Credit: usd("1850.00"), Description: "June rent"},
		},
		Actor: "manager",
	})
	require.NoError(t, err)
	require.NotEmpty(t, ref)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, ref, row.Ref, "all lines share one ref")
	}

	cash, err := store.GetAccount(context.Background(), 1000)
	require.NoError(t, err)
	require.True(t, cash.Balance.Equal(usd("2350.00")), "debit increases a debit-normal account")

	income, err := store.GetAccount(context.Background(), 4000)
	require.NoError(t, err)
	require.True(t, income.Balance.Equal(usd("2050.00")), "credit increases a credit-normal account")
}

func TestPostJournalEntryRejectsNegativeLines(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedAccount(t, store, Account{ID: 1000, Name: "Cash", Type: AccountTypeAsset, NormalBalance: NormalDebit, Status: AccountActive})

	_, _, err := svc.PostJournalEntry(context.Background(), PostingInput{
		Lines: []PostingLine{
			{AccountID: 1000, Debit: usd("-100.00"), Credit: usd("-100.00")},
		},
		Actor: "manager",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostJournalEntryRejectsInactiveAccount(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedAccount(t, store, Account{ID: 1000, Name: "Cash", Type: AccountTypeAsset, NormalBalance: NormalDebit, Status: AccountActive})
	seedAccount(t, store, Account{ID: 4000, Name: "Old Income", Type: AccountTypeRevenue, NormalBalance: NormalCredit, Status: AccountInactive})

	_, _, err := svc.PostJournalEntry(context.Background(), PostingInput{
		Lines: []PostingLine{
			{AccountID: 1000, Debit: usd("100.00")},
			{AccountID: 4000, Credit: usd("100.00")},
		},
		Actor: "manager",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestBalanceDelta(t *testing.T) {
	cases := []struct {
		nb            NormalBalance
		debit, credit string
		want          string
	}{
		{NormalDebit, "100", "0", "100"},
		{NormalDebit, "0", "100", "-100"},
		{NormalCredit, "0", "100", "100"},
		{NormalCredit, "100", "0", "-100"},
	}
	for _, tc := range cases {
		got := BalanceDelta(tc.nb, usd(tc.debit), usd(tc.credit))
		require.True(t, got.Equal(usd(tc.want)), "nb=%s debit=%s credit=%s", tc.nb, tc.debit, tc.credit)
	}
}

func TestPostJournalEntryAuditsUnderOneRef(t *testing.T) {
	svc, store, trail := newTestService(t)
	seedAccount(t, store, Account{ID: 1000, Name: "Cash", Type: AccountTypeAsset, NormalBalance: NormalDebit, Status: AccountActive})
	seedAccount(t, store, Account{ID: 4000, Name: "Rental Income", Type: AccountTypeRevenue, NormalBalance: NormalCredit, Status: AccountActive})

	ref, _, err := svc.PostJournalEntry(context.Background(), PostingInput{
		Lines: []PostingLine{
			{AccountID: 1000, Debit: usd("100.00")},
			{AccountID: 4000, Credit: usd("100.00")},
		},
		Actor: "manager",
	})
	require.NoError(t, err)

	logs, err := trail.List(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "journal.post", logs[0].Action)
	require.Equal(t, ref, logs[0].EntityID)
}
