package ledger

import (
	"context"
	"fmt"
	"strconv"
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

// Service owns chart-of-accounts and journal mutations. Account balances
// change only through PostJournalEntry.
type Service struct {
	repo     Repository
	audit    AuditPort
	activity ActivityPort
	now      func() time.Time
}

// NewService builds a ledger Service.
func NewService(repo Repository, audit AuditPort, activity ActivityPort) *Service {
	return &Service{repo: repo, audit: audit, activity: activity, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ListAccounts returns the full chart of accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// GetAccount returns one account.
func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// ListTransactions returns all journal lines.
func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

// CreateAccountInput carries the fields for a new account.
type CreateAccountInput struct {
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	ParentID      *int64
	Actor         string
	ActorRole     string
}

// CreateAccount adds a non-system account to the chart.
func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (Account, error) {
	if input.Name == "" {
		return Account{}, fmt.Errorf("%w: account name required", shared.ErrValidation)
	}
	if !ValidType(input.Type) {
		return Account{}, fmt.Errorf("%w: unknown account type %q", shared.ErrValidation, input.Type)
	}
	if input.ParentID != nil {
		parent, err := s.repo.GetAccount(ctx, *input.ParentID)
		if err != nil {
			return Account{}, err
		}
		if parent.Type != input.Type {
			return Account{}, fmt.Errorf("%w: parent account must share type %s", shared.ErrValidation, input.Type)
		}
	}
	nb := input.NormalBalance
	if nb == "" {
		nb = DefaultNormalBalance(input.Type)
	}
	id, err := s.repo.NextAccountID(ctx)
	if err != nil {
		return Account{}, err
	}
	acct := Account{
		ID:            id,
		Name:          input.Name,
		Type:          input.Type,
		NormalBalance: nb,
		Balance:       decimal.Zero,
		ParentID:      input.ParentID,
		Status:        AccountActive,
	}
	created, err := s.repo.InsertAccount(ctx, acct)
	if err != nil {
		return Account{}, err
	}
	s.recordAudit(ctx, input.Actor, input.ActorRole, "account.create", created.ID, nil, map[string]any{
		"name": created.Name,
		"type": string(created.Type),
	})
	if s.activity != nil {
		s.activity.Add(ctx, input.Actor, "accounting", fmt.Sprintf("Added account %d %s", created.ID, created.Name))
	}
	return created, nil
}

// UpdateAccountInput carries optional account edits.
type UpdateAccountInput struct {
	Name      *string
	Status    *AccountStatus
	ParentID  *int64
	Actor     string
	ActorRole string
}

// UpdateAccount edits a non-system account. System accounts are immutable at
// this boundary regardless of what callers request.
func (s *Service) UpdateAccount(ctx context.Context, id int64, input UpdateAccountInput) (Account, error) {
	acct, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if acct.System {
		return Account{}, shared.ErrSystemAccount
	}
	old := map[string]any{"name": acct.Name, "status": string(acct.Status)}
	if input.Name != nil {
		if *input.Name == "" {
			return Account{}, fmt.Errorf("%w: account name required", shared.ErrValidation)
		}
		acct.Name = *input.Name
	}
	if input.Status != nil {
		if *input.Status != AccountActive && *input.Status != AccountInactive {
			return Account{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *input.Status)
		}
		acct.Status = *input.Status
	}
	if input.ParentID != nil {
		parent, err := s.repo.GetAccount(ctx, *input.ParentID)
		if err != nil {
			return Account{}, err
		}
		if parent.Type != acct.Type {
			return Account{}, fmt.Errorf("%w: parent account must share type %s", shared.ErrValidation, acct.Type)
		}
		acct.ParentID = input.ParentID
	}
	if err := s.repo.SaveAccount(ctx, acct); err != nil {
		return Account{}, err
	}
	s.recordAudit(ctx, input.Actor, input.ActorRole, "account.update", id, old, map[string]any{
		"name": acct.Name, "status": string(acct.Status),
	})
	if s.activity != nil {
		s.activity.Add(ctx, input.Actor, "accounting", fmt.Sprintf("Updated account %d %s", acct.ID, acct.Name))
	}
	return acct, nil
}

// PostingLine is one debit/credit leg of a journal entry.
type PostingLine struct {
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// PostingInput describes a full journal entry.
type PostingInput struct {
	Date      time.Time
	Property  string
	Lines     []PostingLine
	Actor     string
	ActorRole string
}

// PostJournalEntry writes one balanced journal entry under a shared ref and
// applies each line to its account balance using the normal-balance sign
// convention. Unbalanced entries are rejected before any line is written.
func (s *Service) PostJournalEntry(ctx context.Context, input PostingInput) (string, []Transaction, error) {
	if len(input.Lines) == 0 {
		return "", nil, fmt.Errorf("%w: journal entry requires at least one line", shared.ErrValidation)
	}
	var debits, credits decimal.Decimal
	for _, line := range input.Lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return "", nil, fmt.Errorf("%w: negative debit/credit", shared.ErrValidation)
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if !debits.Equal(credits) {
		return "", nil, shared.ErrUnbalancedEntry
	}

	accounts := make(map[int64]Account, len(input.Lines))
	for _, line := range input.Lines {
		if _, seen := accounts[line.AccountID]; seen {
			continue
		}
		acct, err := s.repo.GetAccount(ctx, line.AccountID)
		if err != nil {
			return "", nil, err
		}
		if acct.Status != AccountActive {
			return "", nil, fmt.Errorf("%w: account %d is inactive", shared.ErrValidation, acct.ID)
		}
		accounts[line.AccountID] = acct
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	ref := uuid.NewString()
	rows := make([]Transaction, 0, len(input.Lines))
	for _, line := range input.Lines {
		rows = append(rows, Transaction{
			ID:          uuid.NewString(),
			Date:        date,
			Ref:         ref,
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
			Property:    input.Property,
			CreatedBy:   input.Actor,
		})
		acct := accounts[line.AccountID]
		acct.Balance = acct.Balance.Add(BalanceDelta(acct.NormalBalance, line.Debit, line.Credit))
		accounts[line.AccountID] = acct
	}
	if err := s.repo.InsertTransactions(ctx, rows); err != nil {
		return "", nil, err
	}
	for _, acct := range accounts {
		if err := s.repo.SaveAccount(ctx, acct); err != nil {
			return "", nil, err
		}
	}
	s.recordAuditStr(ctx, input.Actor, input.ActorRole, "journal.post", ref, nil, map[string]any{
		"lines": len(rows),
		"total": debits.String(),
	})
	if s.activity != nil {
		s.activity.Add(ctx, input.Actor, "accounting",
			fmt.Sprintf("Posted journal entry of %s across %d lines", shared.FormatUSD(debits), len(rows)))
	}
	return ref, rows, nil
}

func (s *Service) recordAudit(ctx context.Context, actor, role, action string, id int64, old, new map[string]any) {
	s.recordAuditStr(ctx, actor, role, action, strconv.FormatInt(id, 10), old, new)
}

func (s *Service) recordAuditStr(ctx context.Context, actor, role, action, entityID string, old, new map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:     actor,
		ActorRole: role,
		Action:    action,
		Entity:    entityFor(action),
		EntityID:  entityID,
		OldValue:  old,
		NewValue:  new,
		At:        s.now(),
	})
}

func entityFor(action string) string {
	switch action {
	case "journal.post":
		return "journal_entry"
	default:
		return "account"
	}
}
