package billing

import (
	"context"
	"sort"
	"sync"

	"github.com/rentledger/rentledger/internal/shared"
)

// Repository defines the data access the billing service needs.
type Repository interface {
	GetInvoice(ctx context.Context, id string) (Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
	SaveInvoice(ctx context.Context, inv Invoice) error
	InsertInvoice(ctx context.Context, inv Invoice) error

	GetBill(ctx context.Context, id string) (Bill, error)
	ListBills(ctx context.Context) ([]Bill, error)
	SaveBill(ctx context.Context, bill Bill) error
	InsertBill(ctx context.Context, bill Bill) error

	GetPayment(ctx context.Context, id string) (Payment, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	SavePayment(ctx context.Context, pay Payment) error
	InsertPayment(ctx context.Context, pay Payment) error

	GetDeposit(ctx context.Context, id string) (SecurityDeposit, error)
	ListDeposits(ctx context.Context) ([]SecurityDeposit, error)
	SaveDeposit(ctx context.Context, dep SecurityDeposit) error
	InsertDeposit(ctx context.Context, dep SecurityDeposit) error

	GetStatement(ctx context.Context, id string) (OwnerStatement, error)
	ListStatements(ctx context.Context) ([]OwnerStatement, error)
	SaveStatement(ctx context.Context, st OwnerStatement) error
	InsertStatement(ctx context.Context, st OwnerStatement) error
}

// Store is the in-memory authority for receivables, payables, payments,
// deposits and owner statements.
type Store struct {
	mu         sync.RWMutex
	invoices   map[string]Invoice
	bills      map[string]Bill
	payments   map[string]Payment
	payOrder   []string
	deposits   map[string]SecurityDeposit
	statements map[string]OwnerStatement
}

// NewStore returns an empty billing store.
func NewStore() *Store {
	return &Store{
		invoices:   make(map[string]Invoice),
		bills:      make(map[string]Bill),
		payments:   make(map[string]Payment),
		deposits:   make(map[string]SecurityDeposit),
		statements: make(map[string]OwnerStatement),
	}
}

func (s *Store) GetInvoice(_ context.Context, id string) (Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, nil
}

func (s *Store) ListInvoices(_ context.Context) ([]Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveInvoice(_ context.Context, inv Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID]; !ok {
		return shared.ErrNotFound
	}
	s.invoices[inv.ID] = inv
	return nil
}

func (s *Store) InsertInvoice(_ context.Context, inv Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	return nil
}

func (s *Store) GetBill(_ context.Context, id string) (Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bill, ok := s.bills[id]
	if !ok {
		return Bill{}, shared.ErrNotFound
	}
	return bill, nil
}

func (s *Store) ListBills(_ context.Context) ([]Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Bill, 0, len(s.bills))
	for _, bill := range s.bills {
		out = append(out, bill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveBill(_ context.Context, bill Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[bill.ID]; !ok {
		return shared.ErrNotFound
	}
	s.bills[bill.ID] = bill
	return nil
}

func (s *Store) InsertBill(_ context.Context, bill Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[bill.ID] = bill
	return nil
}

func (s *Store) GetPayment(_ context.Context, id string) (Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pay, ok := s.payments[id]
	if !ok {
		return Payment{}, shared.ErrNotFound
	}
	return pay, nil
}

// ListPayments returns payments in insertion order so sweeps and settlement
// batches observe a stable ordering.
func (s *Store) ListPayments(_ context.Context) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Payment, 0, len(s.payOrder))
	for _, id := range s.payOrder {
		out = append(out, s.payments[id])
	}
	return out, nil
}

func (s *Store) SavePayment(_ context.Context, pay Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[pay.ID]; !ok {
		return shared.ErrNotFound
	}
	s.payments[pay.ID] = pay
	return nil
}

func (s *Store) InsertPayment(_ context.Context, pay Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[pay.ID]; !ok {
		s.payOrder = append(s.payOrder, pay.ID)
	}
	s.payments[pay.ID] = pay
	return nil
}

func (s *Store) GetDeposit(_ context.Context, id string) (SecurityDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dep, ok := s.deposits[id]
	if !ok {
		return SecurityDeposit{}, shared.ErrNotFound
	}
	return dep, nil
}

func (s *Store) ListDeposits(_ context.Context) ([]SecurityDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SecurityDeposit, 0, len(s.deposits))
	for _, dep := range s.deposits {
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveDeposit(_ context.Context, dep SecurityDeposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deposits[dep.ID]; !ok {
		return shared.ErrNotFound
	}
	s.deposits[dep.ID] = dep
	return nil
}

func (s *Store) InsertDeposit(_ context.Context, dep SecurityDeposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits[dep.ID] = dep
	return nil
}

func (s *Store) GetStatement(_ context.Context, id string) (OwnerStatement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statements[id]
	if !ok {
		return OwnerStatement{}, shared.ErrNotFound
	}
	return st, nil
}

func (s *Store) ListStatements(_ context.Context) ([]OwnerStatement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OwnerStatement, 0, len(s.statements))
	for _, st := range s.statements {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveStatement(_ context.Context, st OwnerStatement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statements[st.ID]; !ok {
		return shared.ErrNotFound
	}
	s.statements[st.ID] = st
	return nil
}

func (s *Store) InsertStatement(_ context.Context, st OwnerStatement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[st.ID] = st
	return nil
}
