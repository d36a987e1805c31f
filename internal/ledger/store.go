package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/rentledger/rentledger/internal/shared"
)

// Repository defines the data access methods the ledger service needs.
type Repository interface {
	GetAccount(ctx context.Context, id int64) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	InsertAccount(ctx context.Context, acct Account) (Account, error)
	SaveAccount(ctx context.Context, acct Account) error
	NextAccountID(ctx context.Context) (int64, error)
	InsertTransactions(ctx context.Context, lines []Transaction) error
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

// Store is the in-memory authority for accounts and journal lines.
type Store struct {
	mu           sync.RWMutex
	accounts     map[int64]Account
	transactions []Transaction
}

// NewStore returns an empty ledger store.
func NewStore() *Store {
	return &Store{accounts: make(map[int64]Account)}
}

func (s *Store) GetAccount(_ context.Context, id int64) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	return acct, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertAccount(_ context.Context, acct Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) SaveAccount(_ context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acct.ID]; !ok {
		return shared.ErrNotFound
	}
	s.accounts[acct.ID] = acct
	return nil
}

// NextAccountID follows the legacy numbering scheme: highest existing id plus
// one hundred, leaving room for manual inserts between ranges.
func (s *Store) NextAccountID(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for id := range s.accounts {
		if id > max {
			max = id
		}
	}
	if max == 0 {
		return 1000, nil
	}
	return max + 100, nil
}

func (s *Store) InsertTransactions(_ context.Context, lines []Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, lines...)
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}
