package recurring

import (
	"context"
	"sort"
	"sync"

	"github.com/rentledger/rentledger/internal/shared"
)

// Repository defines the data access the scheduler needs.
type Repository interface {
	GetPlan(ctx context.Context, id string) (RecurringPlan, error)
	ListPlans(ctx context.Context) ([]RecurringPlan, error)
	InsertPlan(ctx context.Context, plan RecurringPlan) error
	SavePlan(ctx context.Context, plan RecurringPlan) error

	GetMethod(ctx context.Context, id string) (PaymentMethod, error)
	ListMethods(ctx context.Context) ([]PaymentMethod, error)
	InsertMethod(ctx context.Context, method PaymentMethod) error
	// SetDefaultMethod marks one method default and unsets all others in a
	// single critical section.
	SetDefaultMethod(ctx context.Context, id string) error
}

// Store is the in-memory authority for plans and payment methods.
type Store struct {
	mu      sync.RWMutex
	plans   map[string]RecurringPlan
	methods map[string]PaymentMethod
}

// NewStore returns an empty scheduler store.
func NewStore() *Store {
	return &Store{
		plans:   make(map[string]RecurringPlan),
		methods: make(map[string]PaymentMethod),
	}
}

func (s *Store) GetPlan(_ context.Context, id string) (RecurringPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[id]
	if !ok {
		return RecurringPlan{}, shared.ErrNotFound
	}
	return plan, nil
}

// ListPlans returns plans in ascending ID order so sweeps are deterministic.
func (s *Store) ListPlans(_ context.Context) ([]RecurringPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecurringPlan, 0, len(s.plans))
	for _, plan := range s.plans {
		out = append(out, plan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertPlan(_ context.Context, plan RecurringPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan
	return nil
}

func (s *Store) SavePlan(_ context.Context, plan RecurringPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[plan.ID]; !ok {
		return shared.ErrNotFound
	}
	s.plans[plan.ID] = plan
	return nil
}

func (s *Store) GetMethod(_ context.Context, id string) (PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	method, ok := s.methods[id]
	if !ok {
		return PaymentMethod{}, shared.ErrNotFound
	}
	return method, nil
}

func (s *Store) ListMethods(_ context.Context) ([]PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PaymentMethod, 0, len(s.methods))
	for _, method := range s.methods {
		out = append(out, method)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertMethod(_ context.Context, method PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if method.IsDefault {
		for id, m := range s.methods {
			m.IsDefault = false
			s.methods[id] = m
		}
	}
	s.methods[method.ID] = method
	return nil
}

func (s *Store) SetDefaultMethod(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[id]; !ok {
		return shared.ErrNotFound
	}
	for mid, m := range s.methods {
		m.IsDefault = mid == id
		s.methods[mid] = m
	}
	return nil
}
