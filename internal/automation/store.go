package automation

import (
	"context"
	"sort"
	"sync"

	"github.com/rentledger/rentledger/internal/shared"
)

// Repository defines the data access the engine needs.
type Repository interface {
	GetAutomation(ctx context.Context, id string) (Automation, error)
	ListAutomations(ctx context.Context) ([]Automation, error)
	InsertAutomation(ctx context.Context, a Automation) error
	SaveAutomation(ctx context.Context, a Automation) error
	DeleteAutomation(ctx context.Context, id string) error

	GetEnrollment(ctx context.Context, id string) (Enrollment, error)
	ListEnrollments(ctx context.Context) ([]Enrollment, error)
	ListEnrollmentsByLead(ctx context.Context, leadID string) ([]Enrollment, error)
	InsertEnrollment(ctx context.Context, e Enrollment) error
	SaveEnrollment(ctx context.Context, e Enrollment) error

	AppendLog(ctx context.Context, log Log) error
	ListLogs(ctx context.Context) ([]Log, error)
}

// Store is the in-memory authority for automations, enrollments and the
// execution trace.
type Store struct {
	mu          sync.RWMutex
	automations map[string]Automation
	enrollments map[string]Enrollment
	logs        []Log
}

// NewStore returns an empty automation store.
func NewStore() *Store {
	return &Store{
		automations: make(map[string]Automation),
		enrollments: make(map[string]Enrollment),
	}
}

func (s *Store) GetAutomation(_ context.Context, id string) (Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.automations[id]
	if !ok {
		return Automation{}, shared.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAutomations(_ context.Context) ([]Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Automation, 0, len(s.automations))
	for _, a := range s.automations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertAutomation(_ context.Context, a Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.automations[a.ID] = a
	return nil
}

func (s *Store) SaveAutomation(_ context.Context, a Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.automations[a.ID]; !ok {
		return shared.ErrNotFound
	}
	s.automations[a.ID] = a
	return nil
}

func (s *Store) DeleteAutomation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.automations[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.automations, id)
	return nil
}

func (s *Store) GetEnrollment(_ context.Context, id string) (Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[id]
	if !ok {
		return Enrollment{}, shared.ErrNotFound
	}
	return e, nil
}

// ListEnrollments returns enrollments in ascending ID order so batch step
// execution is deterministic.
func (s *Store) ListEnrollments(_ context.Context) ([]Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Enrollment, 0, len(s.enrollments))
	for _, e := range s.enrollments {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListEnrollmentsByLead(_ context.Context, leadID string) ([]Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Enrollment, 0)
	for _, e := range s.enrollments {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertEnrollment(_ context.Context, e Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[e.ID] = e
	return nil
}

func (s *Store) SaveEnrollment(_ context.Context, e Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[e.ID]; !ok {
		return shared.ErrNotFound
	}
	s.enrollments[e.ID] = e
	return nil
}

func (s *Store) AppendLog(_ context.Context, log Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

func (s *Store) ListLogs(_ context.Context) ([]Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Log, len(s.logs))
	copy(out, s.logs)
	return out, nil
}
