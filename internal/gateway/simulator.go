package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus is the simulated outcome state of a payment attempt.
type SettlementStatus string

const (
	// StatusCleared means funds settled immediately (card model).
	StatusCleared SettlementStatus = "cleared"
	// StatusPending means the attempt succeeded but settlement is deferred (ACH model).
	StatusPending SettlementStatus = "pending"
	// StatusFailed means the processor rejected the attempt.
	StatusFailed SettlementStatus = "failed"
)

// Outcome is the result of one simulated payment attempt. Failures are data,
// never errors; callers branch on Success.
type Outcome struct {
	Success       bool             `json:"success"`
	Status        SettlementStatus `json:"status"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Message       string           `json:"message"`
}

// Simulator stands in for a card/ACH processor. A process-wide failure toggle
// makes a configurable fraction of attempts fail, for exercising retry paths.
type Simulator struct {
	mu               sync.Mutex
	delay            time.Duration
	failureRate      float64
	simulateFailures bool
	roll             func() float64
}

// NewSimulator builds a simulator with the given artificial latency and the
// fraction of attempts that fail while failure simulation is enabled.
func NewSimulator(delay time.Duration, failureRate float64) *Simulator {
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Simulator{delay: delay, failureRate: failureRate, roll: rng.Float64}
}

// SetSimulateFailures flips the failure-injection toggle.
func (s *Simulator) SetSimulateFailures(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailures = enabled
}

// SimulateFailures reports the current toggle state.
func (s *Simulator) SimulateFailures() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simulateFailures
}

// WithRoll overrides the random source, for deterministic tests.
func (s *Simulator) WithRoll(roll func() float64) {
	if roll != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.roll = roll
	}
}

// ProcessCard simulates a card charge. Cards settle synchronously, so a
// successful attempt clears immediately.
func (s *Simulator) ProcessCard(ctx context.Context, amount decimal.Decimal, methodID string) Outcome {
	if out, ok := s.attempt(ctx, amount, "Card payment declined by issuer"); !ok {
		return out
	}
	return Outcome{
		Success:       true,
		Status:        StatusCleared,
		TransactionID: newTransactionID(),
		Message:       fmt.Sprintf("Card charge of %s approved", amount.StringFixed(2)),
	}
}

// ProcessACH simulates an ACH debit. Successful attempts stay pending until
// the end-of-day settlement batch clears them.
func (s *Simulator) ProcessACH(ctx context.Context, amount decimal.Decimal, methodID string) Outcome {
	if out, ok := s.attempt(ctx, amount, "ACH transfer rejected by originating bank"); !ok {
		return out
	}
	return Outcome{
		Success:       true,
		Status:        StatusPending,
		TransactionID: newTransactionID(),
		Message:       fmt.Sprintf("ACH debit of %s accepted, settlement pending", amount.StringFixed(2)),
	}
}

// attempt runs the shared validation, latency and failure-injection steps.
// It returns ok=false with a terminal outcome when the attempt should not
// proceed to a success response.
func (s *Simulator) attempt(ctx context.Context, amount decimal.Decimal, failMsg string) (Outcome, bool) {
	if !amount.IsPositive() {
		return Outcome{Success: false, Status: StatusFailed, Message: "Payment amount must be positive"}, false
	}
	if err := s.sleep(ctx); err != nil {
		return Outcome{Success: false, Status: StatusFailed, Message: "Payment attempt interrupted"}, false
	}
	s.mu.Lock()
	failed := s.simulateFailures && s.roll() < s.failureRate
	s.mu.Unlock()
	if failed {
		return Outcome{Success: false, Status: StatusFailed, Message: failMsg}, false
	}
	return Outcome{}, true
}

// sleep models processor latency while honouring context cancellation.
func (s *Simulator) sleep(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newTransactionID() string {
	return "txn_" + uuid.NewString()
}
