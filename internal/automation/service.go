package automation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/shared"
)

// ActivityPort records human-readable feed entries.
type ActivityPort interface {
	Add(ctx context.Context, actor, category, msg string)
}

// Service is the drip-sequence engine. Every mutation appends to the
// execution trace and notifies bus subscribers once the write completes.
// Expected failures (inactive automation, duplicate enrollment, cooldown)
// come back as result objects, not errors.
type Service struct {
	repo     Repository
	bus      *Bus
	activity ActivityPort
	now      func() time.Time

	mu               sync.Mutex
	simulateFailures bool
	failureRate      float64
	roll             func() float64
}

// NewService builds an automation Service.
func NewService(repo Repository, bus *Bus, activity ActivityPort, failureRate float64) *Service {
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Service{
		repo:        repo,
		bus:         bus,
		activity:    activity,
		now:         time.Now,
		failureRate: failureRate,
		roll:        rng.Float64,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithRoll overrides the random source, for deterministic tests.
func (s *Service) WithRoll(roll func() float64) {
	if roll != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.roll = roll
	}
}

// SetSimulateFailures flips step failure injection.
func (s *Service) SetSimulateFailures(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailures = enabled
}

// Subscribe registers a refresh callback; returns its unsubscribe function.
func (s *Service) Subscribe(fn func()) func() {
	return s.bus.Subscribe(fn)
}

func (s *Service) ListAutomations(ctx context.Context) ([]Automation, error) {
	return s.repo.ListAutomations(ctx)
}

func (s *Service) ListEnrollments(ctx context.Context) ([]Enrollment, error) {
	return s.repo.ListEnrollments(ctx)
}

func (s *Service) ListLogs(ctx context.Context) ([]Log, error) {
	return s.repo.ListLogs(ctx)
}

// CreateInput carries the fields for a new automation.
type CreateInput struct {
	Name              string
	TriggerType       string
	TriggerEvent      string
	AllowMultipleRuns bool
	CooldownHours     int
	Steps             []Step
}

// CreateAutomation adds a draft sequence.
func (s *Service) CreateAutomation(ctx context.Context, input CreateInput) (Automation, error) {
	if input.Name == "" {
		return Automation{}, fmt.Errorf("%w: automation name required", shared.ErrValidation)
	}
	if len(input.Steps) == 0 {
		return Automation{}, fmt.Errorf("%w: automation requires at least one step", shared.ErrValidation)
	}
	steps := make([]Step, len(input.Steps))
	copy(steps, input.Steps)
	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = "step_" + uuid.NewString()
		}
		steps[i].Order = i
	}
	a := Automation{
		ID:                "auto_" + uuid.NewString(),
		Name:              input.Name,
		Status:            StatusDraft,
		TriggerType:       input.TriggerType,
		TriggerEvent:      input.TriggerEvent,
		AllowMultipleRuns: input.AllowMultipleRuns,
		CooldownHours:     input.CooldownHours,
		Steps:             steps,
	}
	if err := s.repo.InsertAutomation(ctx, a); err != nil {
		return Automation{}, err
	}
	s.log(ctx, a.ID, "", "", LogInfo, fmt.Sprintf("Automation %q created with %d steps", a.Name, len(a.Steps)))
	s.notify()
	return a, nil
}

// Activate moves a draft or paused automation to active.
func (s *Service) Activate(ctx context.Context, id string) (Automation, error) {
	return s.setStatus(ctx, id, StatusActive)
}

// Pause moves an active automation to paused. New enrollments stop; existing
// enrollments keep their place and resume when the automation does.
func (s *Service) Pause(ctx context.Context, id string) (Automation, error) {
	return s.setStatus(ctx, id, StatusPaused)
}

func (s *Service) setStatus(ctx context.Context, id string, to Status) (Automation, error) {
	a, err := s.repo.GetAutomation(ctx, id)
	if err != nil {
		return Automation{}, err
	}
	if a.Status == to {
		return a, nil
	}
	if to == StatusPaused && a.Status != StatusActive {
		return Automation{}, fmt.Errorf("%w: only active automations can be paused", shared.ErrInvalidStatus)
	}
	old := a.Status
	a.Status = to
	if err := s.repo.SaveAutomation(ctx, a); err != nil {
		return Automation{}, err
	}
	s.log(ctx, a.ID, "", "", LogInfo, fmt.Sprintf("Automation %q moved %s -> %s", a.Name, old, to))
	if s.activity != nil {
		s.activity.Add(ctx, "system", "marketing", fmt.Sprintf("Automation %q is now %s", a.Name, to))
	}
	s.notify()
	return a, nil
}

// Delete removes an automation and terminates its open enrollments.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.repo.GetAutomation(ctx, id)
	if err != nil {
		return err
	}
	enrollments, err := s.repo.ListEnrollments(ctx)
	if err != nil {
		return err
	}
	for _, e := range enrollments {
		if e.AutomationID != id || e.Status.Terminal() {
			continue
		}
		e.Status = EnrollmentUnenrolled
		e.ExitReason = "automation deleted"
		if err := s.repo.SaveEnrollment(ctx, e); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteAutomation(ctx, id); err != nil {
		return err
	}
	s.log(ctx, id, "", "", LogInfo, fmt.Sprintf("Automation %q deleted", a.Name))
	s.notify()
	return nil
}

// ManualEnroll places a lead into an active automation. Enrollment is
// refused when the automation is not active, when the lead already has an
// open run and multiple runs are disallowed, or when the lead completed a
// run inside the cooldown window.
func (s *Service) ManualEnroll(ctx context.Context, automationID, leadID string) (EnrollResult, error) {
	a, err := s.repo.GetAutomation(ctx, automationID)
	if err != nil {
		return EnrollResult{Success: false, Error: "automation not found"}, nil
	}
	if a.Status != StatusActive {
		return EnrollResult{Success: false, Error: fmt.Sprintf("automation is %s, only active automations accept enrollments", a.Status)}, nil
	}
	existing, err := s.repo.ListEnrollmentsByLead(ctx, leadID)
	if err != nil {
		return EnrollResult{}, err
	}
	now := s.now()
	for _, e := range existing {
		if e.AutomationID != automationID {
			continue
		}
		if !e.Status.Terminal() && !a.AllowMultipleRuns {
			return EnrollResult{Success: false, Error: "lead already has an open enrollment in this automation"}, nil
		}
		if e.Status == EnrollmentCompleted && a.CooldownHours > 0 && e.CompletedAt != nil {
			eligible := e.CompletedAt.Add(time.Duration(a.CooldownHours) * time.Hour)
			if now.Before(eligible) {
				return EnrollResult{Success: false, Error: fmt.Sprintf("lead is in cooldown until %s", eligible.Format(time.RFC3339))}, nil
			}
		}
	}
	e := Enrollment{
		ID:           "enr_" + uuid.NewString(),
		AutomationID: automationID,
		LeadID:       leadID,
		Status:       EnrollmentActive,
		EnrolledAt:   now,
	}
	if err := s.repo.InsertEnrollment(ctx, e); err != nil {
		return EnrollResult{}, err
	}
	a.EnrolledCount++
	if err := s.repo.SaveAutomation(ctx, a); err != nil {
		return EnrollResult{}, err
	}
	s.log(ctx, automationID, e.ID, "", LogInfo, fmt.Sprintf("Lead %s enrolled", leadID))
	if s.activity != nil {
		s.activity.Add(ctx, "system", "marketing", fmt.Sprintf("Lead %s entered %q", leadID, a.Name))
	}
	s.notify()
	return EnrollResult{Success: true, EnrollmentID: e.ID}, nil
}

// ManualUnenroll terminates an enrollment early. Calling it on an already
// terminated enrollment is a safe no-op.
func (s *Service) ManualUnenroll(ctx context.Context, enrollmentID, reason string) (EnrollResult, error) {
	e, err := s.repo.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return EnrollResult{Success: false, Error: "enrollment not found"}, nil
	}
	if e.Status.Terminal() {
		return EnrollResult{Success: true, EnrollmentID: e.ID}, nil
	}
	e.Status = EnrollmentUnenrolled
	if reason == "" {
		reason = "manually unenrolled"
	}
	e.ExitReason = reason
	if err := s.repo.SaveEnrollment(ctx, e); err != nil {
		return EnrollResult{}, err
	}
	s.log(ctx, e.AutomationID, e.ID, "", LogInfo, fmt.Sprintf("Lead %s unenrolled: %s", e.LeadID, reason))
	s.notify()
	return EnrollResult{Success: true, EnrollmentID: e.ID}, nil
}

// ExecuteNextStep runs the enrollment's current step. On success the pointer
// advances; completing the final step completes the run. On failure the
// pointer stays so the step can be retried. A log entry is appended either
// way.
func (s *Service) ExecuteNextStep(ctx context.Context, enrollmentID string) (StepResult, error) {
	e, err := s.repo.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return StepResult{Success: false, Error: "enrollment not found"}, nil
	}
	if e.Status.Terminal() {
		return StepResult{Success: false, Error: fmt.Sprintf("enrollment is %s", e.Status)}, nil
	}
	a, err := s.repo.GetAutomation(ctx, e.AutomationID)
	if err != nil {
		return StepResult{Success: false, Error: "automation not found"}, nil
	}
	if a.Status != StatusActive {
		return StepResult{Success: false, Error: fmt.Sprintf("automation is %s", a.Status)}, nil
	}
	if e.StepIndex >= len(a.Steps) {
		return s.complete(ctx, a, e)
	}
	step := a.Steps[e.StepIndex]
	if s.stepFails() {
		e.LastError = fmt.Sprintf("step %q failed to send", step.Name)
		if err := s.repo.SaveEnrollment(ctx, e); err != nil {
			return StepResult{}, err
		}
		s.log(ctx, a.ID, e.ID, step.ID, LogError, e.LastError)
		s.notify()
		return StepResult{Success: false, Error: e.LastError}, nil
	}
	e.LastError = ""
	e.StepIndex++
	s.log(ctx, a.ID, e.ID, step.ID, LogInfo, fmt.Sprintf("Executed %s step %q for lead %s", step.Kind, step.Name, e.LeadID))
	if e.StepIndex >= len(a.Steps) {
		return s.complete(ctx, a, e)
	}
	if err := s.repo.SaveEnrollment(ctx, e); err != nil {
		return StepResult{}, err
	}
	s.notify()
	return StepResult{Success: true}, nil
}

// RetryEnrollmentStep re-executes a previously failed step. The step must be
// the enrollment's current step and must actually have failed.
func (s *Service) RetryEnrollmentStep(ctx context.Context, enrollmentID, stepID string) (StepResult, error) {
	e, err := s.repo.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return StepResult{Success: false, Error: "enrollment not found"}, nil
	}
	if e.LastError == "" {
		return StepResult{Success: false, Error: "no failed step to retry"}, nil
	}
	a, err := s.repo.GetAutomation(ctx, e.AutomationID)
	if err != nil {
		return StepResult{Success: false, Error: "automation not found"}, nil
	}
	if e.StepIndex >= len(a.Steps) || a.Steps[e.StepIndex].ID != stepID {
		return StepResult{Success: false, Error: "step is not the enrollment's current step"}, nil
	}
	s.log(ctx, a.ID, e.ID, stepID, LogInfo, fmt.Sprintf("Retrying step %q for lead %s", a.Steps[e.StepIndex].Name, e.LeadID))
	return s.ExecuteNextStep(ctx, enrollmentID)
}

// AdvanceEnrollments executes the current step of every active enrollment in
// an active automation, in ascending enrollment-ID order. Used by the
// background runner.
func (s *Service) AdvanceEnrollments(ctx context.Context) (int, error) {
	enrollments, err := s.repo.ListEnrollments(ctx)
	if err != nil {
		return 0, err
	}
	advanced := 0
	for _, e := range enrollments {
		if e.Status.Terminal() || e.LastError != "" {
			continue
		}
		res, err := s.ExecuteNextStep(ctx, e.ID)
		if err != nil {
			return advanced, err
		}
		if res.Success {
			advanced++
		}
	}
	return advanced, nil
}

func (s *Service) complete(ctx context.Context, a Automation, e Enrollment) (StepResult, error) {
	now := s.now()
	e.Status = EnrollmentCompleted
	e.CompletedAt = &now
	e.LastError = ""
	if err := s.repo.SaveEnrollment(ctx, e); err != nil {
		return StepResult{}, err
	}
	a.CompletedCount++
	if err := s.repo.SaveAutomation(ctx, a); err != nil {
		return StepResult{}, err
	}
	s.log(ctx, a.ID, e.ID, "", LogInfo, fmt.Sprintf("Lead %s completed %q", e.LeadID, a.Name))
	if s.activity != nil {
		s.activity.Add(ctx, "system", "marketing", fmt.Sprintf("Lead %s completed %q", e.LeadID, a.Name))
	}
	s.notify()
	return StepResult{Success: true}, nil
}

func (s *Service) stepFails() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simulateFailures && s.roll() < s.failureRate
}

func (s *Service) log(ctx context.Context, automationID, enrollmentID, stepID string, level LogLevel, msg string) {
	_ = s.repo.AppendLog(ctx, Log{
		ID:           "log_" + uuid.NewString(),
		At:           s.now(),
		AutomationID: automationID,
		EnrollmentID: enrollmentID,
		StepID:       stepID,
		Level:        level,
		Message:      msg,
	})
}

func (s *Service) notify() {
	if s.bus != nil {
		s.bus.Publish()
	}
}
