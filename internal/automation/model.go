package automation

import "time"

// Status is the automation lifecycle: Draft -> Active <-> Paused.
type Status string

const (
	StatusDraft  Status = "Draft"
	StatusActive Status = "Active"
	StatusPaused Status = "Paused"
)

// StepKind is the action a sequence step performs.
type StepKind string

const (
	StepEmail StepKind = "email"
	StepSMS   StepKind = "sms"
	StepTask  StepKind = "task"
)

// Step is one ordered action in a drip sequence.
type Step struct {
	ID    string   `json:"id"`
	Order int      `json:"order"`
	Name  string   `json:"name"`
	Kind  StepKind `json:"kind"`
}

// Automation is a marketing drip sequence leads are enrolled into.
type Automation struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Status            Status `json:"status"`
	TriggerType       string `json:"trigger_type"`
	TriggerEvent      string `json:"trigger_event,omitempty"`
	AllowMultipleRuns bool   `json:"allow_multiple_runs"`
	CooldownHours     int    `json:"cooldown_hours"`
	Steps             []Step `json:"steps"`
	EnrolledCount     int    `json:"enrolled_count"`
	CompletedCount    int    `json:"completed_count"`
}

// EnrollmentStatus tracks a lead's progress instance.
type EnrollmentStatus string

const (
	EnrollmentActive     EnrollmentStatus = "active"
	EnrollmentCompleted  EnrollmentStatus = "completed"
	EnrollmentUnenrolled EnrollmentStatus = "unenrolled"
)

// Terminal reports whether the enrollment can no longer advance.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentCompleted || s == EnrollmentUnenrolled
}

// Enrollment binds a lead to an automation run. StepIndex points at the next
// step to execute; LastError holds the most recent step failure, cleared on a
// successful execution or retry.
type Enrollment struct {
	ID           string           `json:"id"`
	AutomationID string           `json:"automation_id"`
	LeadID       string           `json:"lead_id"`
	Status       EnrollmentStatus `json:"status"`
	StepIndex    int              `json:"step_index"`
	LastError    string           `json:"last_error,omitempty"`
	EnrolledAt   time.Time        `json:"enrolled_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	ExitReason   string           `json:"exit_reason,omitempty"`
}

// LogLevel labels an execution trace entry.
type LogLevel string

const (
	LogInfo  LogLevel = "info"
	LogError LogLevel = "error"
)

// Log is one append-only execution trace record.
type Log struct {
	ID           string    `json:"id"`
	At           time.Time `json:"at"`
	AutomationID string    `json:"automation_id"`
	EnrollmentID string    `json:"enrollment_id,omitempty"`
	StepID       string    `json:"step_id,omitempty"`
	Level        LogLevel  `json:"level"`
	Message      string    `json:"message"`
}

// EnrollResult is the outcome envelope for enrollment commands.
type EnrollResult struct {
	Success      bool   `json:"success"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// StepResult is the outcome envelope for step execution and retry.
type StepResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
