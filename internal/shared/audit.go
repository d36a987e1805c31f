package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one immutable compliance record. OldValue and NewValue hold the
// pre- and post-state of whatever fields the operation changed.
type AuditLog struct {
	ID        string         `json:"id"`
	At        time.Time      `json:"at"`
	Actor     string         `json:"actor"`
	ActorRole string         `json:"actor_role"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	OldValue  map[string]any `json:"old_value,omitempty"`
	NewValue  map[string]any `json:"new_value,omitempty"`
}

// AuditTrail is an append-only in-memory store of audit records. Entries are
// never edited or removed once recorded.
type AuditTrail struct {
	mu   sync.RWMutex
	logs []AuditLog
}

// NewAuditTrail returns an empty trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

// Record appends the log entry. ID and timestamp are filled in when absent.
func (t *AuditTrail) Record(ctx context.Context, log AuditLog) error {
	if t == nil {
		return errors.New("audit trail not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.At.IsZero() {
		log.At = time.Now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, log)
	return nil
}

// List returns a copy of all entries in insertion order.
func (t *AuditTrail) List(ctx context.Context) ([]AuditLog, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]AuditLog, len(t.logs))
	copy(out, t.logs)
	return out, nil
}
