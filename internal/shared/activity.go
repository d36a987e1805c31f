package shared

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Activity is one human-readable feed entry shown alongside the audit trail.
type Activity struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	Actor    string    `json:"actor"`
	Category string    `json:"category"`
	Message  string    `json:"message"`
}

// ActivityFeed keeps the newest entries first, capped to a fixed window.
type ActivityFeed struct {
	mu      sync.RWMutex
	entries []Activity
	limit   int
}

const defaultFeedLimit = 500

// NewActivityFeed returns an empty feed.
func NewActivityFeed() *ActivityFeed {
	return &ActivityFeed{limit: defaultFeedLimit}
}

// Add prepends an entry, trimming the oldest beyond the cap.
func (f *ActivityFeed) Add(ctx context.Context, actor, category, msg string) {
	if f == nil {
		return
	}
	entry := Activity{
		ID:       uuid.NewString(),
		At:       time.Now(),
		Actor:    actor,
		Category: category,
		Message:  msg,
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]Activity{entry}, f.entries...)
	if len(f.entries) > f.limit {
		f.entries = f.entries[:f.limit]
	}
}

// List returns a copy of the feed, newest first.
func (f *ActivityFeed) List(ctx context.Context) ([]Activity, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Activity, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders an amount as "$1,234.56" for feed messages.
func FormatUSD(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return usdPrinter.Sprintf("$%.2f", f)
}
