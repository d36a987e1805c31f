package shared

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAuditTrailIsAppendOnly(t *testing.T) {
	trail := NewAuditTrail()
	err := trail.Record(context.Background(), AuditLog{
		Actor: "manager", Action: "invoice.create", Entity: "invoice", EntityID: "INV-1",
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	logs, err := trail.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one entry got %d", len(logs))
	}
	if logs[0].ID == "" || logs[0].At.IsZero() {
		t.Fatal("id and timestamp should be filled in")
	}

	// Mutating the returned slice must not affect the trail.
	logs[0].Action = "tampered"
	fresh, _ := trail.List(context.Background())
	if fresh[0].Action != "invoice.create" {
		t.Fatal("trail entry was mutated through the returned copy")
	}
}

func TestAuditTrailRejectsIncompleteEntries(t *testing.T) {
	trail := NewAuditTrail()
	if err := trail.Record(context.Background(), AuditLog{Action: "x"}); err == nil {
		t.Fatal("expected error for entry without entity")
	}
}

func TestActivityFeedNewestFirstAndCapped(t *testing.T) {
	feed := NewActivityFeed()
	feed.limit = 3
	for i := 1; i <= 5; i++ {
		feed.Add(context.Background(), "manager", "billing", fmt.Sprintf("entry %d", i))
	}

	entries, err := feed.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected feed capped at 3 got %d", len(entries))
	}
	if entries[0].Message != "entry 5" {
		t.Fatalf("expected newest first got %q", entries[0].Message)
	}
	if entries[2].Message != "entry 3" {
		t.Fatalf("expected oldest kept entry to be 3 got %q", entries[2].Message)
	}
}

func TestFormatUSD(t *testing.T) {
	cases := map[string]string{
		"1850":     "$1,850.00",
		"1234.5":   "$1,234.50",
		"0":        "$0.00",
		"-1200":    "$-1,200.00",
		"2950.756": "$2,950.76",
	}
	for in, want := range cases {
		if got := FormatUSD(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatUSD(%s) = %q want %q", in, got, want)
		}
	}
}
