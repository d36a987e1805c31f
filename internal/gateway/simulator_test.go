package gateway

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProcessCardClearsImmediately(t *testing.T) {
	sim := NewSimulator(0, 0.5)
	out := sim.ProcessCard(context.Background(), decimal.NewFromInt(1850), "pm-1")
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if out.Status != StatusCleared {
		t.Fatalf("expected cleared got %s", out.Status)
	}
	if out.TransactionID == "" {
		t.Fatal("expected a transaction id")
	}
}

func TestProcessACHStaysPending(t *testing.T) {
	sim := NewSimulator(0, 0.5)
	out := sim.ProcessACH(context.Background(), decimal.NewFromInt(2400), "pm-2")
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if out.Status != StatusPending {
		t.Fatalf("expected pending got %s", out.Status)
	}
}

func TestNonPositiveAmountRejected(t *testing.T) {
	sim := NewSimulator(0, 0)
	out := sim.ProcessCard(context.Background(), decimal.Zero, "pm-1")
	if out.Success {
		t.Fatal("expected failure for zero amount")
	}
	if out.Status != StatusFailed {
		t.Fatalf("expected failed got %s", out.Status)
	}
}

func TestFailureInjection(t *testing.T) {
	sim := NewSimulator(0, 0.5)
	sim.SetSimulateFailures(true)

	sim.WithRoll(func() float64 { return 0.1 })
	out := sim.ProcessCard(context.Background(), decimal.NewFromInt(100), "pm-1")
	if out.Success {
		t.Fatal("roll below failure rate should fail")
	}
	if out.Status != StatusFailed {
		t.Fatalf("expected failed got %s", out.Status)
	}

	sim.WithRoll(func() float64 { return 0.9 })
	out = sim.ProcessCard(context.Background(), decimal.NewFromInt(100), "pm-1")
	if !out.Success {
		t.Fatalf("roll above failure rate should succeed, got %q", out.Message)
	}
}

func TestFailureToggleOffIgnoresRate(t *testing.T) {
	sim := NewSimulator(0, 1)
	sim.WithRoll(func() float64 { return 0 })
	out := sim.ProcessACH(context.Background(), decimal.NewFromInt(100), "pm-2")
	if !out.Success {
		t.Fatalf("toggle off should never fail, got %q", out.Message)
	}
	if sim.SimulateFailures() {
		t.Fatal("toggle should default to off")
	}
}

func TestCancelledContextInterruptsAttempt(t *testing.T) {
	sim := NewSimulator(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := sim.ProcessCard(ctx, decimal.NewFromInt(100), "pm-1")
	if out.Success {
		t.Fatal("expected failure for cancelled context")
	}
}
