package recurring

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRunDateWeekly(t *testing.T) {
	got, err := NextRunDate(date(2025, time.January, 15), FreqWeekly)
	if err != nil {
		t.Fatalf("NextRunDate returned error: %v", err)
	}
	want := date(2025, time.January, 22)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestNextRunDateBiweekly(t *testing.T) {
	got, err := NextRunDate(date(2025, time.March, 25), FreqBiweekly)
	if err != nil {
		t.Fatalf("NextRunDate returned error: %v", err)
	}
	want := date(2025, time.April, 8)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestNextRunDateMonthlyClampsToMonthEnd(t *testing.T) {
	got, err := NextRunDate(date(2025, time.January, 31), FreqMonthly)
	if err != nil {
		t.Fatalf("NextRunDate returned error: %v", err)
	}
	want := date(2025, time.February, 28)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestNextRunDateMonthlyClampsInLeapYear(t *testing.T) {
	got, err := NextRunDate(date(2024, time.January, 31), FreqMonthly)
	if err != nil {
		t.Fatalf("NextRunDate returned error: %v", err)
	}
	want := date(2024, time.February, 29)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestNextRunDateMonthlyPlainDay(t *testing.T) {
	got, err := NextRunDate(date(2025, time.April, 10), FreqMonthly)
	if err != nil {
		t.Fatalf("NextRunDate returned error: %v", err)
	}
	want := date(2025, time.May, 10)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestNextRunDateQuarterlyAcrossYearEnd(t *testing.T) {
	got, err := NextRunDate(date(2025, time.November, 30), FreqQuarterly)
	if err != nil {
		t.Fatalf("NextRunDate returned error: %v", err)
	}
	want := date(2026, time.February, 28)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestNextRunDateUnknownFrequency(t *testing.T) {
	if _, err := NextRunDate(date(2025, time.January, 1), Frequency("yearly")); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}
