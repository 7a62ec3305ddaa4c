package clock

import (
	"testing"
	"time"
)

func TestPeriodOfCrossesMidnightInKST(t *testing.T) {
	// 2024-05-31 16:00 UTC is already 2024-06-01 01:00 in Seoul.
	utc := time.Date(2024, 5, 31, 16, 0, 0, 0, time.UTC)

	p := PeriodOf(utc)
	if p.Year != 2024 || p.Month != time.June {
		t.Fatalf("PeriodOf(%v) = %v, want 2024 June", utc, p)
	}
}

func TestPeriodOfSameInstantDifferentZones(t *testing.T) {
	utc := time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)
	if got, want := PeriodOf(utc), PeriodOf(utc.In(time.FixedZone("X", -5*3600))); got != want {
		t.Fatalf("period depends on representation zone: %v vs %v", got, want)
	}
}

func TestFixedClock(t *testing.T) {
	pinned := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Fixed(pinned)
	if !c.Now().Equal(pinned) {
		t.Fatalf("Fixed clock moved: %v", c.Now())
	}
	if p := CurrentPeriod(c); p.Year != 2025 || p.Month != time.January {
		t.Fatalf("CurrentPeriod = %v, want 2025 January", p)
	}
}

func TestStartOfDayIsIdempotent(t *testing.T) {
	now := time.Date(2024, 8, 10, 13, 45, 12, 999, time.UTC)
	sod := StartOfDay(now)
	if !StartOfDay(sod).Equal(sod) {
		t.Fatalf("StartOfDay not idempotent: %v vs %v", StartOfDay(sod), sod)
	}
	if sod.Hour() != 0 || sod.Minute() != 0 || sod.Second() != 0 {
		t.Fatalf("StartOfDay left time-of-day: %v", sod)
	}
}
