package pricing

import "testing"

func intPtr(v int) *int { return &v }

func TestNextCycleEligibilityUnlimited(t *testing.T) {
	e := NextCycleEligibility(nil)
	if !e.Eligible || e.RemainingAfter != nil || e.Exhausted {
		t.Fatalf("unlimited application should stay eligible forever, got %+v", e)
	}
}

func TestNextCycleEligibilityCountdown(t *testing.T) {
	tests := []struct {
		remaining     int
		wantEligible  bool
		wantAfter     int
		wantExhausted bool
	}{
		{remaining: 3, wantEligible: true, wantAfter: 2},
		{remaining: 2, wantEligible: true, wantAfter: 1},
		{remaining: 1, wantEligible: true, wantAfter: 0, wantExhausted: true},
		{remaining: 0, wantEligible: false, wantAfter: 0, wantExhausted: true},
		{remaining: -1, wantEligible: false, wantAfter: 0, wantExhausted: true},
	}

	for _, tt := range tests {
		e := NextCycleEligibility(intPtr(tt.remaining))
		if e.Eligible != tt.wantEligible || e.Exhausted != tt.wantExhausted {
			t.Fatalf("NextCycleEligibility(%d) = %+v", tt.remaining, e)
		}
		if e.RemainingAfter == nil || *e.RemainingAfter != tt.wantAfter {
			t.Fatalf("NextCycleEligibility(%d) remaining after = %v, want %d", tt.remaining, e.RemainingAfter, tt.wantAfter)
		}
	}
}

// A FIXED_MONTHS(n) application charged every cycle yields exactly n
// discounted cycles before it deactivates.
func TestFixedMonthsYieldsExactlyNCycles(t *testing.T) {
	for _, n := range []int{1, 2, 6, 12} {
		remaining := intPtr(n)
		discounted := 0
		for i := 0; i < n+3; i++ {
			e := NextCycleEligibility(remaining)
			if e.Eligible {
				discounted++
			}
			remaining = e.RemainingAfter
		}
		if discounted != n {
			t.Fatalf("FIXED_MONTHS(%d) discounted %d cycles", n, discounted)
		}
	}
}
