package pricing

// Recurrence policies for coupons applied to recurring subscriptions.
const (
	RecurringOneTime     = "ONE_TIME"
	RecurringFixedMonths = "FIXED_MONTHS"
	RecurringUnlimited   = "UNLIMITED"
)

// CycleEligibility is the outcome of asking whether a coupon application
// still discounts the upcoming billing cycle.
type CycleEligibility struct {
	// Eligible means the upcoming charge is discounted.
	Eligible bool
	// RemainingAfter is the months counter to persist after the charge.
	// nil means unlimited. A zero means the cycle being charged is the
	// last discounted one and the application must be deactivated after it.
	RemainingAfter *int
	// Exhausted means the application is spent and should be deactivated.
	Exhausted bool
}

// NextCycleEligibility decides whether a coupon application with the given
// remaining-months counter discounts the upcoming cycle. remainingMonths nil
// means unlimited recurrence.
//
// Callers must evaluate this before quoting the next payment: an application
// on its way out shows the full price with an expiry marker, not the
// discounted one.
func NextCycleEligibility(remainingMonths *int) CycleEligibility {
	if remainingMonths == nil {
		return CycleEligibility{Eligible: true, RemainingAfter: nil}
	}
	switch m := *remainingMonths; {
	case m <= 0:
		after := 0
		return CycleEligibility{Eligible: false, RemainingAfter: &after, Exhausted: true}
	case m == 1:
		after := 0
		return CycleEligibility{Eligible: true, RemainingAfter: &after, Exhausted: true}
	default:
		after := m - 1
		return CycleEligibility{Eligible: true, RemainingAfter: &after}
	}
}
