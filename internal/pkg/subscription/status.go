package subscription

import (
	"time"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/internal/pkg/clock"
	"github.com/dokseo/dokseo/internal/pkg/pricing"
)

// StatusLabel is the user-facing subscription state.
type StatusLabel string

const (
	StatusActive       StatusLabel = "ACTIVE"
	StatusExpiringSoon StatusLabel = "EXPIRING_SOON"
	StatusExpired      StatusLabel = "EXPIRED"
)

const expiringSoonDays = 7

// Status is the day-based progress of a subscription window.
type Status struct {
	DaysRemaining   int         `json:"days_remaining"`
	DaysUsed        int         `json:"days_used"`
	TotalDays       int         `json:"total_days"`
	ProgressPercent float64     `json:"progress_percent"`
	Label           StatusLabel `json:"label"`
}

// ResolveStatus computes day-based progress for a subscription window. All
// math is date-only: both endpoints and today are truncated to start of day
// first, so time-of-day never shifts a boundary.
func ResolveStatus(startDate, endDate, today time.Time) Status {
	start := clock.StartOfDay(startDate)
	end := clock.StartOfDay(endDate)
	day := clock.StartOfDay(today)

	daysRemaining := wholeDays(day, end)
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	totalDays := wholeDays(start, end)
	daysUsed := wholeDays(start, day)
	if daysUsed < 0 {
		daysUsed = 0
	}

	progress := 0.0
	if totalDays > 0 {
		progress = float64(daysUsed) / float64(totalDays) * 100
		if progress > 100 {
			progress = 100
		}
	}

	label := StatusActive
	switch {
	case wholeDays(day, end) <= 0:
		label = StatusExpired
	case wholeDays(day, end) <= expiringSoonDays:
		label = StatusExpiringSoon
	}

	return Status{
		DaysRemaining:   daysRemaining,
		DaysUsed:        daysUsed,
		TotalDays:       totalDays,
		ProgressPercent: progress,
		Label:           label,
	}
}

func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// PaymentPreview is the next-payment quote shown alongside the status.
type PaymentPreview struct {
	Amount int `json:"amount"`
	// Discounted marks that an active coupon application lowers the amount.
	Discounted bool `json:"discounted"`
	// LastDiscountedCycle marks the final cycle the coupon still covers.
	LastDiscountedCycle bool `json:"last_discounted_cycle"`
	// DiscountExpires marks an application that no longer covers the
	// upcoming cycle: the quote is full price.
	DiscountExpires bool `json:"discount_expires"`
}

// NextPaymentPreview quotes the upcoming charge. Eligibility is evaluated
// before pricing: an application that stops covering the next cycle quotes
// full price with the expiry flag instead of the discounted amount.
func NextPaymentPreview(planPrice int, app *models.CouponApplication) PaymentPreview {
	if app == nil || !app.IsActive {
		return PaymentPreview{Amount: planPrice}
	}

	e := pricing.NextCycleEligibility(app.RemainingMonths)
	if !e.Eligible {
		return PaymentPreview{Amount: planPrice, DiscountExpires: true}
	}

	d := app.Coupon.Discount()
	amount := pricing.DiscountedPrice(planPrice, d)
	return PaymentPreview{
		Amount:              amount,
		Discounted:          !d.IsZero(),
		LastDiscountedCycle: e.Exhausted,
	}
}
