package models

import "time"

const (
	RecurringStatusActive         = "ACTIVE"
	RecurringStatusCancelled      = "CANCELLED"
	RecurringStatusPendingPayment = "PENDING_PAYMENT"
)

// UserSubscription is one user's access window to the platform.
// Invariants: EndDate > StartDate; PENDING_PAYMENT implies GracePeriodEnd is
// set. A subscription whose EndDate passes with AutoRenew off simply lapses.
type UserSubscription struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	PlanID          uint       `gorm:"not null;index" json:"plan_id"`
	StartDate       time.Time  `gorm:"type:timestamp;not null" json:"start_date"`
	EndDate         time.Time  `gorm:"type:timestamp;not null" json:"end_date"`
	AutoRenew       bool       `gorm:"default:true" json:"auto_renew"`
	RecurringStatus string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"recurring_status"`
	NextBillingDate *time.Time `gorm:"type:timestamp;default:null" json:"next_billing_date,omitempty"`
	GracePeriodEnd  *time.Time `gorm:"type:timestamp;default:null" json:"grace_period_end,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Plan Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// InGracePeriod reports whether a failed payment is still within its retry
// window at the given time.
func (s *UserSubscription) InGracePeriod(now time.Time) bool {
	return s.RecurringStatus == RecurringStatusPendingPayment &&
		s.GracePeriodEnd != nil && now.Before(*s.GracePeriodEnd)
}
