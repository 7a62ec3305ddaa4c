package models

import "time"

// CouponApplication binds a coupon to one subscription's recurring billing.
// RemainingMonths nil means unlimited recurrence; 0 means the cycle being
// charged is the last discounted one. The renewal flow decrements the counter
// and flips IsActive off once it is spent or MaxRecurringUses is exhausted.
type CouponApplication struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CouponID        uint      `gorm:"not null;index" json:"coupon_id"`
	SubscriptionID  uint      `gorm:"not null;index:ux_coupon_applications_sub_active,priority:1" json:"subscription_id"`
	IsActive        bool      `gorm:"default:true;index:ux_coupon_applications_sub_active,priority:2" json:"is_active"`
	AppliedCount    int       `gorm:"not null;default:0" json:"applied_count"`
	RemainingMonths *int      `gorm:"default:null" json:"remaining_months,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Coupon DiscountCoupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
}
