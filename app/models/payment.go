package models

import "time"

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusFailed = "failed"
)

// Payment records one billing-cycle charge, including the amount actually
// charged after any coupon discount.
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	SubscriptionID uint      `gorm:"not null;index" json:"subscription_id"`
	PlanID         uint      `gorm:"not null;index" json:"plan_id"`
	Amount         int       `gorm:"not null" json:"amount"`
	DiscountAmount int       `gorm:"not null;default:0" json:"discount_amount"`
	CouponID       *uint     `gorm:"default:null;index" json:"coupon_id,omitempty"`
	Status         string    `gorm:"type:varchar(20);not null;default:'paid'" json:"status"`
	PaidAt         time.Time `gorm:"type:timestamp;not null" json:"paid_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
