package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dokseo/dokseo/internal/pkg/pricing"
)

// DiscountCoupon is an admin-managed discount code. Exactly one of
// DiscountPercent and FlatDiscountAmount is positive; the admin form rejects
// anything else and application time re-checks via Discount().
type DiscountCoupon struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Code               string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required,min=3,max=50,uppercase"`
	DiscountPercent    int        `gorm:"not null;default:0" json:"discount_percent" validate:"gte=0,lte=100"`
	FlatDiscountAmount int        `gorm:"not null;default:0" json:"flat_discount_amount" validate:"gte=0"`
	Active             bool       `gorm:"default:true;index" json:"active"`
	OneTimeUse         bool       `gorm:"default:false" json:"one_time_use"`
	Deadline           *time.Time `gorm:"type:timestamp;default:null" json:"deadline,omitempty"`
	RecurringType      string     `gorm:"type:varchar(20);not null;default:'ONE_TIME'" json:"recurring_type" validate:"oneof=ONE_TIME FIXED_MONTHS UNLIMITED"`
	RecurringMonths    *int       `gorm:"default:null" json:"recurring_months,omitempty"`
	MaxRecurringUses   *int       `gorm:"default:null" json:"max_recurring_uses,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate checks field constraints plus the rules the struct tags cannot
// express: exactly one discount kind must be positive, and FIXED_MONTHS
// coupons need a month count.
func (c *DiscountCoupon) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if (c.DiscountPercent > 0) == (c.FlatDiscountAmount > 0) {
		return errors.New("exactly one of discount_percent and flat_discount_amount must be positive")
	}
	if c.RecurringType == pricing.RecurringFixedMonths && (c.RecurringMonths == nil || *c.RecurringMonths < 1) {
		return errors.New("recurring_months must be at least 1 for FIXED_MONTHS coupons")
	}
	return nil
}

// NormalizeCouponCode canonicalizes user-entered codes: trimmed, uppercased.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Discount returns the coupon's discount as a tagged value.
func (c *DiscountCoupon) Discount() pricing.Discount {
	return pricing.NewDiscount(c.DiscountPercent, c.FlatDiscountAmount)
}

// IsExpired reports whether the coupon deadline has passed at the given time.
// Coupons without a deadline never expire.
func (c *DiscountCoupon) IsExpired(now time.Time) bool {
	return c.Deadline != nil && now.After(*c.Deadline)
}

// InitialRemainingMonths derives the months counter a fresh application
// starts with. nil means unlimited recurrence.
func (c *DiscountCoupon) InitialRemainingMonths() *int {
	switch c.RecurringType {
	case pricing.RecurringUnlimited:
		return nil
	case pricing.RecurringFixedMonths:
		if c.RecurringMonths != nil && *c.RecurringMonths > 0 {
			m := *c.RecurringMonths
			return &m
		}
		one := 1
		return &one
	default:
		one := 1
		return &one
	}
}
