package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dokseo/dokseo/internal/pkg/pricing"
)

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "WELCOME10", NormalizeCouponCode("  welcome10 "))
	assert.Equal(t, "DOK-ABC123", NormalizeCouponCode("dok-abc123"))
}

func TestDiscountCouponValidate(t *testing.T) {
	three := 3

	tests := []struct {
		name    string
		coupon  DiscountCoupon
		wantErr bool
	}{
		{
			name:   "percent only",
			coupon: DiscountCoupon{Code: "TEN", DiscountPercent: 10, RecurringType: pricing.RecurringOneTime},
		},
		{
			name:   "flat only",
			coupon: DiscountCoupon{Code: "FLAT", FlatDiscountAmount: 3000, RecurringType: pricing.RecurringOneTime},
		},
		{
			name:    "both set",
			coupon:  DiscountCoupon{Code: "BOTH", DiscountPercent: 10, FlatDiscountAmount: 3000, RecurringType: pricing.RecurringOneTime},
			wantErr: true,
		},
		{
			name:    "both zero",
			coupon:  DiscountCoupon{Code: "NONE", RecurringType: pricing.RecurringOneTime},
			wantErr: true,
		},
		{
			name:    "percent over 100",
			coupon:  DiscountCoupon{Code: "BIG", DiscountPercent: 120, RecurringType: pricing.RecurringOneTime},
			wantErr: true,
		},
		{
			name:    "fixed months without count",
			coupon:  DiscountCoupon{Code: "FIXED", DiscountPercent: 10, RecurringType: pricing.RecurringFixedMonths},
			wantErr: true,
		},
		{
			name:   "fixed months with count",
			coupon: DiscountCoupon{Code: "FIXED3", DiscountPercent: 10, RecurringType: pricing.RecurringFixedMonths, RecurringMonths: &three},
		},
		{
			name:    "lowercase code",
			coupon:  DiscountCoupon{Code: "lower", DiscountPercent: 10, RecurringType: pricing.RecurringOneTime},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.coupon.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiscountCouponIsExpired(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&DiscountCoupon{}).IsExpired(now), "no deadline never expires")
	assert.True(t, (&DiscountCoupon{Deadline: &past}).IsExpired(now))
	assert.False(t, (&DiscountCoupon{Deadline: &future}).IsExpired(now))
}

func TestInitialRemainingMonths(t *testing.T) {
	five := 5

	oneTime := DiscountCoupon{RecurringType: pricing.RecurringOneTime}
	got := oneTime.InitialRemainingMonths()
	assert.NotNil(t, got)
	assert.Equal(t, 1, *got)

	fixed := DiscountCoupon{RecurringType: pricing.RecurringFixedMonths, RecurringMonths: &five}
	got = fixed.InitialRemainingMonths()
	assert.NotNil(t, got)
	assert.Equal(t, 5, *got)

	unlimited := DiscountCoupon{RecurringType: pricing.RecurringUnlimited}
	assert.Nil(t, unlimited.InitialRemainingMonths())
}
