package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/internal/pkg/clock"
	"github.com/dokseo/dokseo/internal/pkg/env"
	"github.com/dokseo/dokseo/internal/pkg/pricing"
)

// Coupon application and renewal failures, surfaced as user-actionable
// messages by the HTTP layer.
var (
	ErrNoSubscription     = errors.New("no subscription found for user")
	ErrCouponNotFound     = errors.New("coupon code does not exist")
	ErrCouponInactive     = errors.New("coupon is no longer active")
	ErrCouponExpired      = errors.New("coupon deadline has passed")
	ErrCouponZeroDiscount = errors.New("coupon carries no discount")
	ErrCouponInUse        = errors.New("subscription already has an active coupon")
	ErrNotRenewable       = errors.New("subscription is not set to renew")
)

// Service owns subscription lifecycle and coupon application. Renewal and
// coupon decrements run as single transactions so two concurrent webhook
// deliveries cannot double-charge or double-decrement.
type Service struct {
	repo      Repository
	clk       clock.Clock
	graceDays int
}

// NewService creates a subscription service from an injected repository and
// clock.
func NewService(repo Repository, clk clock.Clock, graceDays int) *Service {
	if graceDays <= 0 {
		graceDays = 7
	}
	return &Service{repo: repo, clk: clk, graceDays: graceDays}
}

// NewServiceFromDB creates a subscription service from a GORM DB handle with
// the system clock and the configured grace period.
func NewServiceFromDB(db *gorm.DB) *Service {
	days := env.GetEnvInt("BILLING_GRACE_PERIOD_DAYS", 7)
	return NewService(NewRepository(db), clock.System(), days)
}

// Register opens a subscription window for the plan starting today. The
// window length comes from the plan; the first renewal is due when it ends.
func (s *Service) Register(ctx context.Context, userID, planID uint) (*models.UserSubscription, error) {
	_ = ctx
	plan, err := s.repo.GetPlanByID(planID)
	if err != nil {
		return nil, err
	}

	start := clock.StartOfDay(s.clk.Now())
	end := start.AddDate(0, 0, plan.DurationDays)
	sub := &models.UserSubscription{
		UserID:          userID,
		PlanID:          plan.ID,
		StartDate:       start,
		EndDate:         end,
		AutoRenew:       true,
		RecurringStatus: models.RecurringStatusActive,
		NextBillingDate: &end,
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}
	sub.Plan = *plan
	return sub, nil
}

// Cancel turns off auto-renew. The subscription stays usable until EndDate
// and then lapses; nothing else is mutated.
func (s *Service) Cancel(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.repo.GetCurrentSubscriptionByUser(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoSubscription
	}
	sub.AutoRenew = false
	sub.RecurringStatus = models.RecurringStatusCancelled
	sub.NextBillingDate = nil
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// CancelByID turns off auto-renew for one subscription. Used by the webhook
// flow when the provider reports a cancellation.
func (s *Service) CancelByID(ctx context.Context, subscriptionID uint) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.repo.GetSubscriptionByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	sub.AutoRenew = false
	sub.RecurringStatus = models.RecurringStatusCancelled
	sub.NextBillingDate = nil
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// GraceWarning surfaces a failed automatic payment still inside its retry
// window.
type GraceWarning struct {
	GracePeriodEnd time.Time `json:"grace_period_end"`
}

// View is the full subscription snapshot served to the client.
type View struct {
	Subscription   *models.UserSubscription `json:"subscription"`
	Status         Status                   `json:"status"`
	NextPayment    *PaymentPreview          `json:"next_payment,omitempty"`
	PaymentFailure *GraceWarning            `json:"payment_failure,omitempty"`
}

// StatusView resolves the user's current subscription into day progress, the
// next-payment quote and any grace-period warning.
func (s *Service) StatusView(ctx context.Context, userID uint) (*View, error) {
	_ = ctx
	sub, err := s.repo.GetCurrentSubscriptionByUser(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoSubscription
	}

	now := s.clk.Now()
	view := &View{
		Subscription: sub,
		Status:       ResolveStatus(sub.StartDate, sub.EndDate, now),
	}

	if sub.AutoRenew && sub.RecurringStatus != models.RecurringStatusCancelled {
		app, err := s.repo.GetActiveApplicationBySubscription(sub.ID)
		if err != nil {
			return nil, err
		}
		preview := NextPaymentPreview(sub.Plan.Price, app)
		view.NextPayment = &preview
	}

	if sub.InGracePeriod(now) {
		view.PaymentFailure = &GraceWarning{GracePeriodEnd: *sub.GracePeriodEnd}
	}
	return view, nil
}

// ApplyCoupon binds a coupon to the user's current subscription for its
// upcoming billing cycles. One-time-use coupons deactivate after binding.
// A coupon that carries no discount is rejected here too, not only in the
// admin form.
func (s *Service) ApplyCoupon(ctx context.Context, userID uint, code string) (*models.CouponApplication, error) {
	_ = ctx
	var application *models.CouponApplication
	err := s.repo.WithinTx(func(tx Repository) error {
		sub, err := tx.GetCurrentSubscriptionByUser(userID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrNoSubscription
		}

		coupon, err := tx.GetCouponByCode(code)
		if err != nil {
			return err
		}
		if coupon == nil {
			return ErrCouponNotFound
		}
		if !coupon.Active {
			return ErrCouponInactive
		}
		if coupon.IsExpired(s.clk.Now()) {
			return ErrCouponExpired
		}
		if coupon.Discount().IsZero() {
			return ErrCouponZeroDiscount
		}

		existing, err := tx.GetActiveApplicationBySubscription(sub.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrCouponInUse
		}

		application = &models.CouponApplication{
			CouponID:        coupon.ID,
			SubscriptionID:  sub.ID,
			IsActive:        true,
			RemainingMonths: coupon.InitialRemainingMonths(),
		}
		if err := tx.CreateApplication(application); err != nil {
			return err
		}
		application.Coupon = *coupon

		if coupon.OneTimeUse {
			coupon.Active = false
			return tx.SaveCoupon(coupon)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return application, nil
}

// RenewalResult reports what one processed billing cycle charged.
type RenewalResult struct {
	Subscription   *models.UserSubscription `json:"subscription"`
	Amount         int                      `json:"amount"`
	DiscountAmount int                      `json:"discount_amount"`
	CouponID       *uint                    `json:"coupon_id,omitempty"`
}

// ProcessRenewal applies one billing-cycle outcome reported by the payment
// provider. On success it records the payment, extends the window, advances
// the billing date and walks the coupon application's countdown. On failure
// it opens a grace period. Everything runs in one transaction.
func (s *Service) ProcessRenewal(ctx context.Context, subscriptionID uint, paymentSucceeded bool) (*RenewalResult, error) {
	_ = ctx
	var result *RenewalResult
	err := s.repo.WithinTx(func(tx Repository) error {
		sub, err := tx.GetSubscriptionByID(subscriptionID)
		if err != nil {
			return err
		}
		if !sub.AutoRenew || sub.RecurringStatus == models.RecurringStatusCancelled {
			return ErrNotRenewable
		}

		now := s.clk.Now()
		if !paymentSucceeded {
			grace := clock.StartOfDay(now).AddDate(0, 0, s.graceDays)
			sub.RecurringStatus = models.RecurringStatusPendingPayment
			sub.GracePeriodEnd = &grace
			if err := tx.SaveSubscription(sub); err != nil {
				return err
			}
			result = &RenewalResult{Subscription: sub}
			return nil
		}

		plan, err := tx.GetPlanByID(sub.PlanID)
		if err != nil {
			return err
		}
		app, err := tx.GetActiveApplicationBySubscription(sub.ID)
		if err != nil {
			return err
		}

		amount := plan.Price
		discount := 0
		var couponID *uint
		if app != nil {
			e := pricing.NextCycleEligibility(app.RemainingMonths)
			if e.Eligible {
				d := app.Coupon.Discount()
				discount = d.Amount(plan.Price)
				amount = plan.Price - discount
				couponID = &app.CouponID
				app.AppliedCount++
			}
			app.RemainingMonths = e.RemainingAfter
			if e.Exhausted || maxUsesReached(app) {
				app.IsActive = false
			}
			if err := tx.SaveApplication(app); err != nil {
				return err
			}
		}

		if err := tx.CreatePayment(&models.Payment{
			UserID:         sub.UserID,
			SubscriptionID: sub.ID,
			PlanID:         plan.ID,
			Amount:         amount,
			DiscountAmount: discount,
			CouponID:       couponID,
			Status:         models.PaymentStatusPaid,
			PaidAt:         now,
		}); err != nil {
			return err
		}

		newEnd := sub.EndDate.AddDate(0, 0, plan.DurationDays)
		sub.EndDate = newEnd
		sub.NextBillingDate = &newEnd
		sub.RecurringStatus = models.RecurringStatusActive
		sub.GracePeriodEnd = nil
		if err := tx.SaveSubscription(sub); err != nil {
			return err
		}

		result = &RenewalResult{
			Subscription:   sub,
			Amount:         amount,
			DiscountAmount: discount,
			CouponID:       couponID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func maxUsesReached(app *models.CouponApplication) bool {
	limit := app.Coupon.MaxRecurringUses
	return limit != nil && app.AppliedCount >= *limit
}
