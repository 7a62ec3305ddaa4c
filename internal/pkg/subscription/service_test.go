package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/internal/pkg/clock"
)

type fakeRepository struct {
	plans         map[uint]*models.Plan
	coupons       map[string]*models.DiscountCoupon
	subscriptions []*models.UserSubscription
	applications  []*models.CouponApplication
	payments      []*models.Payment
	nextID        uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		plans:   map[uint]*models.Plan{},
		coupons: map[string]*models.DiscountCoupon{},
		nextID:  1,
	}
}

func (f *fakeRepository) id() uint {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeRepository) WithinTx(fn func(Repository) error) error { return fn(f) }

func (f *fakeRepository) GetSubscriptionByID(id uint) (*models.UserSubscription, error) {
	for _, s := range f.subscriptions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, notFoundError("subscription not found")
}

func (f *fakeRepository) GetCurrentSubscriptionByUser(userID uint) (*models.UserSubscription, error) {
	var best *models.UserSubscription
	for _, s := range f.subscriptions {
		if s.UserID != userID {
			continue
		}
		if best == nil || s.EndDate.After(best.EndDate) {
			best = s
		}
	}
	return best, nil
}

func (f *fakeRepository) CreateSubscription(sub *models.UserSubscription) error {
	sub.ID = f.id()
	f.subscriptions = append(f.subscriptions, sub)
	return nil
}

func (f *fakeRepository) SaveSubscription(sub *models.UserSubscription) error { return nil }

func (f *fakeRepository) GetPlanByID(id uint) (*models.Plan, error) {
	if p, ok := f.plans[id]; ok {
		return p, nil
	}
	return nil, notFoundError("plan not found")
}

func (f *fakeRepository) GetCouponByCode(code string) (*models.DiscountCoupon, error) {
	return f.coupons[models.NormalizeCouponCode(code)], nil
}

func (f *fakeRepository) SaveCoupon(coupon *models.DiscountCoupon) error { return nil }

func (f *fakeRepository) GetActiveApplicationBySubscription(subscriptionID uint) (*models.CouponApplication, error) {
	for _, a := range f.applications {
		if a.SubscriptionID == subscriptionID && a.IsActive {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) CreateApplication(app *models.CouponApplication) error {
	app.ID = f.id()
	f.applications = append(f.applications, app)
	return nil
}

func (f *fakeRepository) SaveApplication(app *models.CouponApplication) error { return nil }

func (f *fakeRepository) CreatePayment(p *models.Payment) error {
	p.ID = f.id()
	f.payments = append(f.payments, p)
	return nil
}

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepository) *Service {
	return NewService(repo, clock.Fixed(testNow), 7)
}

func seedPlan(repo *fakeRepository, price, days int) *models.Plan {
	plan := &models.Plan{ID: repo.id(), Name: "Standard", Price: price, DurationDays: days, IsActive: true}
	repo.plans[plan.ID] = plan
	return plan
}

func TestRegisterOpensWindow(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)

	sub, err := svc.Register(context.Background(), 1, plan.ID)
	require.NoError(t, err)
	assert.True(t, sub.AutoRenew)
	assert.Equal(t, models.RecurringStatusActive, sub.RecurringStatus)
	assert.Equal(t, 30, int(sub.EndDate.Sub(sub.StartDate).Hours()/24))
	require.NotNil(t, sub.NextBillingDate)
	assert.True(t, sub.NextBillingDate.Equal(sub.EndDate))
}

func TestCancelKeepsWindowOpen(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	sub, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)
	end := sub.EndDate

	cancelled, err := svc.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.False(t, cancelled.AutoRenew)
	assert.Equal(t, models.RecurringStatusCancelled, cancelled.RecurringStatus)
	assert.Nil(t, cancelled.NextBillingDate)
	assert.True(t, cancelled.EndDate.Equal(end))
}

func TestCancelWithoutSubscription(t *testing.T) {
	svc := newTestService(newFakeRepository())
	_, err := svc.Cancel(context.Background(), 42)
	require.ErrorIs(t, err, ErrNoSubscription)
}

func seedCoupon(repo *fakeRepository, coupon models.DiscountCoupon) *models.DiscountCoupon {
	coupon.ID = repo.id()
	repo.coupons[coupon.Code] = &coupon
	return repo.coupons[coupon.Code]
}

func TestApplyCouponValidation(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)

	past := testNow.AddDate(0, 0, -1)
	seedCoupon(repo, models.DiscountCoupon{Code: "GONE", Active: true, DiscountPercent: 10, Deadline: &past})
	seedCoupon(repo, models.DiscountCoupon{Code: "OFF", Active: false, DiscountPercent: 10})
	seedCoupon(repo, models.DiscountCoupon{Code: "EMPTY", Active: true})

	_, err = svc.ApplyCoupon(ctx, 1, "NOPE")
	require.ErrorIs(t, err, ErrCouponNotFound)
	_, err = svc.ApplyCoupon(ctx, 1, "GONE")
	require.ErrorIs(t, err, ErrCouponExpired)
	_, err = svc.ApplyCoupon(ctx, 1, "OFF")
	require.ErrorIs(t, err, ErrCouponInactive)
	_, err = svc.ApplyCoupon(ctx, 1, "EMPTY")
	require.ErrorIs(t, err, ErrCouponZeroDiscount)
}

func TestApplyCouponOneTimeUseDeactivates(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)
	coupon := seedCoupon(repo, models.DiscountCoupon{
		Code: "WELCOME", Active: true, DiscountPercent: 20, OneTimeUse: true,
		RecurringType: "FIXED_MONTHS", RecurringMonths: intPtr(3),
	})

	app, err := svc.ApplyCoupon(ctx, 1, "welcome ")
	require.NoError(t, err)
	require.NotNil(t, app.RemainingMonths)
	assert.Equal(t, 3, *app.RemainingMonths)
	assert.False(t, coupon.Active, "one-time-use coupon should deactivate after binding")

	// A second application on the same subscription is refused.
	seedCoupon(repo, models.DiscountCoupon{Code: "OTHER", Active: true, DiscountPercent: 10})
	_, err = svc.ApplyCoupon(ctx, 1, "OTHER")
	require.ErrorIs(t, err, ErrCouponInUse)
}

func intPtr(v int) *int { return &v }

func TestProcessRenewalWalksCountdown(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	sub, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)
	seedCoupon(repo, models.DiscountCoupon{
		Code: "SAVE20", Active: true, DiscountPercent: 20,
		RecurringType: "FIXED_MONTHS", RecurringMonths: intPtr(2),
	})
	app, err := svc.ApplyCoupon(ctx, 1, "SAVE20")
	require.NoError(t, err)

	// Cycle 1: discounted, one month left afterwards.
	res, err := svc.ProcessRenewal(ctx, sub.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 8000, res.Amount)
	assert.Equal(t, 2000, res.DiscountAmount)
	require.NotNil(t, app.RemainingMonths)
	assert.Equal(t, 1, *app.RemainingMonths)
	assert.True(t, app.IsActive)

	// Cycle 2: last discounted cycle, application deactivates.
	res, err = svc.ProcessRenewal(ctx, sub.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 8000, res.Amount)
	assert.False(t, app.IsActive)
	assert.Equal(t, 2, app.AppliedCount)

	// Cycle 3: full price, no coupon.
	res, err = svc.ProcessRenewal(ctx, sub.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 10000, res.Amount)
	assert.Nil(t, res.CouponID)

	assert.Len(t, repo.payments, 3)
	// Window extended by three cycles.
	assert.Equal(t, 120, int(sub.EndDate.Sub(sub.StartDate).Hours()/24))
}

func TestProcessRenewalMaxRecurringUses(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	sub, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)
	seedCoupon(repo, models.DiscountCoupon{
		Code: "CAP1", Active: true, DiscountPercent: 50,
		RecurringType: "UNLIMITED", MaxRecurringUses: intPtr(1),
	})
	app, err := svc.ApplyCoupon(ctx, 1, "CAP1")
	require.NoError(t, err)

	res, err := svc.ProcessRenewal(ctx, sub.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 5000, res.Amount)
	assert.False(t, app.IsActive, "application exhausts after max recurring uses")

	res, err = svc.ProcessRenewal(ctx, sub.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 10000, res.Amount)
}

func TestProcessRenewalFailureOpensGracePeriod(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	sub, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)
	end := sub.EndDate

	res, err := svc.ProcessRenewal(ctx, sub.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RecurringStatusPendingPayment, res.Subscription.RecurringStatus)
	require.NotNil(t, res.Subscription.GracePeriodEnd)
	assert.True(t, res.Subscription.EndDate.Equal(end), "failed payment must not extend the window")
	assert.Empty(t, repo.payments)

	// PENDING_PAYMENT implies a grace deadline (model invariant).
	assert.True(t, res.Subscription.InGracePeriod(testNow))

	// A successful retry clears the grace period.
	res, err = svc.ProcessRenewal(ctx, sub.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.RecurringStatusActive, res.Subscription.RecurringStatus)
	assert.Nil(t, res.Subscription.GracePeriodEnd)
}

func TestProcessRenewalCancelledSubscription(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	sub, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, 1)
	require.NoError(t, err)

	_, err = svc.ProcessRenewal(ctx, sub.ID, false)
	require.ErrorIs(t, err, ErrNotRenewable)
}

func TestStatusViewWithGraceWarningAndPreview(t *testing.T) {
	repo := newFakeRepository()
	plan := seedPlan(repo, 10000, 30)
	svc := newTestService(repo)
	ctx := context.Background()

	sub, err := svc.Register(ctx, 1, plan.ID)
	require.NoError(t, err)
	sub.Plan = *plan
	seedCoupon(repo, models.DiscountCoupon{Code: "SAVE20", Active: true, DiscountPercent: 20, RecurringType: "UNLIMITED"})
	_, err = svc.ApplyCoupon(ctx, 1, "SAVE20")
	require.NoError(t, err)

	view, err := svc.StatusView(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, view.Status.Label)
	require.NotNil(t, view.NextPayment)
	assert.Equal(t, 8000, view.NextPayment.Amount)
	assert.Nil(t, view.PaymentFailure)

	// Failed payment inside the grace window surfaces the warning without
	// touching the day math.
	before := view.Status
	_, err = svc.ProcessRenewal(ctx, sub.ID, false)
	require.NoError(t, err)
	view, err = svc.StatusView(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, view.PaymentFailure)
	assert.Equal(t, before, view.Status)
}
