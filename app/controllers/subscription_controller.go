package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/repository"
	"github.com/dokseo/dokseo/internal/pkg/database"
	"github.com/dokseo/dokseo/internal/pkg/subscription"
	"github.com/dokseo/dokseo/internal/pkg/usercontext"
)

// HandleGetSubscriptionStatus returns the resolved status view: day progress,
// next-payment preview and any payment-failure warning. Views are cached per
// user and invalidated by every mutating endpoint.
func HandleGetSubscriptionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if cached := cachedStatusView(userCtx.UserID); cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	view, err := svc.StatusView(c.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoSubscription) {
			return jsonError(c, fiber.StatusNotFound, "no_subscription", "No subscription found")
		}
		return jsonInternalError(c, "subscription status", err)
	}

	storeStatusView(userCtx.UserID, view)
	return c.JSON(view)
}

type registerSubscriptionRequest struct {
	PlanID uint `json:"plan_id"`
}

// HandleRegisterSubscription opens a subscription window for a plan starting
// today.
func HandleRegisterSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req registerSubscriptionRequest
	if err := c.BodyParser(&req); err != nil || req.PlanID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "plan_id is required")
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	sub, err := svc.Register(c.Context(), userCtx.UserID, req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "plan_not_found", "Plan does not exist")
		}
		return jsonInternalError(c, "subscription register", err)
	}

	InvalidateStatusCache(userCtx.UserID)
	invalidateSessionTier(c)
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// HandleCancelSubscription turns off auto-renew; access runs until the paid
// window ends.
func HandleCancelSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := subscription.NewServiceFromDB(database.GetDB())
	sub, err := svc.Cancel(c.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoSubscription) {
			return jsonError(c, fiber.StatusNotFound, "no_subscription", "No subscription found")
		}
		return jsonInternalError(c, "subscription cancel", err)
	}

	InvalidateStatusCache(userCtx.UserID)
	invalidateSessionTier(c)
	return c.JSON(sub)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// HandleApplyCoupon binds a coupon code to the caller's subscription for its
// upcoming billing cycles.
func HandleApplyCoupon(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req applyCouponRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "code is required")
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	app, err := svc.ApplyCoupon(c.Context(), userCtx.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrNoSubscription):
			return jsonError(c, fiber.StatusNotFound, "no_subscription", "No subscription found")
		case errors.Is(err, subscription.ErrCouponNotFound):
			return jsonError(c, fiber.StatusNotFound, "coupon_not_found", "Coupon code does not exist")
		case errors.Is(err, subscription.ErrCouponInactive),
			errors.Is(err, subscription.ErrCouponExpired),
			errors.Is(err, subscription.ErrCouponZeroDiscount):
			return jsonError(c, fiber.StatusBadRequest, "coupon_not_applicable", err.Error())
		case errors.Is(err, subscription.ErrCouponInUse):
			return jsonError(c, fiber.StatusConflict, "coupon_in_use", err.Error())
		}
		return jsonInternalError(c, "apply coupon", err)
	}

	InvalidateStatusCache(userCtx.UserID)
	invalidateSessionTier(c)
	return c.Status(fiber.StatusCreated).JSON(app)
}

// HandleListPlans returns the plans open for registration. Public: the
// pricing page renders from this.
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().GetActive()
	if err != nil {
		return jsonInternalError(c, "list plans", err)
	}
	return c.JSON(fiber.Map{"plans": plans})
}
