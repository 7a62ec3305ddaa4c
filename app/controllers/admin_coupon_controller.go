package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/app/repository"
)

// generateCouponCode builds a fresh uppercase code when the admin leaves the
// field empty.
func generateCouponCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "DOK-" + raw[:8]
}

// couponSaveError maps a failed coupon write to its response. A code that
// hits the unique index is a state conflict the admin can fix, not a server
// fault.
func couponSaveError(c *fiber.Ctx, where string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return jsonError(c, fiber.StatusConflict, "duplicate_coupon_code", "A coupon with this code already exists")
	}
	return jsonInternalError(c, where, err)
}

// HandleAdminListCoupons pages through coupons, newest first.
func HandleAdminListCoupons(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	repo := repository.GetGlobalFactory().GetCouponRepository()
	coupons, err := repo.GetAll(offset, limit)
	if err != nil {
		return jsonInternalError(c, "admin list coupons", err)
	}
	total, err := repo.Count()
	if err != nil {
		return jsonInternalError(c, "admin list coupons", err)
	}
	return c.JSON(fiber.Map{"coupons": coupons, "total": total})
}

// HandleAdminCreateCoupon creates a coupon. Exactly one of discount_percent
// and flat_discount_amount must be positive; both-zero is rejected here and
// again at application time.
func HandleAdminCreateCoupon(c *fiber.Ctx) error {
	var coupon models.DiscountCoupon
	if err := c.BodyParser(&coupon); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed coupon payload")
	}
	coupon.ID = 0
	if strings.TrimSpace(coupon.Code) == "" {
		coupon.Code = generateCouponCode()
	}
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	if err := coupon.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	if err := repository.GetGlobalFactory().GetCouponRepository().Create(&coupon); err != nil {
		return couponSaveError(c, "admin create coupon", err)
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// HandleAdminUpdateCoupon updates a coupon definition. Applications already
// bound to subscriptions keep their remaining-months counters.
func HandleAdminUpdateCoupon(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetCouponRepository()
	coupon, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "coupon_not_found", "Coupon does not exist")
		}
		return jsonInternalError(c, "admin update coupon", err)
	}

	if err := c.BodyParser(coupon); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed coupon payload")
	}
	coupon.ID = id
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	if err := coupon.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	if err := repo.Update(coupon); err != nil {
		return couponSaveError(c, "admin update coupon", err)
	}
	return c.JSON(coupon)
}

// HandleAdminDeleteCoupon removes a coupon definition.
func HandleAdminDeleteCoupon(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	if err := repository.GetGlobalFactory().GetCouponRepository().Delete(id); err != nil {
		return jsonInternalError(c, "admin delete coupon", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
