package repository

import (
	"github.com/dokseo/dokseo/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// PlanRepository defines the interface for billing-plan database operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetAll() ([]models.Plan, error)
	GetActive() ([]models.Plan, error)
	Update(plan *models.Plan) error
	// Delete removes a plan; plans referenced by subscriptions or payments
	// return ErrPlanInUse instead.
	Delete(id uint) error
	CountReferences(id uint) (int64, error)
}

// CouponRepository defines the interface for discount-coupon database operations
type CouponRepository interface {
	Create(coupon *models.DiscountCoupon) error
	GetByID(id uint) (*models.DiscountCoupon, error)
	GetByCode(code string) (*models.DiscountCoupon, error)
	GetAll(offset, limit int) ([]models.DiscountCoupon, error)
	Update(coupon *models.DiscountCoupon) error
	Delete(id uint) error
	Count() (int64, error)
}
