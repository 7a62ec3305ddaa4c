package subscription

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
)

// Repository provides DB operations used by the subscription service.
type Repository interface {
	WithinTx(fn func(Repository) error) error

	GetSubscriptionByID(id uint) (*models.UserSubscription, error)
	GetCurrentSubscriptionByUser(userID uint) (*models.UserSubscription, error)
	CreateSubscription(sub *models.UserSubscription) error
	SaveSubscription(sub *models.UserSubscription) error

	GetPlanByID(id uint) (*models.Plan, error)

	GetCouponByCode(code string) (*models.DiscountCoupon, error)
	SaveCoupon(coupon *models.DiscountCoupon) error

	GetActiveApplicationBySubscription(subscriptionID uint) (*models.CouponApplication, error)
	CreateApplication(app *models.CouponApplication) error
	SaveApplication(app *models.CouponApplication) error

	CreatePayment(p *models.Payment) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithinTx(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetSubscriptionByID(id uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := r.db.Preload("Plan").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetCurrentSubscriptionByUser returns the user's most recent subscription,
// or (nil, nil) when the user never subscribed.
func (r *gormRepository) GetCurrentSubscriptionByUser(userID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("end_date DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(sub *models.UserSubscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) SaveSubscription(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) GetPlanByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetCouponByCode(code string) (*models.DiscountCoupon, error) {
	var coupon models.DiscountCoupon
	err := r.db.Where("code = ?", models.NormalizeCouponCode(code)).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *gormRepository) SaveCoupon(coupon *models.DiscountCoupon) error {
	return r.db.Save(coupon).Error
}

func (r *gormRepository) GetActiveApplicationBySubscription(subscriptionID uint) (*models.CouponApplication, error) {
	var app models.CouponApplication
	err := r.db.Preload("Coupon").
		Where("subscription_id = ? AND is_active = ?", subscriptionID, true).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *gormRepository) CreateApplication(app *models.CouponApplication) error {
	return r.db.Create(app).Error
}

func (r *gormRepository) SaveApplication(app *models.CouponApplication) error {
	return r.db.Save(app).Error
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}
