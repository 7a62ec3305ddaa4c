package repository

import (
	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
)

// couponRepository implements the CouponRepository interface
type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a new coupon repository instance
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

// Create creates a new coupon in the database
func (r *couponRepository) Create(coupon *models.DiscountCoupon) error {
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	return r.db.Create(coupon).Error
}

// GetByID retrieves a coupon by its ID
func (r *couponRepository) GetByID(id uint) (*models.DiscountCoupon, error) {
	var coupon models.DiscountCoupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetByCode retrieves a coupon by its normalized code
func (r *couponRepository) GetByCode(code string) (*models.DiscountCoupon, error) {
	var coupon models.DiscountCoupon
	err := r.db.Where("code = ?", models.NormalizeCouponCode(code)).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetAll retrieves coupons with pagination, newest first
func (r *couponRepository) GetAll(offset, limit int) ([]models.DiscountCoupon, error) {
	var coupons []models.DiscountCoupon
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&coupons).Error
	return coupons, err
}

// Update updates an existing coupon in the database
func (r *couponRepository) Update(coupon *models.DiscountCoupon) error {
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	return r.db.Save(coupon).Error
}

// Delete removes a coupon; existing applications keep their own state
func (r *couponRepository) Delete(id uint) error {
	return r.db.Delete(&models.DiscountCoupon{}, id).Error
}

// Count returns the total number of coupons
func (r *couponRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.DiscountCoupon{}).Count(&count).Error
	return count, err
}
