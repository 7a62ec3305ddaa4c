package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
)

// ErrPlanInUse is returned when deleting a plan that subscriptions or
// payments still reference.
var ErrPlanInUse = errors.New("plan is referenced by subscriptions or payments")

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan in the database
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves all plans ordered by price
func (r *planRepository) GetAll() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Order("price ASC").Find(&plans).Error
	return plans, err
}

// GetActive retrieves plans currently offered for registration
func (r *planRepository) GetActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

// Update updates an existing plan in the database
func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// CountReferences counts subscriptions and payments pointing at a plan
func (r *planRepository) CountReferences(id uint) (int64, error) {
	var subs int64
	if err := r.db.Model(&models.UserSubscription{}).Where("plan_id = ?", id).Count(&subs).Error; err != nil {
		return 0, err
	}
	var payments int64
	if err := r.db.Model(&models.Payment{}).Where("plan_id = ?", id).Count(&payments).Error; err != nil {
		return 0, err
	}
	return subs + payments, nil
}

// Delete removes a plan unless it is still referenced
func (r *planRepository) Delete(id uint) error {
	refs, err := r.CountReferences(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrPlanInUse
	}
	return r.db.Delete(&models.Plan{}, id).Error
}
