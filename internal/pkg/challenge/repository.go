package challenge

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/internal/pkg/clock"
)

// Repository provides DB operations used by the challenge service. Lock and
// request getters return (nil, nil) when no row exists so the policy checks
// can treat absence as a state, not an error.
type Repository interface {
	WithinTx(fn func(Repository) error) error

	GetLock(userID uint, levelType string, p clock.Period) (*models.UserLevelLock, error)
	CreateLock(lock *models.UserLevelLock) error
	SaveLock(lock *models.UserLevelLock) error

	GetPendingRequest(userID uint, levelType string, p clock.Period) (*models.LevelChangeRequest, error)
	GetRequestByID(id uint) (*models.LevelChangeRequest, error)
	CreateRequest(req *models.LevelChangeRequest) error
	SaveRequest(req *models.LevelChangeRequest) error
	DeleteRequest(id uint) error
	ListPendingRequests(offset, limit int) ([]models.LevelChangeRequest, error)

	ResetScore(userID uint, levelType string, p clock.Period) error
	GetScore(userID uint, levelType string, p clock.Period) (*models.ChallengeScore, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a challenge repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithinTx(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetLock(userID uint, levelType string, p clock.Period) (*models.UserLevelLock, error) {
	var lock models.UserLevelLock
	err := r.db.
		Where("user_id = ? AND level_type = ? AND year = ? AND month = ?", userID, levelType, p.Year, int(p.Month)).
		First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (r *gormRepository) CreateLock(lock *models.UserLevelLock) error {
	return r.db.Create(lock).Error
}

func (r *gormRepository) SaveLock(lock *models.UserLevelLock) error {
	return r.db.Save(lock).Error
}

func (r *gormRepository) GetPendingRequest(userID uint, levelType string, p clock.Period) (*models.LevelChangeRequest, error) {
	var req models.LevelChangeRequest
	err := r.db.
		Where("user_id = ? AND level_type = ? AND year = ? AND month = ? AND status = ?",
			userID, levelType, p.Year, int(p.Month), models.ChangeRequestPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) GetRequestByID(id uint) (*models.LevelChangeRequest, error) {
	var req models.LevelChangeRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) CreateRequest(req *models.LevelChangeRequest) error {
	return r.db.Create(req).Error
}

func (r *gormRepository) SaveRequest(req *models.LevelChangeRequest) error {
	return r.db.Save(req).Error
}

func (r *gormRepository) DeleteRequest(id uint) error {
	return r.db.Delete(&models.LevelChangeRequest{}, id).Error
}

func (r *gormRepository) ListPendingRequests(offset, limit int) ([]models.LevelChangeRequest, error) {
	var reqs []models.LevelChangeRequest
	err := r.db.
		Where("status = ?", models.ChangeRequestPending).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&reqs).Error
	return reqs, err
}

func (r *gormRepository) ResetScore(userID uint, levelType string, p clock.Period) error {
	return r.db.Model(&models.ChallengeScore{}).
		Where("user_id = ? AND level_type = ? AND year = ? AND month = ?", userID, levelType, p.Year, int(p.Month)).
		Update("points", 0).Error
}

func (r *gormRepository) GetScore(userID uint, levelType string, p clock.Period) (*models.ChallengeScore, error) {
	var score models.ChallengeScore
	err := r.db.
		Where("user_id = ? AND level_type = ? AND year = ? AND month = ?", userID, levelType, p.Year, int(p.Month)).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}
