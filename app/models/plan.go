package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Plan is an immutable billing tier. Price is whole KRW; Korean won has no
// minor unit. Plans referenced by subscriptions or payments must not be
// deleted; the repository enforces a reference-count guard.
type Plan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Price        int       `gorm:"not null" json:"price" validate:"gte=0"`
	DurationDays int       `gorm:"not null" json:"duration_days" validate:"gte=1"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
