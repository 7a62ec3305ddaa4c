package models

import "time"

const (
	ChangeRequestPending  = "PENDING"
	ChangeRequestApproved = "APPROVED"
	ChangeRequestRejected = "REJECTED"
)

// LevelChangeRequest asks an admin to move a user's level lock to another
// level within the same challenge month. At most one PENDING request per
// user, level type and period.
type LevelChangeRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	LevelType   string     `gorm:"type:varchar(10);not null" json:"level_type"`
	FromLevelID string     `gorm:"type:varchar(50);not null" json:"from_level_id"`
	ToLevelID   string     `gorm:"type:varchar(50);not null" json:"to_level_id"`
	Year        int        `gorm:"not null" json:"year"`
	Month       int        `gorm:"not null" json:"month"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	DecidedAt   *time.Time `gorm:"type:timestamp;default:null" json:"decided_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
