package models

import "time"

const (
	LevelTypeAR = "AR"
	LevelTypeRC = "RC"
)

// UserLevelLock binds a user to one difficulty level for one challenge month.
// There is at most one lock per (user, level type, year, month); the level is
// immutable for the period except through an approved LevelChangeRequest.
type UserLevelLock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:ux_user_level_locks_period,unique,priority:1" json:"user_id"`
	LevelType string    `gorm:"type:varchar(10);not null;index:ux_user_level_locks_period,unique,priority:2" json:"level_type"`
	LevelID   string    `gorm:"type:varchar(50);not null" json:"level_id"`
	Year      int       `gorm:"not null;index:ux_user_level_locks_period,unique,priority:3" json:"year"`
	Month     int       `gorm:"not null;index:ux_user_level_locks_period,unique,priority:4" json:"month"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
