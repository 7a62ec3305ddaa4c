package models

import "time"

// ChallengeScore accumulates a user's quiz points for one challenge month at
// one level type. An approved level change resets Points to zero for the
// request's period; other periods are untouched.
type ChallengeScore struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:ux_challenge_scores_period,unique,priority:1" json:"user_id"`
	LevelType string    `gorm:"type:varchar(10);not null;index:ux_challenge_scores_period,unique,priority:2" json:"level_type"`
	Year      int       `gorm:"not null;index:ux_challenge_scores_period,unique,priority:3" json:"year"`
	Month     int       `gorm:"not null;index:ux_challenge_scores_period,unique,priority:4" json:"month"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
