package models

import "time"

type Participant struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:128;uniqueIndex;not null" validate:"required,min=1,max=128"`
	PasswordHash string    `json:"-" gorm:"size:256;not null"`
	Language     string    `json:"language" gorm:"size:16;default:en"`
	// CorrectCount accumulates admin-awarded task points. It is independent of
	// the auto-scored answer tally and does not feed the raffle weights.
	CorrectCount int       `json:"correct_count" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Participant) TableName() string {
	return "participants"
}

type AdminUser struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:256;not null"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
