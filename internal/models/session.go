package models

import "time"

// UserSession binds an opaque client session id to a participant username.
type UserSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:128;not null;index" validate:"required"`
	SessionID string    `json:"session_id" gorm:"size:128;uniqueIndex;not null" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}
