package models

import "time"

type GamePhase string

const (
	PhaseIdle    GamePhase = "idle"
	PhaseRunning GamePhase = "running"
	PhaseEnded   GamePhase = "ended"
)

const (
	DefaultQuestionTimeoutSeconds = 10
	DefaultTaskTimeoutSeconds     = 300
)

// GameState is a singleton row created lazily on the first admin start or
// settings write.
type GameState struct {
	ID                     uint      `json:"id" gorm:"primaryKey"`
	IsActive               bool      `json:"is_active" gorm:"default:false"`
	CurrentPhase           GamePhase `json:"current_phase" gorm:"size:64;default:idle" validate:"omitempty,oneof=idle running ended"`
	DefaultLanguage        string    `json:"default_language" gorm:"size:16;default:en"`
	QuestionTimeoutSeconds int       `json:"question_timeout_seconds" gorm:"default:10" validate:"min=1"`
	TaskTimeoutSeconds     int       `json:"task_timeout_seconds" gorm:"default:300" validate:"min=1"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (GameState) TableName() string {
	return "game_state"
}
