package models

import "time"

// TaskSubmission records one photo upload for a task. At most one submission
// exists per (session, question); Rating is nil until an admin rates it and a
// second rating attempt is rejected.
type TaskSubmission struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SessionID  string    `json:"session_id" gorm:"size:128;not null;uniqueIndex:idx_submission_session_question"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_submission_session_question"`
	Filename   string    `json:"filename" gorm:"size:512;not null"`
	Rating     *int      `json:"rating" gorm:"default:null" validate:"omitempty,min=0,max=5"`
	CreatedAt  time.Time `json:"created_at"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}

// Box is a numbered physical box with an optional uploaded hint image.
type Box struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	BoxIndex     int       `json:"box_index" gorm:"uniqueIndex;not null"`
	HintFilename *string   `json:"hint_filename" gorm:"size:512"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Box) TableName() string {
	return "boxes"
}
