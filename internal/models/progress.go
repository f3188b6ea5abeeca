package models

import "time"

// UserScan is the append-only scan ledger. A (session_id, code) pair is
// recorded at most once; repeats are answered from the ledger without side
// effects.
type UserScan struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"size:128;not null;uniqueIndex:idx_scan_session_code"`
	Code      string    `json:"code" gorm:"size:128;not null;uniqueIndex:idx_scan_session_code"`
	ScannedAt time.Time `json:"scanned_at" gorm:"autoCreateTime"`
}

func (UserScan) TableName() string {
	return "user_scans"
}

// ServedQuestion fences a question (or task) per session: a question is never
// offered twice to the same session even when its global used state allows it.
type ServedQuestion struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SessionID  string    `json:"session_id" gorm:"size:128;not null;uniqueIndex:idx_served_session_question"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_served_session_question"`
	ServedAt   time.Time `json:"served_at" gorm:"autoCreateTime"`
}

func (ServedQuestion) TableName() string {
	return "user_served_questions"
}

// UserAnswer records one answer submission. Submissions always insert; the
// application never deduplicates answers.
type UserAnswer struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SessionID  string    `json:"session_id" gorm:"size:128;not null;index"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	Answer     string    `json:"answer" gorm:"size:256;not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null"`
	AnsweredAt time.Time `json:"answered_at" gorm:"autoCreateTime"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
