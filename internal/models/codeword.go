package models

import "time"

// CodeWord is an admin-defined trigger equivalent to scanning any code in the
// pool. A word is single-use globally: once consumed by any session it never
// triggers an assignment again.
type CodeWord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Word      string    `json:"word" gorm:"size:128;uniqueIndex;not null" validate:"required,min=1,max=128"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (CodeWord) TableName() string {
	return "code_words"
}
