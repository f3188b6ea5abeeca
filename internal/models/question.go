package models

import (
	"gorm.io/datatypes"
)

type Question struct {
	ID            uint                         `json:"id" gorm:"primaryKey"`
	Text          string                       `json:"text" gorm:"type:text;not null" validate:"required,min=1"`
	CorrectAnswer string                       `json:"correct_answer" gorm:"size:256"`
	Options       datatypes.JSONSlice[string]  `json:"options"`
	QuestID       int                          `json:"quest_id" gorm:"not null;index" validate:"min=0"`
	// Used marks global exhaustion of a regular question. Tasks never flip it:
	// they stay servable to other sessions and are only fenced per session by
	// ServedQuestion rows.
	Used   bool `json:"used" gorm:"not null;default:false;index"`
	IsTask bool `json:"is_task" gorm:"not null;default:false;index"`
}

func (Question) TableName() string {
	return "questions"
}

// QRCode maps the numeric payload embedded in a printed QR to a quest group.
type QRCode struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	Code    int  `json:"code" gorm:"uniqueIndex;not null" validate:"required"`
	QuestID int  `json:"quest_id" gorm:"not null;index" validate:"min=0"`
}

func (QRCode) TableName() string {
	return "qrcodes"
}
