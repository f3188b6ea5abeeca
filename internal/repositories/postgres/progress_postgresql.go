package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/models"
)

type ScanPostgreSQL struct {
	db *gorm.DB
}

func (s *ScanPostgreSQL) Create(ctx context.Context, scan *models.UserScan) error {
	return s.db.WithContext(ctx).Create(scan).Error
}

func (s *ScanPostgreSQL) Exists(ctx context.Context, sessionID, code string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.UserScan{}).
		Where("session_id = ? AND code = ?", sessionID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ScanPostgreSQL) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&models.UserScan{}).Error
}

type ServedQuestionPostgreSQL struct {
	db *gorm.DB
}

func (s *ServedQuestionPostgreSQL) Create(ctx context.Context, served *models.ServedQuestion) error {
	return s.db.WithContext(ctx).Create(served).Error
}

func (s *ServedQuestionPostgreSQL) DeleteByQuestionIDs(ctx context.Context, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Delete(&models.ServedQuestion{}).Error
}

func (s *ServedQuestionPostgreSQL) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&models.ServedQuestion{}).Error
}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func (a *AnswerPostgreSQL) Create(ctx context.Context, answer *models.UserAnswer) error {
	return a.db.WithContext(ctx).Create(answer).Error
}

func (a *AnswerPostgreSQL) DeleteByQuestionIDs(ctx context.Context, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Delete(&models.UserAnswer{}).Error
}

func (a *AnswerPostgreSQL) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&models.UserAnswer{}).Error
}
