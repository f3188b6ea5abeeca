package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.TaskSubmission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Exists(ctx context.Context, sessionID string, questionID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SubmissionPostgreSQL) ListByQuestion(ctx context.Context, questionID uint) ([]*models.TaskSubmission, error) {
	var submissions []*models.TaskSubmission
	if err := s.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) ListByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.TaskSubmission, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var submissions []*models.TaskSubmission
	if err := s.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) ListBySessionIDs(ctx context.Context, sessionIDs []string) ([]*models.TaskSubmission, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var submissions []*models.TaskSubmission
	if err := s.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) Update(ctx context.Context, submission *models.TaskSubmission) error {
	return s.db.WithContext(ctx).Save(submission).Error
}

func (s *SubmissionPostgreSQL) TaskSummary(ctx context.Context) ([]*repositories.TaskSummaryRow, error) {
	var rows []*repositories.TaskSummaryRow
	err := s.db.WithContext(ctx).
		Model(&models.Question{}).
		Select(`questions.id AS question_id,
			COUNT(task_submissions.id) AS total,
			COALESCE(SUM(CASE WHEN task_submissions.rating IS NOT NULL THEN 1 ELSE 0 END), 0) AS rated`).
		Joins("LEFT JOIN task_submissions ON task_submissions.question_id = questions.id").
		Where("questions.is_task = ?", true).
		Group("questions.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SubmissionPostgreSQL) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.TaskSubmission{}, ids).Error
}

type BoxPostgreSQL struct {
	db *gorm.DB
}

func (b *BoxPostgreSQL) Create(ctx context.Context, box *models.Box) error {
	return b.db.WithContext(ctx).Create(box).Error
}

func (b *BoxPostgreSQL) GetByIndex(ctx context.Context, index int) (*models.Box, error) {
	var box models.Box
	if err := b.db.WithContext(ctx).Where("box_index = ?", index).First(&box).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &box, nil
}

func (b *BoxPostgreSQL) List(ctx context.Context) ([]*models.Box, error) {
	var boxes []*models.Box
	if err := b.db.WithContext(ctx).Order("box_index ASC").Find(&boxes).Error; err != nil {
		return nil, err
	}
	return boxes, nil
}

func (b *BoxPostgreSQL) Update(ctx context.Context, box *models.Box) error {
	return b.db.WithContext(ctx).Save(box).Error
}

func (b *BoxPostgreSQL) DeleteAboveIndex(ctx context.Context, index int) error {
	return b.db.WithContext(ctx).
		Where("box_index > ?", index).
		Delete(&models.Box{}).Error
}
