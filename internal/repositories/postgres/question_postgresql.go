package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	var questions []*models.Question

	query := q.db.WithContext(ctx).Model(&models.Question{})
	if filters.IsTask != nil {
		query = query.Where("is_task = ?", *filters.IsTask)
	}
	if filters.QuestID != nil {
		query = query.Where("quest_id = ?", *filters.QuestID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Order("id DESC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) ExistsByText(ctx context.Context, text string, isTask bool) (bool, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("text = ? AND is_task = ?", text, isTask).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindCandidates locks the matching rows with FOR UPDATE so two concurrent
// assignments cannot both observe the same question as unused. Must run
// inside WithTx.
func (q *QuestionPostgreSQL) FindCandidates(ctx context.Context, filters repositories.CandidateFilters) ([]*models.Question, error) {
	var questions []*models.Question

	answered := q.db.Model(&models.UserAnswer{}).
		Select("question_id").
		Where("session_id = ?", filters.SessionID)
	served := q.db.Model(&models.ServedQuestion{}).
		Select("question_id").
		Where("session_id = ?", filters.SessionID)

	query := q.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id NOT IN (?)", answered).
		Where("id NOT IN (?)", served).
		Where("is_task = ? OR used = ?", true, false)
	if filters.QuestID != nil {
		query = query.Where("quest_id = ?", *filters.QuestID)
	}

	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) MarkUsed(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Update("used", true).Error
}

func (q *QuestionPostgreSQL) ResetUsed(ctx context.Context) error {
	return q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("used = ?", true).
		Update("used", false).Error
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (q *QuestionPostgreSQL) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Delete(&models.Question{}, ids).Error
}
