package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
)

type ScorePostgreSQL struct {
	db *gorm.DB
}

// LeaderboardRows left-joins answers and participants over sessions so a
// username with zero answers still produces a row.
func (s *ScorePostgreSQL) LeaderboardRows(ctx context.Context) ([]*repositories.ScoreRow, error) {
	var rows []*repositories.ScoreRow
	err := s.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Select(`user_sessions.username AS username,
			COUNT(user_answers.id) AS total_answers,
			COALESCE(SUM(CASE WHEN user_answers.is_correct THEN 1 ELSE 0 END), 0) AS auto_correct,
			COALESCE(MAX(participants.correct_count), 0) AS awarded`).
		Joins("LEFT JOIN user_answers ON user_answers.session_id = user_sessions.session_id").
		Joins("LEFT JOIN participants ON participants.username = user_sessions.username").
		Group("user_sessions.username").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ScorePostgreSQL) RaffleRows(ctx context.Context) ([]*repositories.RaffleRow, error) {
	var rows []*repositories.RaffleRow
	err := s.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Select(`user_sessions.username AS username,
			COALESCE(SUM(CASE WHEN user_answers.is_correct THEN 1 ELSE 0 END), 0) AS auto_correct`).
		Joins("LEFT JOIN user_answers ON user_answers.session_id = user_sessions.session_id").
		Group("user_sessions.username").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
