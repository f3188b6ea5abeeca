package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/models"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func (s *SessionPostgreSQL) Upsert(ctx context.Context, username, sessionID string) error {
	var session models.UserSession
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(&models.UserSession{
			Username:  username,
			SessionID: sessionID,
		}).Error
	}
	if err != nil {
		return err
	}

	session.Username = username
	return s.db.WithContext(ctx).Save(&session).Error
}

func (s *SessionPostgreSQL) GetBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	var session models.UserSession
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByUsernames(ctx context.Context, usernames []string) ([]*models.UserSession, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var sessions []*models.UserSession
	if err := s.db.WithContext(ctx).Where("username IN ?", usernames).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionPostgreSQL) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&models.UserSession{}).Error
}
