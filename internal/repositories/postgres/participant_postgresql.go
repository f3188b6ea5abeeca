package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/models"
)

type ParticipantPostgreSQL struct {
	db *gorm.DB
}

func (p *ParticipantPostgreSQL) Create(ctx context.Context, participant *models.Participant) error {
	return p.db.WithContext(ctx).Create(participant).Error
}

func (p *ParticipantPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Participant, error) {
	var participant models.Participant
	if err := p.db.WithContext(ctx).First(&participant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

func (p *ParticipantPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.Participant, error) {
	var participant models.Participant
	if err := p.db.WithContext(ctx).Where("username = ?", username).First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

func (p *ParticipantPostgreSQL) List(ctx context.Context) ([]*models.Participant, error) {
	var participants []*models.Participant
	if err := p.db.WithContext(ctx).Order("id DESC").Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (p *ParticipantPostgreSQL) Update(ctx context.Context, participant *models.Participant) error {
	return p.db.WithContext(ctx).Save(participant).Error
}

func (p *ParticipantPostgreSQL) UpdateLanguageAll(ctx context.Context, language string) error {
	return p.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("1 = 1").
		Update("language", language).Error
}

func (p *ParticipantPostgreSQL) Delete(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Delete(&models.Participant{}, id).Error
}

type AdminPostgreSQL struct {
	db *gorm.DB
}

func (a *AdminPostgreSQL) Create(ctx context.Context, admin *models.AdminUser) error {
	return a.db.WithContext(ctx).Create(admin).Error
}

func (a *AdminPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := a.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (a *AdminPostgreSQL) Update(ctx context.Context, admin *models.AdminUser) error {
	return a.db.WithContext(ctx).Save(admin).Error
}
