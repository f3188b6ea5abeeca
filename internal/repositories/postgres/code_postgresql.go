package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/models"
)

type QRCodePostgreSQL struct {
	db *gorm.DB
}

func (q *QRCodePostgreSQL) Create(ctx context.Context, code *models.QRCode) error {
	return q.db.WithContext(ctx).Create(code).Error
}

func (q *QRCodePostgreSQL) GetByCode(ctx context.Context, code int) (*models.QRCode, error) {
	var qr models.QRCode
	if err := q.db.WithContext(ctx).Where("code = ?", code).First(&qr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &qr, nil
}

func (q *QRCodePostgreSQL) List(ctx context.Context) ([]*models.QRCode, error) {
	var codes []*models.QRCode
	if err := q.db.WithContext(ctx).Order("code ASC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (q *QRCodePostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.QRCode{}, id).Error
}

type CodeWordPostgreSQL struct {
	db *gorm.DB
}

func (c *CodeWordPostgreSQL) Create(ctx context.Context, word *models.CodeWord) error {
	return c.db.WithContext(ctx).Create(word).Error
}

func (c *CodeWordPostgreSQL) GetByID(ctx context.Context, id uint) (*models.CodeWord, error) {
	var cw models.CodeWord
	if err := c.db.WithContext(ctx).First(&cw, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cw, nil
}

func (c *CodeWordPostgreSQL) GetByWord(ctx context.Context, word string) (*models.CodeWord, error) {
	var cw models.CodeWord
	if err := c.db.WithContext(ctx).Where("LOWER(word) = LOWER(?)", word).First(&cw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cw, nil
}

func (c *CodeWordPostgreSQL) List(ctx context.Context) ([]*models.CodeWord, error) {
	var words []*models.CodeWord
	if err := c.db.WithContext(ctx).Order("id DESC").Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (c *CodeWordPostgreSQL) MarkUsed(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).
		Model(&models.CodeWord{}).
		Where("id = ?", id).
		Update("used", true).Error
}

func (c *CodeWordPostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&models.CodeWord{}, id).Error
}

func (c *CodeWordPostgreSQL) DeleteAll(ctx context.Context) error {
	return c.db.WithContext(ctx).Where("1 = 1").Delete(&models.CodeWord{}).Error
}
