package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/models"
)

type GameStatePostgreSQL struct {
	db *gorm.DB
}

func (g *GameStatePostgreSQL) Get(ctx context.Context) (*models.GameState, error) {
	var state models.GameState
	if err := g.db.WithContext(ctx).Order("id ASC").First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (g *GameStatePostgreSQL) Save(ctx context.Context, state *models.GameState) error {
	return g.db.WithContext(ctx).Save(state).Error
}
