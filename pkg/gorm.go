package pkg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/CityQuest-2025/quest-service/internal/config"
	"github.com/CityQuest-2025/quest-service/internal/models"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Question{},
		&models.QRCode{},
		&models.CodeWord{},
		&models.UserSession{},
		&models.UserScan{},
		&models.ServedQuestion{},
		&models.UserAnswer{},
		&models.Participant{},
		&models.AdminUser{},
		&models.GameState{},
		&models.TaskSubmission{},
		&models.Box{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
