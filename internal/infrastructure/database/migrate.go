package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flmanager/flmanager/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.Customer{},
		&model.Subscription{},
		&model.Payment{},
		&model.TimelineEvent{},
		&model.GiftCode{},
		&model.WhatsappTemplate{},
		&model.CountryTemplate{},
		&model.WhatsappLog{},
		&model.Country{},
		&model.AppSettings{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
