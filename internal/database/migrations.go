package database

import (
	"zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

var MODELS_TO_MIGRATE = []any{
	&models.User{},
	&models.AuthAccount{},
	&models.Like{},
	&models.RecentPlay{},
	&models.Comment{},
	&models.PushSubscription{},
}

// MigrateModels runs GORM AutoMigrate for every persisted model.
func MigrateModels(db *gorm.DB) error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration", "modelCount", len(MODELS_TO_MIGRATE))

	if err := db.AutoMigrate(MODELS_TO_MIGRATE...); err != nil {
		return log.Err("failed to auto migrate models", err)
	}

	log.Info("Database migration completed")
	return nil
}
