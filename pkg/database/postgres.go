package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/milanhq/milan/internal/models"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema and the constraints the services rely on. It is
// shared with the sqlite-backed tests so both stores enforce the same rules.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Event{},
		&models.Registration{},
		&models.CronLog{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Partial unique index: at most one settled (paid or free) registration
	// per event and email. Pending/failed rows stay replaceable for retries.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_registration_settled
		ON registrations (event_id, email)
		WHERE payment_status IN ('paid', 'free')
	`).Error; err != nil {
		return fmt.Errorf("create settled index: %w", err)
	}

	return nil
}
