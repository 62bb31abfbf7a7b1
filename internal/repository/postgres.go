package repository

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

// Connect opens the Postgres connection and migrates the schema the
// dispatcher reads and writes.
func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Notification{},
		&models.User{},
		&models.Chat{},
		&models.Listing{},
		&models.Transaction{},
		&models.Report{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
