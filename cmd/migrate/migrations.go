package main

import (
	"gorm.io/gorm"

	"github.com/resourcehub/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		&models.Resource{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addListingIndex,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// addListingIndex backs the default created_at DESC listing order.
func addListingIndex(db *gorm.DB) error {
	return db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_resources_created_at ON resources (created_at DESC, id DESC)`,
	).Error
}
