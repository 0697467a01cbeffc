// Package gormdb is the production storage backend (Postgres via GORM).
package gormdb

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true, // duplicate-key errors surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates/updates the schema, including the unique indexes the
// domain invariants rely on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userRow{},
		&schoolRow{},
		&classRow{},
		&subjectRow{},
		&gradeRow{},
		&eventRow{},
		&contactRow{},
		&themeRow{},
		&subscriptionRow{},
		&maintenanceRow{},
	)
}
