package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTest opens an isolated in-memory sqlite database with the full schema
// migrated. Used by package tests; never called from request paths.
func OpenTest() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// A pooled second connection would see its own empty :memory: database,
	// so pin the pool to a single connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(migratedModels()...); err != nil {
		return nil, err
	}
	return db, nil
}
