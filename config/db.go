package config

import (
	"quickbites-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the database and migrates the schema.
// The handle is returned, not stored globally, so every component that
// persists anything takes it as an explicit dependency.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.CustomerProfile{},
		&models.Address{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemCustomization{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
