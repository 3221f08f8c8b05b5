package models

import "gorm.io/gorm"

// Migrate creates or updates the catalog and order tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Product{}, &Order{}, &OrderItem{})
}
