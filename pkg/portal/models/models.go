package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: GroupType must be migrated before Group, and Event before Album
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&GroupType{},
		&Group{},
		&GroupMembership{},
		&Post{},
		&Event{},
		&Album{},
		&Media{},
		&Comment{},
		&Like{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
