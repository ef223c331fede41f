package models

import "gorm.io/gorm"

// Migrate runs the schema migration for every collection.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Conversation{},
		&ConversationParticipant{},
		&Message{},
		&Expert{},
	)
}
