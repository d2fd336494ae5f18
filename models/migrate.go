package models

import (
	"gorm.io/gorm"
)

// MigrateTable runs AutoMigrate for every entity the engine persists. Shared by
// main and the test fixtures.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Profile{},
		&Quest{},
		&QuestStep{},
		&UserQuest{},
		&QuestSubmission{},
		&RewardDefinition{},
		&Badge{},
		&Title{},
		&UserBadge{},
		&UserTitle{},
		&Friendship{},
		&Achievement{},
		&UserAchievement{},
	)
}
