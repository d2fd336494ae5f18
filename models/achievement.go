package models

import (
	"time"
)

// Trigger keys understood by the award engine's achievement evaluation
const (
	TriggerTotalXP         = "total_xp"
	TriggerLevel           = "level"
	TriggerQuestsCompleted = "quests_completed"
)

// Achievement: static catalog entry with a threshold trigger. Its reward
// definitions are stored under SourceAchievementUnlock with the achievement ID.
type Achievement struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code         string    `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FIRST_QUEST", "LEVEL_10"
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `json:"description"`
	TriggerKey   string    `gorm:"not null" json:"trigger_key"`
	TriggerValue int64     `gorm:"not null" json:"trigger_value"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement: unlocked instance, unique per (user, achievement)
type UserAchievement struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"external_user_id"`
	AchievementID  string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}
