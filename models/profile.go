package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the per-user progression aggregate. XP is mutated only through the
// award engine's atomic delta; Level is recomputed from XP in the same write and
// is never set independently.
type Profile struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to identity service

	// Core progression
	XP    int64 `json:"xp" gorm:"default:0"`
	Level int   `json:"level" gorm:"default:1"`

	// Identity mirror (populated by the profile sync worker)
	Username          string  `gorm:"index" json:"username"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`

	// Activity counters
	QuestsAccepted  int64 `json:"quests_accepted" gorm:"default:0"`
	QuestsCompleted int64 `json:"quests_completed" gorm:"default:0"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
