package models

import (
	"time"
)

// QuestStatus indicates the publishing status of a quest
type QuestStatus string

const (
	QuestStatusDraft     QuestStatus = "draft"
	QuestStatusPublished QuestStatus = "published"
	QuestStatusArchived  QuestStatus = "archived"
)

// Quest is an immutable descriptor once published: the discovery layer reads it,
// the progression engine walks its ordered steps.
type Quest struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CoverURL    string `gorm:"type:text" json:"cover_url"`

	// Location gating (consumed by the discovery layer; the engine only stores it)
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	// Time gating
	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
	PublishAt      *time.Time `json:"publish_at,omitempty"`

	Status       QuestStatus `gorm:"not null;default:'draft';index" json:"status"`
	BaseXPReward int64       `gorm:"default:0" json:"base_xp_reward"`

	Steps []QuestStep `gorm:"foreignKey:QuestID" json:"steps,omitempty"`

	Timestamps
}

// QuestStep is one ordered step of a quest. Ordinal is 1-based and unique per quest.
type QuestStep struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	QuestID         string    `gorm:"uniqueIndex:idx_quest_step_ordinal;not null" json:"quest_id"`
	Ordinal         int       `gorm:"uniqueIndex:idx_quest_step_ordinal;not null" json:"ordinal"`
	Title           string    `gorm:"not null" json:"title"`
	Instructions    string    `gorm:"type:text" json:"instructions"`
	StepXPReward    int64     `gorm:"default:0" json:"step_xp_reward"`
	RequiresCheckIn bool      `gorm:"default:false" json:"requires_check_in"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
