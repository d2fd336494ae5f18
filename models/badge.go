package models

import (
	"time"
)

// Badge: static catalog of collectible badges
type Badge struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string `gorm:"uniqueIndex;not null" json:"code"` // e.g., "CITY_EXPLORER", "NIGHT_OWL"
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	IconURL     string `gorm:"type:text" json:"icon_url"`
	Rarity      string `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Title: static catalog of display titles
type Title struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"` // e.g., "PATHFINDER"
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance, unique per (user, badge). Granting is idempotent —
// the ledger does nothing on a repeat grant. Equipping is a separate user action.
type UserBadge struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"external_user_id"`
	BadgeID        string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_id"`
	AwardedAt      time.Time `gorm:"autoCreateTime" json:"awarded_at"`
	IsEquipped     bool      `gorm:"default:false" json:"is_equipped"`
}

// UserTitle: awarded instance, unique per (user, title)
type UserTitle struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_title;not null" json:"external_user_id"`
	TitleID        string    `gorm:"uniqueIndex:idx_user_title;not null" json:"title_id"`
	AwardedAt      time.Time `gorm:"autoCreateTime" json:"awarded_at"`
	IsEquipped     bool      `gorm:"default:false" json:"is_equipped"`
}
