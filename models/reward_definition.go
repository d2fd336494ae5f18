package models

import (
	"errors"
	"time"
)

// RewardSourceKind identifies what kind of event a reward definition hangs off
type RewardSourceKind string

const (
	SourceQuestCompletion   RewardSourceKind = "quest_completion"
	SourceStepCompletion    RewardSourceKind = "step_completion"
	SourceAchievementUnlock RewardSourceKind = "achievement_unlock"
)

// RewardKind indicates what a single definition row grants
type RewardKind string

const (
	RewardKindXP    RewardKind = "xp"
	RewardKindBadge RewardKind = "badge"
	RewardKindTitle RewardKind = "title"
)

// RewardDefinition is a declared reward attached to a reward source. Rows are
// built only through the constructors below, so a row carrying both a badge and
// a title cannot be represented. Achievement-sourced rows grant exactly one of
// xp, badge, or title; quest- and step-sourced rows may pair XP with at most one
// collectible.
type RewardDefinition struct {
	ID         string           `gorm:"primaryKey;type:uuid" json:"id"`
	SourceKind RewardSourceKind `gorm:"index:idx_reward_source;not null" json:"source_kind"`
	SourceID   string           `gorm:"index:idx_reward_source;not null" json:"source_id"`

	Kind     RewardKind `gorm:"not null" json:"kind"`
	XPAmount int64      `gorm:"default:0" json:"xp_amount"`
	BadgeID  *string    `gorm:"index" json:"badge_id,omitempty"`
	TitleID  *string    `gorm:"index" json:"title_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// NewXPReward builds a plain XP definition for any source kind.
func NewXPReward(sourceKind RewardSourceKind, sourceID string, amount int64) (*RewardDefinition, error) {
	if sourceID == "" {
		return nil, errors.New("reward definition requires a source id")
	}
	if amount <= 0 {
		return nil, errors.New("xp reward amount must be positive")
	}
	return &RewardDefinition{
		SourceKind: sourceKind,
		SourceID:   sourceID,
		Kind:       RewardKindXP,
		XPAmount:   amount,
	}, nil
}

// NewBadgeReward builds a badge grant definition. The optional XP amount rides
// along for quest and step sources; achievement sources grant the badge alone.
func NewBadgeReward(sourceKind RewardSourceKind, sourceID, badgeID string, xpAmount int64) (*RewardDefinition, error) {
	if sourceID == "" {
		return nil, errors.New("reward definition requires a source id")
	}
	if badgeID == "" {
		return nil, errors.New("badge reward requires a badge id")
	}
	if xpAmount < 0 {
		return nil, errors.New("xp amount cannot be negative")
	}
	if sourceKind == SourceAchievementUnlock && xpAmount != 0 {
		return nil, errors.New("achievement rewards grant exactly one of xp, badge, or title")
	}
	return &RewardDefinition{
		SourceKind: sourceKind,
		SourceID:   sourceID,
		Kind:       RewardKindBadge,
		XPAmount:   xpAmount,
		BadgeID:    &badgeID,
	}, nil
}

// NewTitleReward builds a title grant definition, mirroring NewBadgeReward.
func NewTitleReward(sourceKind RewardSourceKind, sourceID, titleID string, xpAmount int64) (*RewardDefinition, error) {
	if sourceID == "" {
		return nil, errors.New("reward definition requires a source id")
	}
	if titleID == "" {
		return nil, errors.New("title reward requires a title id")
	}
	if xpAmount < 0 {
		return nil, errors.New("xp amount cannot be negative")
	}
	if sourceKind == SourceAchievementUnlock && xpAmount != 0 {
		return nil, errors.New("achievement rewards grant exactly one of xp, badge, or title")
	}
	return &RewardDefinition{
		SourceKind: sourceKind,
		SourceID:   sourceID,
		Kind:       RewardKindTitle,
		XPAmount:   xpAmount,
		TitleID:    &titleID,
	}, nil
}

// RewardSummary reports what one award application granted. It is UI feedback
// only — once committed, the grant rows are authoritative whether or not the
// summary is observed.
type RewardSummary struct {
	XPAwarded      int64    `json:"xp_awarded"`
	SynergyApplied bool     `json:"synergy_applied"`
	BadgeIDs       []string `json:"badge_ids,omitempty"`
	TitleIDs       []string `json:"title_ids,omitempty"`

	NewXP     int64 `json:"new_xp"`
	NewLevel  int   `json:"new_level"`
	LeveledUp bool  `json:"leveled_up"`

	AchievementsUnlocked []string `json:"achievements_unlocked,omitempty"`
}

// Merge folds another summary into this one. Later profile snapshots win.
func (s *RewardSummary) Merge(other *RewardSummary) {
	if other == nil {
		return
	}
	s.XPAwarded += other.XPAwarded
	s.SynergyApplied = s.SynergyApplied || other.SynergyApplied
	s.BadgeIDs = append(s.BadgeIDs, other.BadgeIDs...)
	s.TitleIDs = append(s.TitleIDs, other.TitleIDs...)
	s.AchievementsUnlocked = append(s.AchievementsUnlocked, other.AchievementsUnlocked...)
	if other.NewLevel != 0 {
		s.NewXP = other.NewXP
		s.NewLevel = other.NewLevel
	}
	s.LeveledUp = s.LeveledUp || other.LeveledUp
}
