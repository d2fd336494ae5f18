package models

import (
	"time"
)

// UserQuest is the state-machine instance for one (user, quest) pair, enforced
// unique. CurrentStep is the 1-based ordinal of the next expected step. There is
// no transition out of the completed state.
type UserQuest struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex:idx_user_quest;not null" json:"external_user_id"`
	QuestID        string `gorm:"uniqueIndex:idx_user_quest;not null" json:"quest_id"`

	IsAccepted bool      `gorm:"default:false" json:"is_accepted"`
	AcceptedAt time.Time `json:"accepted_at"`

	CurrentStep int `gorm:"default:1" json:"current_step"`

	IsCompleted      bool       `gorm:"default:false;index" json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	LastSubmissionAt *time.Time `json:"last_submission_at,omitempty"`

	Timestamps
}

// QuestSubmission is the append-only proof record for one step attempt. The
// proof URL is resolved by the media pipeline before submission; rows are never
// updated after creation.
type QuestSubmission struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	UserQuestID string `gorm:"index;not null" json:"user_quest_id"`
	QuestStepID string `gorm:"index;not null" json:"quest_step_id"`

	ProofURL   string   `gorm:"type:text;not null" json:"proof_url"`
	CheckInLat *float64 `json:"check_in_lat,omitempty"`
	CheckInLng *float64 `json:"check_in_lng,omitempty"`

	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}
