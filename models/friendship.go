package models

import (
	"time"
)

// FriendshipStatus indicates the state of a friendship request
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is a symmetric relation stored as a single row per pair, keyed by
// who asked first. Readers must match on both columns. Only accepted rows feed
// the synergy evaluator.
type Friendship struct {
	ID          string           `gorm:"primaryKey;type:uuid" json:"id"`
	RequesterID string           `gorm:"uniqueIndex:idx_friend_pair;not null" json:"requester_id"`
	AddresseeID string           `gorm:"uniqueIndex:idx_friend_pair;not null" json:"addressee_id"`
	Status      FriendshipStatus `gorm:"not null;default:'pending';index" json:"status"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`

	Timestamps
}
