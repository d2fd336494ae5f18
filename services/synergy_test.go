package services

import (
	"testing"
	"time"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSynergyNoFriends(t *testing.T) {
	db := newTestDB(t)
	synergy := NewSynergyService(db)
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	ok, err := synergy.HasSynergyBonus(db, "user1", quest.ID, time.Now())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSynergyPendingFriendshipDoesNotCount(t *testing.T) {
	db := newTestDB(t)
	synergy := NewSynergyService(db)
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	f := models.Friendship{
		ID:          uuid.NewString(),
		RequesterID: "user1",
		AddresseeID: "user2",
		Status:      models.FriendshipPending,
	}
	require.NoError(t, db.Create(&f).Error)

	now := time.Now()
	completeQuestAt(t, db, "user2", quest.ID, now.Add(-100*time.Second))

	ok, err := synergy.HasSynergyBonus(db, "user1", quest.ID, now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSynergyWithinWindow(t *testing.T) {
	db := newTestDB(t)
	synergy := NewSynergyService(db)
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	befriend(t, db, "user2", "user1") // user1 as addressee: both directions must match
	now := time.Now()
	completeQuestAt(t, db, "user2", quest.ID, now.Add(-250*time.Second))

	ok, err := synergy.HasSynergyBonus(db, "user1", quest.ID, now)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSynergyOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	synergy := NewSynergyService(db)
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	befriend(t, db, "user1", "user2")
	now := time.Now()
	completeQuestAt(t, db, "user2", quest.ID, now.Add(-400*time.Second))

	ok, err := synergy.HasSynergyBonus(db, "user1", quest.ID, now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSynergyDifferentQuestDoesNotCount(t *testing.T) {
	db := newTestDB(t)
	synergy := NewSynergyService(db)
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})
	other, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	befriend(t, db, "user1", "user2")
	now := time.Now()
	completeQuestAt(t, db, "user2", other.ID, now)

	ok, err := synergy.HasSynergyBonus(db, "user1", quest.ID, now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSynergyFriendNotCompleted(t *testing.T) {
	db := newTestDB(t)
	synergy := NewSynergyService(db)
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	befriend(t, db, "user1", "user2")
	uq := models.UserQuest{
		ID:             uuid.NewString(),
		ExternalUserID: "user2",
		QuestID:        quest.ID,
		IsAccepted:     true,
		AcceptedAt:     time.Now(),
		CurrentStep:    1,
	}
	require.NoError(t, db.Create(&uq).Error)

	ok, err := synergy.HasSynergyBonus(db, "user1", quest.ID, time.Now())
	require.NoError(t, err)
	require.False(t, ok)
}
