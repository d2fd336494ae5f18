package services

import (
	"testing"
	"time"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAcceptQuest(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	uq, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)
	require.True(t, uq.IsAccepted)
	require.Equal(t, 1, uq.CurrentStep)
	require.False(t, uq.IsCompleted)

	var prof models.Profile
	require.NoError(t, db.First(&prof, "external_user_id = ?", "user1").Error)
	require.Equal(t, int64(1), prof.QuestsAccepted)
}

func TestAcceptQuestTwiceConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	first, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	_, err = svc.AcceptQuest("user1", quest.ID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Existing progress is untouched
	var uq models.UserQuest
	require.NoError(t, db.First(&uq, "external_user_id = ? AND quest_id = ?", "user1", quest.ID).Error)
	require.Equal(t, first.ID, uq.ID)
	require.Equal(t, 1, uq.CurrentStep)

	var prof models.Profile
	require.NoError(t, db.First(&prof, "external_user_id = ?", "user1").Error)
	require.Equal(t, int64(1), prof.QuestsAccepted)
}

func TestAcceptUnpublishedQuest(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})
	require.NoError(t, db.Model(&models.Quest{}).Where("id = ?", quest.ID).
		Update("status", models.QuestStatusDraft).Error)

	_, err := svc.AcceptQuest("user1", quest.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestAcceptMissingQuest(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")

	_, err := svc.AcceptQuest("user1", "no-such-quest")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSubmitStepOutOfOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 10}, {xp: 20}})

	_, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	_, _, err = svc.SubmitStep("user1", quest.ID, steps[1].ID, "https://proof.example/1.jpg", nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	// Rejected submission changes nothing
	state, err := svc.GetState("user1", quest.ID)
	require.NoError(t, err)
	require.Equal(t, 1, state.CurrentStep)

	var prof models.Profile
	require.NoError(t, db.First(&prof, "external_user_id = ?", "user1").Error)
	require.Equal(t, int64(0), prof.XP)
}

func TestSubmitStepRequiresCheckIn(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 10, requiresCheckIn: true}})

	_, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	_, _, err = svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/1.jpg", nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	_, summary, err := svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/1.jpg", &CheckIn{Lat: 52.52, Lng: 13.405})
	require.NoError(t, err)
	require.Equal(t, int64(110), summary.XPAwarded)
}

func TestSubmitStepRequiresProof(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	_, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	_, _, err = svc.SubmitStep("user1", quest.ID, steps[0].ID, "", nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestSubmitStepWithoutAccepting(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	_, _, err := svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/1.jpg", nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestQuestCompletionEndToEnd(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 25}})

	_, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	uq, summary, err := svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/1.jpg", nil)
	require.NoError(t, err)

	require.True(t, uq.IsCompleted)
	require.NotNil(t, uq.CompletedAt)
	require.Equal(t, 2, uq.CurrentStep)

	// 25 step XP + 100 base XP, no synergy
	require.Equal(t, int64(125), summary.XPAwarded)
	require.Equal(t, int64(125), summary.NewXP)
	require.Equal(t, 2, summary.NewLevel)
	require.True(t, summary.LeveledUp)
	require.False(t, summary.SynergyApplied)

	var prof models.Profile
	require.NoError(t, db.First(&prof, "external_user_id = ?", "user1").Error)
	require.Equal(t, int64(125), prof.XP)
	require.Equal(t, 2, prof.Level)
	require.Equal(t, int64(1), prof.QuestsCompleted)

	var subs int64
	require.NoError(t, db.Model(&models.QuestSubmission{}).Where("user_quest_id = ?", uq.ID).Count(&subs).Error)
	require.Equal(t, int64(1), subs)
}

func TestQuestCompletionWithSynergy(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 25}})

	befriend(t, db, "user1", "user2")
	completeQuestAt(t, db, "user2", quest.ID, time.Now().Add(-250*time.Second))

	_, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	_, summary, err := svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/1.jpg", nil)
	require.NoError(t, err)

	// 25 step XP + 110 boosted base XP
	require.Equal(t, int64(135), summary.XPAwarded)
	require.True(t, summary.SynergyApplied)
}

func TestSubmitAfterCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 25}})

	_, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)
	_, _, err = svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/1.jpg", nil)
	require.NoError(t, err)

	_, _, err = svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/2.jpg", nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestConcurrentSubmitLosesWithConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 100, []stepSpec{{xp: 10}, {xp: 20}})

	uq, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	// Simulate the loser of a concurrent race: pre-validation saw step 1 as
	// next, but the winner advanced the row before our lock was taken.
	require.NoError(t, db.Model(&models.UserQuest{}).Where("id = ?", uq.ID).
		Update("current_step", 2).Error)

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.submitLocked(tx, uq.ID, &steps[0], "https://proof.example/1.jpg", nil, 2, &models.RewardSummary{})
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// The losing attempt wrote nothing
	var subs int64
	require.NoError(t, db.Model(&models.QuestSubmission{}).Where("user_quest_id = ?", uq.ID).Count(&subs).Error)
	require.Equal(t, int64(0), subs)

	var prof models.Profile
	require.NoError(t, db.First(&prof, "external_user_id = ?", "user1").Error)
	require.Equal(t, int64(0), prof.XP)
}

func TestMultiStepProgression(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 200, []stepSpec{{xp: 10}, {xp: 20}, {xp: 30}})

	_, err := svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	for i, step := range steps {
		uq, _, err := svc.SubmitStep("user1", quest.ID, step.ID, "https://proof.example/p.jpg", nil)
		require.NoError(t, err)
		require.Equal(t, i+2, uq.CurrentStep)
		require.Equal(t, i == len(steps)-1, uq.IsCompleted)
	}

	var prof models.Profile
	require.NoError(t, db.First(&prof, "external_user_id = ?", "user1").Error)
	require.Equal(t, int64(260), prof.XP)
	require.Equal(t, 2, prof.Level)
}

func TestBadgeOnlyCompletionUnlocksCounterAchievements(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, steps := createQuest(t, db, 0, []stepSpec{{xp: 0}})
	badge := createBadge(t, db, "FINISHER")

	def, err := models.NewBadgeReward(models.SourceQuestCompletion, quest.ID, badge.ID, 0)
	require.NoError(t, err)
	def.ID = uuid.NewString()
	require.NoError(t, db.Create(def).Error)

	title := createTitle(t, db, "QUESTER")
	ach := models.Achievement{
		ID:           uuid.NewString(),
		Code:         "FIRST_COMPLETION",
		Name:         "First Completion",
		TriggerKey:   models.TriggerQuestsCompleted,
		TriggerValue: 1,
	}
	require.NoError(t, db.Create(&ach).Error)
	achDef, err := models.NewTitleReward(models.SourceAchievementUnlock, ach.ID, title.ID, 0)
	require.NoError(t, err)
	achDef.ID = uuid.NewString()
	require.NoError(t, db.Create(achDef).Error)

	_, err = svc.AcceptQuest("user1", quest.ID)
	require.NoError(t, err)

	// Completion moves no XP at all; the counter-triggered achievement must
	// still unlock in the same transaction.
	uq, summary, err := svc.SubmitStep("user1", quest.ID, steps[0].ID, "https://proof.example/1.jpg", nil)
	require.NoError(t, err)
	require.True(t, uq.IsCompleted)
	require.Equal(t, int64(0), summary.XPAwarded)
	require.Contains(t, summary.BadgeIDs, badge.ID)
	require.Contains(t, summary.AchievementsUnlocked, "FIRST_COMPLETION")
	require.Contains(t, summary.TitleIDs, title.ID)

	var unlocked int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("external_user_id = ? AND achievement_id = ?", "user1", ach.ID).
		Count(&unlocked).Error)
	require.Equal(t, int64(1), unlocked)
}

func TestGetStateNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestProgressService(db)
	createProfile(t, db, "user1")
	quest, _ := createQuest(t, db, 100, []stepSpec{{xp: 10}})

	_, err := svc.GetState("user1", quest.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}
