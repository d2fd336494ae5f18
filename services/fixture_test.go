package services

import (
	"testing"
	"time"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))
	return db
}

func createProfile(t *testing.T, db *gorm.DB, externalUserID string) *models.Profile {
	t.Helper()
	prof := models.Profile{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		XP:             0,
		Level:          1,
		Username:       externalUserID,
	}
	require.NoError(t, db.Create(&prof).Error)
	return &prof
}

type stepSpec struct {
	xp              int64
	requiresCheckIn bool
}

// createQuest builds a published quest with its steps and materialized reward
// definitions, the same shape the admin create path produces.
func createQuest(t *testing.T, db *gorm.DB, baseXP int64, steps []stepSpec) (*models.Quest, []models.QuestStep) {
	t.Helper()

	quest := models.Quest{
		ID:           uuid.NewString(),
		Slug:         "quest-" + uuid.NewString()[:8],
		Title:        "Test Quest",
		Status:       models.QuestStatusPublished,
		BaseXPReward: baseXP,
	}
	require.NoError(t, db.Create(&quest).Error)

	var created []models.QuestStep
	for i, spec := range steps {
		step := models.QuestStep{
			ID:              uuid.NewString(),
			QuestID:         quest.ID,
			Ordinal:         i + 1,
			Title:           "Step",
			StepXPReward:    spec.xp,
			RequiresCheckIn: spec.requiresCheckIn,
		}
		require.NoError(t, db.Create(&step).Error)
		created = append(created, step)

		if spec.xp > 0 {
			def, err := models.NewXPReward(models.SourceStepCompletion, step.ID, spec.xp)
			require.NoError(t, err)
			def.ID = uuid.NewString()
			require.NoError(t, db.Create(def).Error)
		}
	}

	if baseXP > 0 {
		def, err := models.NewXPReward(models.SourceQuestCompletion, quest.ID, baseXP)
		require.NoError(t, err)
		def.ID = uuid.NewString()
		require.NoError(t, db.Create(def).Error)
	}

	return &quest, created
}

func createBadge(t *testing.T, db *gorm.DB, code string) *models.Badge {
	t.Helper()
	badge := models.Badge{
		ID:   uuid.NewString(),
		Code: code,
		Name: code,
	}
	require.NoError(t, db.Create(&badge).Error)
	return &badge
}

func createTitle(t *testing.T, db *gorm.DB, code string) *models.Title {
	t.Helper()
	title := models.Title{
		ID:   uuid.NewString(),
		Code: code,
		Name: code,
	}
	require.NoError(t, db.Create(&title).Error)
	return &title
}

func befriend(t *testing.T, db *gorm.DB, userA, userB string) {
	t.Helper()
	now := time.Now()
	f := models.Friendship{
		ID:          uuid.NewString(),
		RequesterID: userA,
		AddresseeID: userB,
		Status:      models.FriendshipAccepted,
		RespondedAt: &now,
	}
	require.NoError(t, db.Create(&f).Error)
}

// completeQuestAt inserts an already-completed UserQuest row, as a sibling
// completion the synergy evaluator can see.
func completeQuestAt(t *testing.T, db *gorm.DB, externalUserID, questID string, at time.Time) {
	t.Helper()
	uq := models.UserQuest{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		QuestID:        questID,
		IsAccepted:     true,
		AcceptedAt:     at.Add(-time.Hour),
		CurrentStep:    2,
		IsCompleted:    true,
		CompletedAt:    &at,
	}
	require.NoError(t, db.Create(&uq).Error)
}
