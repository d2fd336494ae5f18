package services

import (
	"testing"

	"quest-progression-system/models"

	"github.com/stretchr/testify/require"
)

func TestEnsureProfileCreatesOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)

	first, err := svc.EnsureProfile("user1")
	require.NoError(t, err)
	require.Equal(t, int64(0), first.XP)
	require.Equal(t, 1, first.Level)

	second, err := svc.EnsureProfile("user1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("external_user_id = ?", "user1").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestGetProfileMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)

	_, err := svc.GetProfile("ghost")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUniqueSlugSuffixesOnCollision(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)

	first := svc.uniqueSlug("Old Town Walk")
	require.Equal(t, "old-town-walk", first)

	quest := models.Quest{ID: "q1", Slug: first, Title: "Old Town Walk", Status: models.QuestStatusDraft}
	require.NoError(t, db.Create(&quest).Error)

	second := svc.uniqueSlug("Old Town Walk")
	require.NotEqual(t, first, second)
	require.Contains(t, second, "old-town-walk-")
}
