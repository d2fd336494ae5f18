package services

import (
	"testing"

	"quest-progression-system/models"

	"github.com/stretchr/testify/require"
)

func TestGrantBadgeIdempotent(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	badge := createBadge(t, db, "CITY_EXPLORER")

	granted, err := ledger.GrantBadge(db, "user1", badge.ID)
	require.NoError(t, err)
	require.True(t, granted)

	// Repeat grant succeeds and changes nothing observable
	granted, err = ledger.GrantBadge(db, "user1", badge.ID)
	require.NoError(t, err)
	require.False(t, granted)

	var count int64
	require.NoError(t, db.Model(&models.UserBadge{}).
		Where("external_user_id = ? AND badge_id = ?", "user1", badge.ID).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestGrantBadgeNotEquippedByDefault(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	badge := createBadge(t, db, "NIGHT_OWL")

	_, err := ledger.GrantBadge(db, "user1", badge.ID)
	require.NoError(t, err)

	var grant models.UserBadge
	require.NoError(t, db.First(&grant, "external_user_id = ?", "user1").Error)
	require.False(t, grant.IsEquipped)
}

func TestGrantTitleIdempotent(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	title := createTitle(t, db, "PATHFINDER")

	granted, err := ledger.GrantTitle(db, "user1", title.ID)
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = ledger.GrantTitle(db, "user1", title.ID)
	require.NoError(t, err)
	require.False(t, granted)

	var count int64
	require.NoError(t, db.Model(&models.UserTitle{}).
		Where("external_user_id = ?", "user1").
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestGrantsAreSeparatePerUser(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	badge := createBadge(t, db, "TRAILBLAZER")

	for _, user := range []string{"user1", "user2"} {
		granted, err := ledger.GrantBadge(db, user, badge.ID)
		require.NoError(t, err)
		require.True(t, granted)
	}

	var count int64
	require.NoError(t, db.Model(&models.UserBadge{}).Where("badge_id = ?", badge.ID).Count(&count).Error)
	require.Equal(t, int64(2), count)
}
