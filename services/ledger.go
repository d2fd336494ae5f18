package services

import (
	"fmt"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService records badge and title grants. Grants are idempotent: a repeat
// grant for the same (user, item) pair succeeds and changes nothing observable.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// GrantBadge awards the badge to the user unless already held. Returns true when
// a new grant row was written. Runs on the caller's handle so the grant stays
// inside the caller's transaction.
func (s *LedgerService) GrantBadge(tx *gorm.DB, externalUserID, badgeID string) (bool, error) {
	grant := models.UserBadge{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		BadgeID:        badgeID,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&grant)
	if res.Error != nil {
		return false, fmt.Errorf("failed to grant badge %s: %w", badgeID, res.Error)
	}
	if res.RowsAffected > 0 {
		fmt.Printf("🎖️ Badge granted: %s → %s\n", badgeID, externalUserID)
		return true, nil
	}
	return false, nil
}

// GrantTitle mirrors GrantBadge for display titles.
func (s *LedgerService) GrantTitle(tx *gorm.DB, externalUserID, titleID string) (bool, error) {
	grant := models.UserTitle{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		TitleID:        titleID,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "title_id"}},
		DoNothing: true,
	}).Create(&grant)
	if res.Error != nil {
		return false, fmt.Errorf("failed to grant title %s: %w", titleID, res.Error)
	}
	if res.RowsAffected > 0 {
		fmt.Printf("📜 Title granted: %s → %s\n", titleID, externalUserID)
		return true, nil
	}
	return false, nil
}
