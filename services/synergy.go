package services

import (
	"errors"
	"time"

	"quest-progression-system/models"

	"gorm.io/gorm"
)

// SynergyWindow is how far (either side) a friend's completion of the same quest
// may sit from this completion for the bonus multiplier to apply.
const SynergyWindow = 300 * time.Second

// SynergyService decides whether a quest completion earns the friend bonus. The
// check is point-in-time: a friend finishing later does not retroactively grant
// the bonus to an earlier completer.
type SynergyService struct {
	DB *gorm.DB
}

func NewSynergyService(db *gorm.DB) *SynergyService {
	return &SynergyService{DB: db}
}

// HasSynergyBonus reports whether any accepted friend of the user completed the
// same quest within SynergyWindow of completedAt. Read-only on the caller's
// handle — it runs on the completion's own transaction snapshot and takes no
// lock of its own.
func (s *SynergyService) HasSynergyBonus(tx *gorm.DB, externalUserID, questID string, completedAt time.Time) (bool, error) {
	var friendIDs []string
	err := tx.Raw(`
		SELECT CASE WHEN requester_id = ? THEN addressee_id ELSE requester_id END
		FROM friendships
		WHERE status = ? AND (requester_id = ? OR addressee_id = ?) AND deleted_at IS NULL
	`, externalUserID, models.FriendshipAccepted, externalUserID, externalUserID).
		Scan(&friendIDs).Error
	if err != nil {
		return false, err
	}
	if len(friendIDs) == 0 {
		return false, nil
	}

	// Existence check, not a count: the first sibling completion in the window wins.
	var sibling models.UserQuest
	err = tx.Where("quest_id = ? AND external_user_id IN ? AND is_completed = ?", questID, friendIDs, true).
		Where("completed_at BETWEEN ? AND ?", completedAt.Add(-SynergyWindow), completedAt.Add(SynergyWindow)).
		First(&sibling).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
