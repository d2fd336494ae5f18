package services

import (
	"errors"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileService reads and bootstraps the per-user progression aggregate. All
// XP writes go through the award engine; nothing here touches xp or level
// beyond their initial zeros.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// EnsureProfile ensures a Profile row exists for the user (idempotent).
func (s *ProfileService) EnsureProfile(externalUserID string) (*models.Profile, error) {
	var prof models.Profile
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prof = models.Profile{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			XP:             0,
			Level:          1,
		}
		if err := s.DB.Create(&prof).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a creation race; the winner's row is the profile.
				if err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
					return nil, err
				}
				return &prof, nil
			}
			return nil, err
		}
		return &prof, nil
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// GetProfile returns the aggregate without creating it.
func (s *ProfileService) GetProfile(externalUserID string) (*models.Profile, error) {
	var prof models.Profile
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "profile"}
		}
		return nil, err
	}
	return &prof, nil
}
