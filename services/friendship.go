package services

import (
	"errors"
	"time"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendshipService manages the symmetric friend relation feeding the synergy
// evaluator. One row per pair, keyed by who asked first.
type FriendshipService struct {
	DB *gorm.DB
}

func NewFriendshipService(db *gorm.DB) *FriendshipService {
	return &FriendshipService{DB: db}
}

func (s *FriendshipService) findPair(tx *gorm.DB, userA, userB string) (*models.Friendship, error) {
	var f models.Friendship
	err := tx.Where(
		"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		userA, userB, userB, userA,
	).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Request creates a pending friendship from requester to addressee.
func (s *FriendshipService) Request(requesterID, addresseeID string) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, &ValidationError{Reason: "cannot befriend yourself"}
	}

	var created models.Friendship
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.findPair(tx, requesterID, addresseeID)
		if err != nil {
			return err
		}
		if existing != nil {
			switch existing.Status {
			case models.FriendshipBlocked:
				return &ValidationError{Reason: "friendship is blocked"}
			default:
				return &ConflictError{Reason: "friendship already exists"}
			}
		}

		created = models.Friendship{
			ID:          uuid.NewString(),
			RequesterID: requesterID,
			AddresseeID: addresseeID,
			Status:      models.FriendshipPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: "friendship already exists"}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Accept moves a pending friendship to accepted. Only the addressee may accept.
func (s *FriendshipService) Accept(userID, friendshipID string) (*models.Friendship, error) {
	var f models.Friendship
	if err := s.DB.First(&f, "id = ?", friendshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "friendship"}
		}
		return nil, err
	}
	if f.AddresseeID != userID {
		return nil, &ValidationError{Reason: "only the addressee can accept a request"}
	}
	if f.Status != models.FriendshipPending {
		return nil, &ValidationError{Reason: "friendship is not pending"}
	}

	now := time.Now()
	f.Status = models.FriendshipAccepted
	f.RespondedAt = &now
	if err := s.DB.Save(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// Block marks the pair blocked, creating the row if none exists. A blocked pair
// cannot re-request until unblocked out of band.
func (s *FriendshipService) Block(userID, otherID string) (*models.Friendship, error) {
	if userID == otherID {
		return nil, &ValidationError{Reason: "cannot block yourself"}
	}

	var blocked models.Friendship
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.findPair(tx, userID, otherID)
		if err != nil {
			return err
		}
		now := time.Now()
		if existing != nil {
			existing.Status = models.FriendshipBlocked
			existing.RespondedAt = &now
			if err := tx.Save(existing).Error; err != nil {
				return err
			}
			blocked = *existing
			return nil
		}
		blocked = models.Friendship{
			ID:          uuid.NewString(),
			RequesterID: userID,
			AddresseeID: otherID,
			Status:      models.FriendshipBlocked,
			RespondedAt: &now,
		}
		return tx.Create(&blocked).Error
	})
	if err != nil {
		return nil, err
	}
	return &blocked, nil
}

// ListAccepted returns the user's accepted friendships, both directions.
func (s *FriendshipService) ListAccepted(userID string) ([]models.Friendship, error) {
	var friends []models.Friendship
	err := s.DB.Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
		models.FriendshipAccepted, userID, userID).
		Order("responded_at DESC").
		Find(&friends).Error
	return friends, err
}

// ListPending returns requests awaiting the user's response.
func (s *FriendshipService) ListPending(userID string) ([]models.Friendship, error) {
	var pending []models.Friendship
	err := s.DB.Where("status = ? AND addressee_id = ?", models.FriendshipPending, userID).
		Order("created_at DESC").
		Find(&pending).Error
	return pending, err
}
