package services

import (
	"errors"
	"fmt"
	"time"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestProgressService drives the per-(user, quest) state machine:
// NotAccepted → Accepted → step 1..N → Completed. Completed is terminal.
type QuestProgressService struct {
	DB     *gorm.DB
	Awards *AwardService
}

func NewQuestProgressService(db *gorm.DB) *QuestProgressService {
	return &QuestProgressService{DB: db, Awards: NewAwardService(db)}
}

// CheckIn carries the coordinates attached to a step submission.
type CheckIn struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AcceptQuest creates the UserQuest row for the pair, exactly once. A second
// call — accepted or not, completed or not — is a ConflictError and leaves the
// existing row untouched.
func (s *QuestProgressService) AcceptQuest(externalUserID, questID string) (*models.UserQuest, error) {
	var quest models.Quest
	if err := s.DB.First(&quest, "id = ?", questID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "quest"}
		}
		return nil, err
	}

	now := time.Now()
	if quest.Status != models.QuestStatusPublished {
		return nil, &ValidationError{Reason: "quest is not open for acceptance"}
	}
	if quest.AvailableFrom != nil && now.Before(*quest.AvailableFrom) {
		return nil, &ValidationError{Reason: "quest is not available yet"}
	}
	if quest.AvailableUntil != nil && now.After(*quest.AvailableUntil) {
		return nil, &ValidationError{Reason: "quest availability window has closed"}
	}

	uq := models.UserQuest{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		QuestID:        questID,
		IsAccepted:     true,
		AcceptedAt:     now,
		CurrentStep:    1,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserQuest{}).
			Where("external_user_id = ? AND quest_id = ?", externalUserID, questID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Reason: "quest already accepted"}
		}

		if err := tx.Create(&uq).Error; err != nil {
			// Two concurrent first acceptances race past the count check; the
			// unique index on (user, quest) decides the winner.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: "quest already accepted"}
			}
			return err
		}

		return tx.Model(&models.Profile{}).
			Where("external_user_id = ?", externalUserID).
			UpdateColumn("quests_accepted", gorm.Expr("quests_accepted + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("🗺️ Quest accepted: %s → %s\n", quest.Title, externalUserID)
	return &uq, nil
}

// SubmitStep validates and records one step attempt, pays out the step XP, and
// advances the state machine by exactly one. Submitting the final step also
// marks the quest completed and applies the quest-level rewards (with the
// synergy-adjusted base XP) inside the same transaction.
func (s *QuestProgressService) SubmitStep(externalUserID, questID, stepID, proofRef string, checkIn *CheckIn) (*models.UserQuest, *models.RewardSummary, error) {
	var uq models.UserQuest
	if err := s.DB.Where("external_user_id = ? AND quest_id = ?", externalUserID, questID).
		First(&uq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Resource: "quest progress"}
		}
		return nil, nil, err
	}
	if uq.IsCompleted {
		return nil, nil, &ValidationError{Reason: "quest is already completed"}
	}

	var step models.QuestStep
	if err := s.DB.First(&step, "id = ? AND quest_id = ?", stepID, questID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Resource: "quest step"}
		}
		return nil, nil, err
	}

	if step.Ordinal != uq.CurrentStep {
		return nil, nil, &ValidationError{
			Reason: fmt.Sprintf("step %d submitted but step %d is next", step.Ordinal, uq.CurrentStep),
		}
	}
	if step.RequiresCheckIn && checkIn == nil {
		return nil, nil, &ValidationError{Reason: "step requires a check-in location"}
	}
	if proofRef == "" {
		return nil, nil, &ValidationError{Reason: "proof reference is required"}
	}

	var stepCount int64
	if err := s.DB.Model(&models.QuestStep{}).Where("quest_id = ?", questID).Count(&stepCount).Error; err != nil {
		return nil, nil, err
	}

	summary := &models.RewardSummary{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.submitLocked(tx, uq.ID, &step, proofRef, checkIn, stepCount, summary)
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.DB.First(&uq, "id = ?", uq.ID).Error; err != nil {
		return nil, nil, err
	}
	return &uq, summary, nil
}

// submitLocked is the transactional phase of SubmitStep. It re-reads the
// UserQuest row under a row lock: two concurrent submissions for the same
// expected step both pass pre-validation, but only the first advance survives —
// the loser sees a moved CurrentStep here and gets a ConflictError, never a
// double advance.
func (s *QuestProgressService) submitLocked(tx *gorm.DB, userQuestID string, step *models.QuestStep, proofRef string, checkIn *CheckIn, stepCount int64, summary *models.RewardSummary) error {
	var locked models.UserQuest
	if err := lockForUpdate(tx).First(&locked, "id = ?", userQuestID).Error; err != nil {
		return err
	}
	if locked.IsCompleted || locked.CurrentStep != step.Ordinal {
		return &ConflictError{Reason: "step was already submitted by a concurrent request"}
	}

	sub := models.QuestSubmission{
		ID:          uuid.NewString(),
		UserQuestID: locked.ID,
		QuestStepID: step.ID,
		ProofURL:    proofRef,
	}
	if checkIn != nil {
		sub.CheckInLat = &checkIn.Lat
		sub.CheckInLng = &checkIn.Lng
	}
	if err := tx.Create(&sub).Error; err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	now := time.Now()

	// Step XP pays out immediately. Synergy never applies at step level.
	stepSummary, err := s.Awards.ApplyRewards(tx, locked.ExternalUserID, models.SourceStepCompletion, step.ID, now)
	if err != nil {
		return err
	}
	summary.Merge(stepSummary)

	final := int64(step.Ordinal) == stepCount
	updates := map[string]interface{}{
		"current_step":       locked.CurrentStep + 1,
		"last_submission_at": now,
	}
	if final {
		updates["is_completed"] = true
		updates["completed_at"] = now
	}
	if err := tx.Model(&models.UserQuest{}).Where("id = ?", locked.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to advance step: %w", err)
	}

	if final {
		if err := tx.Model(&models.Profile{}).
			Where("external_user_id = ?", locked.ExternalUserID).
			UpdateColumn("quests_completed", gorm.Expr("quests_completed + 1")).Error; err != nil {
			return err
		}

		questSummary, err := s.Awards.ApplyRewards(tx, locked.ExternalUserID, models.SourceQuestCompletion, locked.QuestID, now)
		if err != nil {
			return err
		}
		summary.Merge(questSummary)
		fmt.Printf("🏁 Quest completed: %s → quest %s\n", locked.ExternalUserID, locked.QuestID)
	}
	return nil
}

// GetState returns a read-only snapshot of the pair's state machine.
func (s *QuestProgressService) GetState(externalUserID, questID string) (*models.UserQuest, error) {
	var uq models.UserQuest
	if err := s.DB.Where("external_user_id = ? AND quest_id = ?", externalUserID, questID).
		First(&uq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "quest progress"}
		}
		return nil, err
	}
	return &uq, nil
}

// ListUserQuests returns the user's quest instances, newest first.
func (s *QuestProgressService) ListUserQuests(externalUserID string) ([]models.UserQuest, error) {
	var quests []models.UserQuest
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("accepted_at DESC").
		Find(&quests).Error
	return quests, err
}
