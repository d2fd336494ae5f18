package services

import (
	"errors"
	"fmt"
	"time"

	"quest-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SynergyMultiplier numerator/denominator: the friend bonus is ×1.1 with the
// result truncated toward zero, so the math stays in integers.
const (
	synergyNumerator   = 11
	synergyDenominator = 10
)

// Achievement chains (an unlock whose reward unlocks another) are bounded by the
// catalog, but a hard cap keeps a miswritten catalog from recursing.
const maxRewardChainDepth = 4

// AwardService applies the reward definitions of a reward source — a completed
// quest, one of its steps, or an unlocked achievement — as one unit of work:
// collectible grants, a single XP delta against the profile, and the level
// recompute all land on the caller's transaction and commit or roll back
// together.
type AwardService struct {
	DB      *gorm.DB
	Ledger  *LedgerService
	Synergy *SynergyService
}

func NewAwardService(db *gorm.DB) *AwardService {
	return &AwardService{
		DB:      db,
		Ledger:  NewLedgerService(db),
		Synergy: NewSynergyService(db),
	}
}

// ApplyRewards enumerates the RewardDefinition rows of the source and applies
// them on tx. For quest completions the stored XP amount (the quest's base
// reward) is multiplied by 1.1, truncated, when the synergy check holds at
// evaluation time. The returned summary is caller feedback; the committed rows
// are authoritative.
//
// Callers must pass the transaction handle of the surrounding unit of work so a
// failure rolls back every grant together with the caller's own writes.
func (s *AwardService) ApplyRewards(tx *gorm.DB, externalUserID string, sourceKind models.RewardSourceKind, sourceID string, at time.Time) (*models.RewardSummary, error) {
	summary := &models.RewardSummary{}
	if err := s.applyRewards(tx, externalUserID, sourceKind, sourceID, at, summary, 0); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *AwardService) applyRewards(tx *gorm.DB, externalUserID string, sourceKind models.RewardSourceKind, sourceID string, at time.Time, summary *models.RewardSummary, depth int) error {
	if depth > maxRewardChainDepth {
		return fmt.Errorf("reward chain exceeded depth %d for source %s/%s", maxRewardChainDepth, sourceKind, sourceID)
	}

	var defs []models.RewardDefinition
	if err := tx.Where("source_kind = ? AND source_id = ?", sourceKind, sourceID).
		Order("created_at ASC").
		Find(&defs).Error; err != nil {
		return fmt.Errorf("failed to load reward definitions for %s/%s: %w", sourceKind, sourceID, err)
	}
	if len(defs) == 0 && sourceKind != models.SourceQuestCompletion {
		return nil
	}

	var totalXP int64
	for _, def := range defs {
		switch def.Kind {
		case models.RewardKindBadge:
			granted, err := s.Ledger.GrantBadge(tx, externalUserID, *def.BadgeID)
			if err != nil {
				return err
			}
			if granted {
				summary.BadgeIDs = append(summary.BadgeIDs, *def.BadgeID)
			}
			totalXP += def.XPAmount

		case models.RewardKindTitle:
			granted, err := s.Ledger.GrantTitle(tx, externalUserID, *def.TitleID)
			if err != nil {
				return err
			}
			if granted {
				summary.TitleIDs = append(summary.TitleIDs, *def.TitleID)
			}
			totalXP += def.XPAmount

		case models.RewardKindXP:
			amount := def.XPAmount
			if sourceKind == models.SourceQuestCompletion {
				bonus, err := s.Synergy.HasSynergyBonus(tx, externalUserID, sourceID, at)
				if err != nil {
					return err
				}
				if bonus {
					amount = amount * synergyNumerator / synergyDenominator
					summary.SynergyApplied = true
				}
			}
			totalXP += amount

		default:
			return fmt.Errorf("unknown reward kind %q in definition %s", def.Kind, def.ID)
		}
	}

	if totalXP != 0 {
		prof, err := s.applyXPDelta(tx, externalUserID, totalXP, summary)
		if err != nil {
			return err
		}
		return s.evaluateAchievements(tx, prof, at, summary, depth)
	}

	if sourceKind != models.SourceQuestCompletion {
		return nil
	}

	// No XP moved, but the quests_completed counter was bumped just before the
	// completion rewards, so counter-triggered achievements may now hold.
	var prof models.Profile
	if err := tx.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "profile"}
		}
		return err
	}
	summary.NewXP = prof.XP
	summary.NewLevel = prof.Level
	return s.evaluateAchievements(tx, &prof, at, summary, depth)
}

// applyXPDelta locks the profile row, applies the delta, recomputes the level
// and persists both in the same write. The row lock serializes concurrent
// awards for the same profile, so a completion and a step award can never lose
// each other's XP.
func (s *AwardService) applyXPDelta(tx *gorm.DB, externalUserID string, delta int64, summary *models.RewardSummary) (*models.Profile, error) {
	var prof models.Profile
	if err := lockForUpdate(tx).
		Where("external_user_id = ?", externalUserID).
		First(&prof).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "profile"}
		}
		return nil, err
	}

	oldLevel := prof.Level
	prof.XP += delta
	if prof.XP < 0 {
		prof.XP = 0
	}
	prof.Level = LevelForXP(prof.XP)

	updates := map[string]interface{}{
		"xp":    prof.XP,
		"level": prof.Level,
	}
	if prof.Level > oldLevel {
		now := time.Now()
		prof.LastLevelUpAt = &now
		updates["last_level_up_at"] = now
	}
	if err := tx.Model(&models.Profile{}).Where("id = ?", prof.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to persist xp delta for %s: %w", externalUserID, err)
	}

	summary.XPAwarded += delta
	summary.NewXP = prof.XP
	summary.NewLevel = prof.Level
	if prof.Level > oldLevel {
		summary.LeveledUp = true
		fmt.Printf("🎮 Level up: %s → XP=%d, Lvl=%d\n", externalUserID, prof.XP, prof.Level)
	}
	return &prof, nil
}

// evaluateAchievements unlocks any threshold achievements the profile now meets
// and pushes their rewards through the same transaction.
func (s *AwardService) evaluateAchievements(tx *gorm.DB, prof *models.Profile, at time.Time, summary *models.RewardSummary, depth int) error {
	var achievements []models.Achievement
	if err := tx.Find(&achievements).Error; err != nil {
		return err
	}

	for _, a := range achievements {
		if !meetsTrigger(prof, &a) {
			continue
		}

		unlock := models.UserAchievement{
			ID:             uuid.NewString(),
			ExternalUserID: prof.ExternalUserID,
			AchievementID:  a.ID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&unlock)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue // already unlocked
		}

		summary.AchievementsUnlocked = append(summary.AchievementsUnlocked, a.Code)
		fmt.Printf("🏆 Achievement unlocked: %s → %s\n", a.Code, prof.ExternalUserID)

		if err := s.applyRewards(tx, prof.ExternalUserID, models.SourceAchievementUnlock, a.ID, at, summary, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func meetsTrigger(prof *models.Profile, a *models.Achievement) bool {
	switch a.TriggerKey {
	case models.TriggerTotalXP:
		return prof.XP >= a.TriggerValue
	case models.TriggerLevel:
		return int64(prof.Level) >= a.TriggerValue
	case models.TriggerQuestsCompleted:
		return prof.QuestsCompleted >= a.TriggerValue
	}
	return false
}
