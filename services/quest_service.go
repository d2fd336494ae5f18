// services/quest_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"quest-progression-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// QuestService owns the quest catalog: admin CRUD, reward definition
// materialization, and the published listing the mobile client browses.
type QuestService struct {
	DB *gorm.DB
}

func NewQuestService(db *gorm.DB) *QuestService {
	return &QuestService{DB: db}
}

// --- Admin Handlers ---

// CreateQuest creates a quest with its ordered steps and materializes the
// reward definitions: one XP row per step plus the quest-level base XP and
// optional completion badge/title (Admin only).
func (s *QuestService) CreateQuest(c *fiber.Ctx) error {
	var req struct {
		Title          string     `json:"title" validate:"required"`
		Description    string     `json:"description"`
		CoverURL       string     `json:"cover_url"`
		LocationName   string     `json:"location_name"`
		Latitude       *float64   `json:"latitude"`
		Longitude      *float64   `json:"longitude"`
		AvailableFrom  *time.Time `json:"available_from"`
		AvailableUntil *time.Time `json:"available_until"`
		PublishAt      *time.Time `json:"publish_at"`
		Status         models.QuestStatus `json:"status"`
		BaseXPReward   int64      `json:"base_xp_reward"`
		BadgeCode      string     `json:"completion_badge_code"`
		TitleCode      string     `json:"completion_title_code"`
		Steps          []struct {
			Title           string `json:"title" validate:"required"`
			Instructions    string `json:"instructions"`
			StepXPReward    int64  `json:"step_xp_reward"`
			RequiresCheckIn bool   `json:"requires_check_in"`
		} `json:"steps"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}
	if len(req.Steps) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "At least one step is required"})
	}
	if req.BaseXPReward < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Base XP reward cannot be negative"})
	}
	if req.Status == "" {
		req.Status = models.QuestStatusDraft
	}

	// Resolve optional completion collectibles before opening the transaction
	var badgeID, titleID string
	if req.BadgeCode != "" {
		var badge models.Badge
		if err := s.DB.First(&badge, "code = ?", req.BadgeCode).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown completion badge code"})
		}
		badgeID = badge.ID
	}
	if req.TitleCode != "" {
		var title models.Title
		if err := s.DB.First(&title, "code = ?", req.TitleCode).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown completion title code"})
		}
		titleID = title.ID
	}

	quest := models.Quest{
		ID:             uuid.NewString(),
		Slug:           s.uniqueSlug(req.Title),
		Title:          req.Title,
		Description:    req.Description,
		CoverURL:       req.CoverURL,
		LocationName:   req.LocationName,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
		PublishAt:      req.PublishAt,
		Status:         req.Status,
		BaseXPReward:   req.BaseXPReward,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quest).Error; err != nil {
			return err
		}

		var defs []*models.RewardDefinition

		for i, reqStep := range req.Steps {
			step := models.QuestStep{
				ID:              uuid.NewString(),
				QuestID:         quest.ID,
				Ordinal:         i + 1,
				Title:           reqStep.Title,
				Instructions:    reqStep.Instructions,
				StepXPReward:    reqStep.StepXPReward,
				RequiresCheckIn: reqStep.RequiresCheckIn,
			}
			if err := tx.Create(&step).Error; err != nil {
				return err
			}
			if step.StepXPReward > 0 {
				def, err := models.NewXPReward(models.SourceStepCompletion, step.ID, step.StepXPReward)
				if err != nil {
					return err
				}
				defs = append(defs, def)
			}
			quest.Steps = append(quest.Steps, step)
		}

		if quest.BaseXPReward > 0 {
			def, err := models.NewXPReward(models.SourceQuestCompletion, quest.ID, quest.BaseXPReward)
			if err != nil {
				return err
			}
			defs = append(defs, def)
		}
		if badgeID != "" {
			def, err := models.NewBadgeReward(models.SourceQuestCompletion, quest.ID, badgeID, 0)
			if err != nil {
				return err
			}
			defs = append(defs, def)
		}
		if titleID != "" {
			def, err := models.NewTitleReward(models.SourceQuestCompletion, quest.ID, titleID, 0)
			if err != nil {
				return err
			}
			defs = append(defs, def)
		}

		for _, def := range defs {
			def.ID = uuid.NewString()
			if err := tx.Create(def).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("DB Error creating quest: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create quest"})
	}

	return c.Status(fiber.StatusCreated).JSON(quest)
}

// UpdateQuestStatus allows admin to change the status (e.g., draft -> published)
func (s *QuestService) UpdateQuestStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quest ID"})
	}

	var req struct {
		Status models.QuestStatus `json:"status" validate:"required,oneof=draft published archived"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	switch req.Status {
	case models.QuestStatusDraft, models.QuestStatusPublished, models.QuestStatusArchived:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	var quest models.Quest
	if err := s.DB.First(&quest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	quest.Status = req.Status
	if req.Status == models.QuestStatusPublished {
		quest.PublishAt = nil
	}
	if err := s.DB.Save(&quest).Error; err != nil {
		log.Printf("DB Error updating quest status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update quest status"})
	}

	return c.JSON(fiber.Map{"message": "Quest status updated successfully", "quest": quest})
}

// DeleteQuest soft-deletes a quest (Admin only)
func (s *QuestService) DeleteQuest(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quest ID"})
	}

	var quest models.Quest
	if err := s.DB.First(&quest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&quest).Error; err != nil {
		log.Printf("DB Error deleting quest: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete quest"})
	}

	return c.JSON(fiber.Map{"message": "Quest deleted successfully"})
}

// CreateBadge adds a badge to the catalog (Admin only)
func (s *QuestService) CreateBadge(c *fiber.Ctx) error {
	var req struct {
		Code        string `json:"code" validate:"required"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		IconURL     string `json:"icon_url"`
		Rarity      string `json:"rarity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Code == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Code and name are required"})
	}
	if req.Rarity == "" {
		req.Rarity = "common"
	}

	badge := models.Badge{
		ID:          uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
		Rarity:      req.Rarity,
	}
	if err := s.DB.Create(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Badge code already exists"})
		}
		log.Printf("DB Error creating badge: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create badge"})
	}
	return c.Status(fiber.StatusCreated).JSON(badge)
}

// CreateTitle adds a display title to the catalog (Admin only)
func (s *QuestService) CreateTitle(c *fiber.Ctx) error {
	var req struct {
		Code        string `json:"code" validate:"required"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Code == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Code and name are required"})
	}

	title := models.Title{
		ID:          uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.DB.Create(&title).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Title code already exists"})
		}
		log.Printf("DB Error creating title: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create title"})
	}
	return c.Status(fiber.StatusCreated).JSON(title)
}

// CreateAchievement adds a threshold achievement and its single reward — exactly
// one of xp_amount, badge_code, or title_code (Admin only).
func (s *QuestService) CreateAchievement(c *fiber.Ctx) error {
	var req struct {
		Code         string `json:"code" validate:"required"`
		Name         string `json:"name" validate:"required"`
		Description  string `json:"description"`
		TriggerKey   string `json:"trigger_key" validate:"required"`
		TriggerValue int64  `json:"trigger_value" validate:"required,min=1"`
		XPAmount     int64  `json:"xp_amount"`
		BadgeCode    string `json:"badge_code"`
		TitleCode    string `json:"title_code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Code == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Code and name are required"})
	}
	switch req.TriggerKey {
	case models.TriggerTotalXP, models.TriggerLevel, models.TriggerQuestsCompleted:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown trigger key"})
	}
	if req.TriggerValue < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Trigger value must be at least 1"})
	}

	rewardsSet := 0
	if req.XPAmount > 0 {
		rewardsSet++
	}
	if req.BadgeCode != "" {
		rewardsSet++
	}
	if req.TitleCode != "" {
		rewardsSet++
	}
	if rewardsSet != 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Exactly one of xp_amount, badge_code, or title_code must be set",
		})
	}

	achievement := models.Achievement{
		ID:           uuid.NewString(),
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		TriggerKey:   req.TriggerKey,
		TriggerValue: req.TriggerValue,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&achievement).Error; err != nil {
			return err
		}

		var def *models.RewardDefinition
		var err error
		switch {
		case req.XPAmount > 0:
			def, err = models.NewXPReward(models.SourceAchievementUnlock, achievement.ID, req.XPAmount)
		case req.BadgeCode != "":
			var badge models.Badge
			if err := tx.First(&badge, "code = ?", req.BadgeCode).Error; err != nil {
				return fmt.Errorf("unknown badge code %q", req.BadgeCode)
			}
			def, err = models.NewBadgeReward(models.SourceAchievementUnlock, achievement.ID, badge.ID, 0)
		default:
			var title models.Title
			if err := tx.First(&title, "code = ?", req.TitleCode).Error; err != nil {
				return fmt.Errorf("unknown title code %q", req.TitleCode)
			}
			def, err = models.NewTitleReward(models.SourceAchievementUnlock, achievement.ID, title.ID, 0)
		}
		if err != nil {
			return err
		}

		def.ID = uuid.NewString()
		return tx.Create(def).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Achievement code already exists"})
		}
		log.Printf("DB Error creating achievement: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(achievement)
}

// --- User Handlers ---

// ListPublishedQuests fetches quests currently open for acceptance
func (s *QuestService) ListPublishedQuests(c *fiber.Ctx) error {
	now := time.Now()
	var quests []models.Quest
	if err := s.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	}).
		Where("status = ?", models.QuestStatusPublished).
		Where("(available_from IS NULL OR available_from <= ?)", now).
		Where("(available_until IS NULL OR available_until >= ?)", now).
		Order("created_at DESC").
		Find(&quests).Error; err != nil {
		log.Printf("DB Error fetching quests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch quests"})
	}
	return c.JSON(quests)
}

// GetQuest fetches one quest with its ordered steps, by id or slug
func (s *QuestService) GetQuest(c *fiber.Ctx) error {
	id := c.Params("id")

	var quest models.Quest
	query := s.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	})
	if _, err := uuid.Parse(id); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", id)
	}
	if err := query.First(&quest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(quest)
}

// uniqueSlug derives a URL slug from the title, suffixing on collision.
func (s *QuestService) uniqueSlug(title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 0; ; i++ {
		var count int64
		if err := s.DB.Model(&models.Quest{}).Where("slug = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		if i > 3 {
			return candidate
		}
	}
}
