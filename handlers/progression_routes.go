// handlers/progression_routes.go
package handlers

import (
	"quest-progression-system/middleware"
	"quest-progression-system/models"
	"quest-progression-system/services"
	"quest-progression-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, profileService *services.ProfileService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prof, err := profileService.EnsureProfile(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile",
				"cause": err.Error(),
			})
		}

		var badgeCount, titleCount int64
		if err := profileService.DB.Model(&models.UserBadge{}).Where("external_user_id = ?", userID).Count(&badgeCount).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile",
				"cause": err.Error(),
			})
		}
		if err := profileService.DB.Model(&models.UserTitle{}).Where("external_user_id = ?", userID).Count(&titleCount).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"id":               prof.ID,
			"xp":               prof.XP,
			"level":            prof.Level,
			"username":         prof.Username,
			"quests_accepted":  prof.QuestsAccepted,
			"quests_completed": prof.QuestsCompleted,
			"badge_count":      badgeCount,
			"title_count":      titleCount,
			"last_level_up_at": prof.LastLevelUpAt,
		})
	})

	securedGroup.Get("/user/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type ownedBadge struct {
			models.UserBadge
			Code        string `json:"code"`
			Name        string `json:"name"`
			Description string `json:"description"`
			IconURL     string `json:"icon_url"`
			Rarity      string `json:"rarity"`
		}
		var badges []ownedBadge
		if err := profileService.DB.Raw(`
			SELECT ub.*, b.code, b.name, b.description, b.icon_url, b.rarity
			FROM user_badges ub
			INNER JOIN badges b ON b.id = ub.badge_id
			WHERE ub.external_user_id = ?
			ORDER BY ub.awarded_at DESC
		`, userID).Scan(&badges).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badges",
				"cause": err.Error(),
			})
		}
		return c.JSON(badges)
	})

	securedGroup.Get("/user/titles", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type ownedTitle struct {
			models.UserTitle
			Code string `json:"code"`
			Name string `json:"name"`
		}
		var titles []ownedTitle
		if err := profileService.DB.Raw(`
			SELECT ut.*, t.code, t.name
			FROM user_titles ut
			INNER JOIN titles t ON t.id = ut.title_id
			WHERE ut.external_user_id = ?
			ORDER BY ut.awarded_at DESC
		`, userID).Scan(&titles).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get titles",
				"cause": err.Error(),
			})
		}
		return c.JSON(titles)
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type unlocked struct {
			models.UserAchievement
			Code        string `json:"code"`
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		var achievements []unlocked
		if err := profileService.DB.Raw(`
			SELECT ua.*, a.code, a.name, a.description
			FROM user_achievements ua
			INNER JOIN achievements a ON a.id = ua.achievement_id
			WHERE ua.external_user_id = ?
			ORDER BY ua.unlocked_at DESC
		`, userID).Scan(&achievements).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get achievements",
				"cause": err.Error(),
			})
		}
		return c.JSON(achievements)
	})

	// Proof upload: hands the client a presigned PUT URL plus the stable object
	// URL it should pass back as proof_url when submitting the step.
	securedGroup.Post("/user/uploads/proof", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		uploadURL, publicURL, err := utils.PresignProofUpload(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create upload URL",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"upload_url": uploadURL,
			"proof_url":  publicURL,
		})
	})
}
