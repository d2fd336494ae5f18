// handlers/quest_routes.go
package handlers

import (
	"quest-progression-system/middleware"
	"quest-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService, progressService *services.QuestProgressService) {
	// 🔐 Secured routes — require user context from the gateway
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/quests", questService.ListPublishedQuests)
	securedGroup.Get("/quests/:id", questService.GetQuest)

	securedGroup.Post("/quests/:id/accept", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		uq, err := progressService.AcceptQuest(userID, c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uq)
	})

	securedGroup.Post("/quests/:id/steps/:stepId/submit", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			ProofURL string            `json:"proof_url"`
			CheckIn  *services.CheckIn `json:"check_in"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		uq, summary, err := progressService.SubmitStep(userID, c.Params("id"), c.Params("stepId"), req.ProofURL, req.CheckIn)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"progress": uq,
			"rewards":  summary,
		})
	})

	securedGroup.Get("/quests/:id/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		uq, err := progressService.GetState(userID, c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(uq)
	})

	securedGroup.Get("/user/quests", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		quests, err := progressService.ListUserQuests(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(quests)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/quests", questService.CreateQuest)
	adminGroup.Patch("/quests/:id/status", questService.UpdateQuestStatus)
	adminGroup.Delete("/quests/:id", questService.DeleteQuest)
	adminGroup.Post("/badges", questService.CreateBadge)
	adminGroup.Post("/titles", questService.CreateTitle)
	adminGroup.Post("/achievements", questService.CreateAchievement)
}
