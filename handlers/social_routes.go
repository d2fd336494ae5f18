// handlers/social_routes.go
package handlers

import (
	"quest-progression-system/middleware"
	"quest-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSocialRoutes(app *fiber.App, friendshipService *services.FriendshipService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/user/friends", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			FriendID string `json:"friend_id" validate:"required"`
		}
		if err := c.BodyParser(&req); err != nil || req.FriendID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "friend_id is required"})
		}

		f, err := friendshipService.Request(userID, req.FriendID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	})

	securedGroup.Post("/user/friends/:id/accept", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		f, err := friendshipService.Accept(userID, c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	})

	securedGroup.Post("/user/friends/:friendId/block", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		f, err := friendshipService.Block(userID, c.Params("friendId"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	})

	securedGroup.Get("/user/friends", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		accepted, err := friendshipService.ListAccepted(userID)
		if err != nil {
			return serviceError(c, err)
		}
		pending, err := friendshipService.ListPending(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"friends": accepted,
			"pending": pending,
		})
	})
}
