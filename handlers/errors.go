package handlers

import (
	"errors"

	"quest-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps the service error taxonomy onto HTTP statuses. Callers
// decide whether a 409 on a step submit warrants a retry with refreshed state.
func serviceError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	var ce *services.ConflictError
	var ne *services.NotFoundError

	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Reason})
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ce.Reason})
	case errors.As(err, &ne):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ne.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}
