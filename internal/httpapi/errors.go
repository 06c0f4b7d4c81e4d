package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pcordeiro/parley/internal/auth"
	"github.com/pcordeiro/parley/internal/chat"
	"go.uber.org/zap"
)

// respondError maps domain errors onto the API error taxonomy. Unknown
// errors are logged and surface as a generic 500 so internals never leak.
func (a *API) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, chat.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message needs text or files"})
	case errors.Is(err, chat.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	default:
		a.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
