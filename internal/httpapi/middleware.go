package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pcordeiro/parley/internal/auth"
)

const userIDKey = "userID"

// requireAuth resolves the bearer token into the current user id.
func (a *API) requireAuth(c *fiber.Ctx) error {
	h := c.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return a.respondError(c, auth.ErrInvalidToken)
	}
	userID, err := a.auth.VerifyToken(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return a.respondError(c, err)
	}
	c.Locals(userIDKey, userID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
