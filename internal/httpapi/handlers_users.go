package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pcordeiro/parley/internal/chat"
)

// handleSearchUsers GET /api/users/search?q=
//
// Queries shorter than two characters return an empty list without
// touching storage.
func (a *API) handleSearchUsers(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		return c.JSON(fiber.Map{"users": []userJSON{}})
	}
	users, err := a.db.SearchUsers(q, currentUserID(c), 20)
	if err != nil {
		return a.respondError(c, err)
	}
	out := make([]userJSON, 0, len(users))
	for i := range users {
		out = append(out, renderUser(&users[i], false))
	}
	return c.JSON(fiber.Map{"users": out})
}

// handleGetUser GET /api/users/:id
func (a *API) handleGetUser(c *fiber.Ctx) error {
	u, err := a.db.GetUser(c.Params("id"))
	if err != nil {
		return a.respondError(c, err)
	}
	if u == nil {
		return a.respondError(c, chat.ErrNotFound)
	}
	return c.JSON(fiber.Map{"user": renderUser(u, false)})
}

// handleEditProfile PATCH /api/users/me (multipart)
//
// Updates full name, bio, date of birth, and optionally the avatar.
func (a *API) handleEditProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)
	u, err := a.db.GetUser(userID)
	if err != nil {
		return a.respondError(c, err)
	}
	if u == nil {
		return a.respondError(c, chat.ErrNotFound)
	}
	if u.Profile == nil {
		return badRequest(c, "complete onboarding first")
	}

	fullName := strings.TrimSpace(c.FormValue("fullName"))
	bio := c.FormValue("bio")
	dateOfBirth := c.FormValue("dateOfBirth")
	if fullName == "" {
		return badRequest(c, "full name is required")
	}
	if len(bio) > 160 {
		return badRequest(c, "bio must be at most 160 characters")
	}

	avatarURL, err := a.saveFormAvatar(c)
	if err != nil {
		return a.respondError(c, err)
	}

	if fullName != u.FullName {
		if err := a.db.UpdateFullName(userID, fullName); err != nil {
			return a.respondError(c, err)
		}
	}
	if err := a.db.UpdateProfile(userID, bio, dateOfBirth, avatarURL); err != nil {
		return a.respondError(c, err)
	}

	u, err = a.db.GetUser(userID)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": renderUser(u, true)})
}

// handleHeartbeat PATCH /api/messages/presence
func (a *API) handleHeartbeat(c *fiber.Ctx) error {
	if err := a.tracker.Heartbeat(currentUserID(c)); err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"lastSeenAt": time.Now().UTC().Format(time.RFC3339)})
}
