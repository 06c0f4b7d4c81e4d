package httpapi

import (
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pcordeiro/parley/internal/chat"
	"github.com/pcordeiro/parley/internal/store"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type registerReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister POST /api/auth/register
func (a *API) handleRegister(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	switch {
	case req.FullName == "":
		return badRequest(c, "full name is required")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return badRequest(c, "a valid email is required")
	case len(req.Password) < 6:
		return badRequest(c, "password must be at least 6 characters")
	}

	if existing, err := a.db.GetUserByEmail(req.Email); err != nil {
		return a.respondError(c, err)
	} else if existing != nil {
		return badRequest(c, "email already registered")
	}

	hash, err := a.auth.HashPassword(req.Password)
	if err != nil {
		return a.respondError(c, err)
	}
	u := &store.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UnixMilli(),
	}
	if err := a.db.CreateUser(u); err != nil {
		return a.respondError(c, err)
	}

	token, err := a.auth.IssueToken(u.ID, time.Now())
	if err != nil {
		return a.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  renderUser(u, true),
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin POST /api/auth/login
func (a *API) handleLogin(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	u, err := a.db.GetUserByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		return a.respondError(c, err)
	}
	if u == nil || !a.auth.CheckPassword(u.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "wrong email or password"})
	}
	token, err := a.auth.IssueToken(u.ID, time.Now())
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  renderUser(u, true),
	})
}

// handleLogout POST /api/auth/logout
//
// Tokens are stateless; the client discards its copy.
func (a *API) handleLogout(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// handleMe GET /api/auth/me
//
// A null profile routes the client to onboarding.
func (a *API) handleMe(c *fiber.Ctx) error {
	u, err := a.db.GetUser(currentUserID(c))
	if err != nil {
		return a.respondError(c, err)
	}
	if u == nil {
		return a.respondError(c, chat.ErrNotFound)
	}
	return c.JSON(fiber.Map{"user": renderUser(u, true)})
}

func validateUsername(username string) string {
	switch {
	case username == "":
		return "username is required"
	case len(username) < 3:
		return "username must be at least 3 characters"
	case len(username) > 20:
		return "username must be at most 20 characters"
	case !usernameRe.MatchString(username):
		return "username may only contain letters, numbers and underscores"
	}
	return ""
}

// handleOnboarding POST /api/auth/onboarding (multipart)
//
// Creates the user's profile: username, optional bio, date of birth, and
// avatar image.
func (a *API) handleOnboarding(c *fiber.Ctx) error {
	userID := currentUserID(c)
	u, err := a.db.GetUser(userID)
	if err != nil {
		return a.respondError(c, err)
	}
	if u == nil {
		return a.respondError(c, chat.ErrNotFound)
	}
	if u.Profile != nil {
		return badRequest(c, "profile already exists")
	}

	username := strings.TrimSpace(c.FormValue("username"))
	bio := c.FormValue("bio")
	dateOfBirth := c.FormValue("dateOfBirth")
	if msg := validateUsername(username); msg != "" {
		return badRequest(c, msg)
	}
	if len(bio) > 160 {
		return badRequest(c, "bio must be at most 160 characters")
	}

	avatarURL, err := a.saveFormAvatar(c)
	if err != nil {
		return a.respondError(c, err)
	}

	p := &store.Profile{
		UserID:      userID,
		Username:    username,
		Bio:         bio,
		AvatarURL:   avatarURL,
		DateOfBirth: dateOfBirth,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if err := a.db.CreateProfile(p); err != nil {
		return badRequest(c, "username already taken")
	}
	u.Profile = p
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": renderUser(u, true)})
}

// saveFormAvatar uploads the optional "avatar" form file and returns its
// public URL, or "" when none was sent.
func (a *API) saveFormAvatar(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return a.uploads.Upload(fh.Filename, f)
}
