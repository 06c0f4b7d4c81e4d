package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// handleListConversations GET /api/conversations
func (a *API) handleListConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)
	sums, err := a.svc.ListConversations(userID)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversations": renderSummaries(sums, userID, time.Now())})
}

// handleGetConversation GET /api/conversations/:id
func (a *API) handleGetConversation(c *fiber.Ctx) error {
	conv, last, err := a.svc.GetConversation(c.Params("id"), currentUserID(c))
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversation": renderConversation(conv, last, 0)})
}

type createDMReq struct {
	TargetUserID string `json:"targetUserId"`
}

// handleCreateDM POST /api/conversations/dm
//
// Find-or-create: an existing direct conversation with the target is
// reused and re-opened if the caller had hidden it.
func (a *API) handleCreateDM(c *fiber.Ctx) error {
	var req createDMReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	conv, err := a.svc.StartDM(currentUserID(c), req.TargetUserID)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": renderConversation(conv, nil, 0)})
}

type createGroupReq struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// handleCreateGroup POST /api/conversations/group
func (a *API) handleCreateGroup(c *fiber.Ctx) error {
	var req createGroupReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	conv, err := a.svc.CreateGroup(currentUserID(c), req.Name, req.MemberIDs)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": renderConversation(conv, nil, 0)})
}

// handleHideConversation DELETE /api/conversations/:id
//
// Per-user hide; other participants keep the conversation.
func (a *API) handleHideConversation(c *fiber.Ctx) error {
	if err := a.svc.HideConversation(c.Params("id"), currentUserID(c)); err != nil {
		return a.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleGetTheme GET /api/conversations/:id/theme
func (a *API) handleGetTheme(c *fiber.Ctx) error {
	t, err := a.svc.Theme(c.Params("id"), currentUserID(c))
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"theme": renderTheme(t)})
}

type themeReq struct {
	BgColor   string `json:"bgColor"`
	TextColor string `json:"textColor"`
}

// handleUpdateTheme PATCH /api/conversations/:id/theme
func (a *API) handleUpdateTheme(c *fiber.Ctx) error {
	var req themeReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	t, err := a.svc.UpdateTheme(c.Params("id"), currentUserID(c), req.BgColor, req.TextColor)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"theme": renderTheme(t)})
}

// handleListAttachments GET /api/conversations/:id/attachments
func (a *API) handleListAttachments(c *fiber.Ctx) error {
	msgs, err := a.svc.ListAttachments(c.Params("id"), currentUserID(c))
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"attachments": renderMessages(msgs)})
}
