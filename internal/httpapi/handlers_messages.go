package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pcordeiro/parley/internal/chat"
)

// handleListMessages GET /api/messages/:conversationId
//
// Listing doubles as the read receipt: every returned message the caller
// did not send is marked read.
func (a *API) handleListMessages(c *fiber.Ctx) error {
	msgs, err := a.svc.ListMessages(c.Params("conversationId"), currentUserID(c))
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": renderMessages(msgs)})
}

// handleSendMessage POST /api/messages/:conversationId (multipart)
//
// Accepts a "content" text field plus any number of "files" parts. Files
// become one message each, followed by the text message.
func (a *API) handleSendMessage(c *fiber.Ctx) error {
	convID := c.Params("conversationId")
	text := c.FormValue("content")

	var files []chat.FileUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["files"] {
			f, err := fh.Open()
			if err != nil {
				return a.respondError(c, err)
			}
			defer func() { _ = f.Close() }()
			files = append(files, chat.FileUpload{
				Name:   fh.Filename,
				Size:   fh.Size,
				Reader: f,
			})
		}
	}

	msgs, err := a.svc.SendMessage(convID, currentUserID(c), text, files)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"messages": renderMessages(msgs)})
}

// handleDeleteMessage DELETE /api/messages/:messageId
//
// Sender-only soft delete; everyone sees a placeholder afterwards.
func (a *API) handleDeleteMessage(c *fiber.Ctx) error {
	if err := a.svc.SoftDeleteMessage(c.Params("messageId"), currentUserID(c)); err != nil {
		return a.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleHideMessage POST /api/messages/:messageId/hide
func (a *API) handleHideMessage(c *fiber.Ctx) error {
	if err := a.svc.HideMessageForUser(c.Params("messageId"), currentUserID(c)); err != nil {
		return a.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type reactReq struct {
	Emoji string `json:"emoji"`
}

// handleReact POST /api/messages/:messageId/react
//
// Toggles the caller's reaction and reports the resulting state.
func (a *API) handleReact(c *fiber.Ctx) error {
	var req reactReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	added, err := a.svc.ToggleReaction(c.Params("messageId"), currentUserID(c), req.Emoji)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{"reacted": added})
}

// handleSetTyping POST /api/messages/:conversationId/typing
func (a *API) handleSetTyping(c *fiber.Ctx) error {
	convID := c.Params("conversationId")
	userID := currentUserID(c)
	if ok, err := a.db.IsParticipant(convID, userID); err != nil {
		return a.respondError(c, err)
	} else if !ok {
		return a.respondError(c, chat.ErrPermissionDenied)
	}
	if err := a.tracker.SetTyping(convID, userID); err != nil {
		return a.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleGetTyping GET /api/messages/:conversationId/typing
func (a *API) handleGetTyping(c *fiber.Ctx) error {
	convID := c.Params("conversationId")
	userID := currentUserID(c)
	if ok, err := a.db.IsParticipant(convID, userID); err != nil {
		return a.respondError(c, err)
	} else if !ok {
		return a.respondError(c, chat.ErrPermissionDenied)
	}
	ids, err := a.tracker.TypingUsers(convID, userID)
	if err != nil {
		return a.respondError(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(fiber.Map{"typingUsers": ids})
}
