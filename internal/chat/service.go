// Package chat implements the message store accessor and the conversation
// list assembler on top of the store and the visibility ledger.
package chat

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pcordeiro/parley/internal/bus"
	"github.com/pcordeiro/parley/internal/store"
	"github.com/pcordeiro/parley/internal/visibility"
	"go.uber.org/zap"
)

// Uploader stores an attachment and returns its public URL.
type Uploader interface {
	Upload(name string, r io.Reader) (string, error)
}

// Service bundles the message and conversation operations the API serves.
type Service struct {
	db      *store.DB
	ledger  *visibility.Ledger
	uploads Uploader
	bus     *bus.Bus
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates the chat service.
func NewService(db *store.DB, ledger *visibility.Ledger, uploads Uploader, b *bus.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      db,
		ledger:  ledger,
		uploads: uploads,
		bus:     b,
		logger:  logger,
		now:     time.Now,
	}
}

// requireParticipant resolves the conversation and checks membership.
func (s *Service) requireParticipant(conversationID, userID string) (*store.Conversation, error) {
	conv, err := s.db.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrNotFound
	}
	ok, err := s.db.IsParticipant(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}
	return conv, nil
}

// ListMessages returns the conversation's messages visible to the user,
// oldest first, and marks every returned message not authored by the user
// as read. Re-marking an already-read message is a no-op.
func (s *Service) ListMessages(conversationID, userID string) ([]store.Message, error) {
	if _, err := s.requireParticipant(conversationID, userID); err != nil {
		return nil, err
	}

	msgs, err := s.db.ListConversationMessages(conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err = s.ledger.FilterMessagesForUser(userID, conversationID, msgs)
	if err != nil {
		return nil, err
	}

	var unread []string
	for _, m := range msgs {
		if m.SenderID == userID || m.DeletedAt != 0 {
			continue
		}
		seen := false
		for _, r := range m.Reads {
			if r.UserID == userID {
				seen = true
				break
			}
		}
		if !seen {
			unread = append(unread, m.ID)
		}
	}
	if len(unread) > 0 {
		if err := s.db.MarkMessagesRead(userID, unread, s.now().UnixMilli()); err != nil {
			return nil, fmt.Errorf("mark read: %w", err)
		}
	}
	return msgs, nil
}

// SoftDeleteMessage removes a message for everyone. Only the sender may do
// this; the row stays and renders as a placeholder.
func (s *Service) SoftDeleteMessage(messageID, userID string) error {
	m, err := s.db.GetMessage(messageID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotFound
	}
	if m.SenderID != userID {
		return ErrPermissionDenied
	}
	if err := s.db.SoftDeleteMessage(messageID, s.now().UnixMilli()); err != nil {
		return err
	}
	s.bus.Emit("message.deleted", map[string]string{
		"conversation_id": m.ConversationID,
		"message_id":      messageID,
	})
	return nil
}

// HideMessageForUser hides one message from the calling user only.
// Idempotent; other participants' views and read state are untouched.
func (s *Service) HideMessageForUser(messageID, userID string) error {
	m, err := s.db.GetMessage(messageID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotFound
	}
	return s.db.UpsertMessageHide(messageID, userID, s.now().UnixMilli())
}

// ToggleReaction flips the user's emoji reaction on a message and returns
// whether it is present afterwards.
func (s *Service) ToggleReaction(messageID, userID, emoji string) (bool, error) {
	if emoji == "" {
		return false, fmt.Errorf("%w: empty emoji", ErrInvalidInput)
	}
	m, err := s.db.GetMessage(messageID)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, ErrNotFound
	}
	added, err := s.db.ToggleReaction(messageID, userID, emoji, s.now().UnixMilli())
	if err != nil {
		return false, err
	}
	s.bus.Emit("message.reacted", map[string]string{
		"conversation_id": m.ConversationID,
		"message_id":      messageID,
	})
	return added, nil
}

// ListAttachments returns the conversation's image and file messages,
// newest first, excluding soft-deleted ones.
func (s *Service) ListAttachments(conversationID, userID string) ([]store.Message, error) {
	if _, err := s.requireParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	return s.db.ListAttachments(conversationID)
}

// StartDM finds or creates the direct conversation with the target user.
// An existing conversation is always reused; if the caller had fully
// hidden it, it is re-opened from now instead of duplicated.
func (s *Service) StartDM(userID, targetUserID string) (*store.Conversation, error) {
	if targetUserID == "" || targetUserID == userID {
		return nil, fmt.Errorf("%w: bad dm target", ErrInvalidInput)
	}
	target, err := s.db.GetUser(targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}

	if conv, err := s.db.FindDirectConversation(userID, targetUserID); err != nil {
		return nil, err
	} else if conv != nil {
		if err := s.ledger.ReopenOnNewActivity(userID, conv.ID, s.now().UnixMilli()); err != nil {
			return nil, err
		}
		return conv, nil
	}

	conv := &store.Conversation{
		ID:        uuid.NewString(),
		IsGroup:   false,
		CreatedBy: userID,
		CreatedAt: s.now().UnixMilli(),
	}
	key := store.DMKey(userID, targetUserID)
	if err := s.db.CreateConversation(conv, key, []string{userID, targetUserID}); err != nil {
		return nil, err
	}
	s.bus.Emit("conversation.created", map[string]string{"conversation_id": conv.ID})
	return s.db.GetConversation(conv.ID)
}

// CreateGroup creates a named group conversation with the caller plus the
// given members.
func (s *Service) CreateGroup(userID, name string, memberIDs []string) (*store.Conversation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}
	members := map[string]bool{userID: true}
	ids := []string{userID}
	for _, id := range memberIDs {
		if id == "" || members[id] {
			continue
		}
		u, err := s.db.GetUser(id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, id)
		}
		members[id] = true
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: group needs at least one other member", ErrInvalidInput)
	}

	conv := &store.Conversation{
		ID:        uuid.NewString(),
		Name:      name,
		IsGroup:   true,
		CreatedBy: userID,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.db.CreateConversation(conv, "", ids); err != nil {
		return nil, err
	}
	s.bus.Emit("conversation.created", map[string]string{"conversation_id": conv.ID})
	return s.db.GetConversation(conv.ID)
}

// HideConversation hides the conversation from the caller's list.
func (s *Service) HideConversation(conversationID, userID string) error {
	if _, err := s.requireParticipant(conversationID, userID); err != nil {
		return err
	}
	if err := s.ledger.HideConversation(userID, conversationID); err != nil {
		return err
	}
	s.bus.Emit("conversation.hidden", map[string]string{
		"conversation_id": conversationID,
		"user_id":         userID,
	})
	return nil
}

// GetConversation returns the conversation with participants and its most
// recent visible message for the caller.
func (s *Service) GetConversation(conversationID, userID string) (*store.Conversation, *store.Message, error) {
	conv, err := s.requireParticipant(conversationID, userID)
	if err != nil {
		return nil, nil, err
	}
	last, err := s.db.LatestMessage(conversationID)
	if err != nil {
		return nil, nil, err
	}
	cutoff, err := s.ledger.Cutoff(userID, conversationID)
	if err != nil {
		return nil, nil, err
	}
	if last != nil && cutoff != 0 && last.CreatedAt < cutoff {
		last = nil
	}
	return conv, last, nil
}

// Theme returns the conversation theme, or nil when none is set.
func (s *Service) Theme(conversationID, userID string) (*store.Theme, error) {
	if _, err := s.requireParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	return s.db.GetTheme(conversationID)
}

// UpdateTheme partially updates the conversation theme. Empty fields keep
// their stored value.
func (s *Service) UpdateTheme(conversationID, userID, bgColor, textColor string) (*store.Theme, error) {
	if _, err := s.requireParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	if err := s.db.UpsertTheme(conversationID, bgColor, textColor, s.now().UnixMilli()); err != nil {
		return nil, err
	}
	s.bus.Emit("conversation.theme_changed", map[string]string{"conversation_id": conversationID})
	return s.db.GetTheme(conversationID)
}
