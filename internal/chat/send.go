package chat

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pcordeiro/parley/internal/store"
	"go.uber.org/zap"
)

// FileUpload is an incoming attachment to send.
type FileUpload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

func kindForFile(name string) string {
	if imageExts[strings.ToLower(filepath.Ext(name))] {
		return store.KindImage
	}
	return store.KindFile
}

// SendMessage creates the messages for one send operation: files first, in
// the order supplied, then the text message. When the send produces more
// than one message they share a freshly generated group id so clients can
// render them as one unit. A send into a conversation any participant had
// fully hidden re-opens it from the first new message's timestamp.
func (s *Service) SendMessage(conversationID, userID, text string, files []FileUpload) ([]store.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(files) == 0 {
		return nil, ErrEmptyMessage
	}
	if _, err := s.requireParticipant(conversationID, userID); err != nil {
		return nil, err
	}

	total := len(files)
	if text != "" {
		total++
	}
	groupID := ""
	if total > 1 {
		groupID = uuid.NewString()
	}

	// Millisecond offsets keep creation order deterministic even within
	// one tick: files in supplied order, text last.
	base := s.now().UnixMilli()
	var created []store.Message

	for i, f := range files {
		url, err := s.uploads.Upload(f.Name, f.Reader)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		m := store.Message{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			SenderID:       userID,
			Kind:           kindForFile(f.Name),
			FileURL:        url,
			FileName:       f.Name,
			FileSize:       f.Size,
			GroupID:        groupID,
			CreatedAt:      base + int64(i),
		}
		if err := s.db.InsertMessage(&m); err != nil {
			return nil, fmt.Errorf("insert message: %w", err)
		}
		created = append(created, m)
	}

	if text != "" {
		m := store.Message{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			SenderID:       userID,
			Kind:           store.KindText,
			Content:        text,
			GroupID:        groupID,
			CreatedAt:      base + int64(len(files)),
		}
		if err := s.db.InsertMessage(&m); err != nil {
			return nil, fmt.Errorf("insert message: %w", err)
		}
		created = append(created, m)
	}

	if err := s.ledger.ReopenAllOnNewActivity(conversationID, base); err != nil {
		return nil, err
	}

	s.logger.Info("messages sent",
		zap.String("conversation_id", conversationID),
		zap.Int("count", len(created)))
	s.bus.Emit("message.created", map[string]string{
		"conversation_id": conversationID,
		"group_id":        groupID,
	})
	return created, nil
}
