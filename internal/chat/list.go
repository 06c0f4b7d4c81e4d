package chat

import (
	"sort"

	"github.com/pcordeiro/parley/internal/store"
)

// Summary is one display-ready conversation list entry.
type Summary struct {
	Conversation store.Conversation
	LastMessage  *store.Message
	UnreadCount  int
}

// sortKey orders by most recent visible message, falling back to the
// conversation's creation time.
func (s Summary) sortKey() int64 {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.Conversation.CreatedAt
}

// ListConversations assembles the user's conversation list: membership
// minus fully hidden entries, each joined with participants, the latest
// visible message, and an unread count, sorted by recency.
func (s *Service) ListConversations(userID string) ([]Summary, error) {
	ids, err := s.db.ParticipantConversationIDs(userID)
	if err != nil {
		return nil, err
	}
	hides, err := s.db.ListUserHides(userID)
	if err != nil {
		return nil, err
	}

	var out []Summary
	for _, id := range ids {
		cutoff := int64(0)
		if h, ok := hides[id]; ok {
			if h.VisibleFrom == 0 {
				continue // fully hidden
			}
			cutoff = h.VisibleFrom
		}

		conv, err := s.db.GetConversation(id)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			continue
		}

		last, err := s.db.LatestMessage(id)
		if err != nil {
			return nil, err
		}
		// With a cutoff, an older last message means the conversation
		// shows as empty rather than disappearing.
		if last != nil && cutoff != 0 && last.CreatedAt < cutoff {
			last = nil
		}

		unread, err := s.db.CountUnread(id, userID, cutoff)
		if err != nil {
			return nil, err
		}

		out = append(out, Summary{
			Conversation: *conv,
			LastMessage:  last,
			UnreadCount:  unread,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].sortKey() > out[j].sortKey()
	})
	return out, nil
}
