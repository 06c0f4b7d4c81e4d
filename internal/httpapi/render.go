package httpapi

import (
	"strings"
	"time"

	"github.com/pcordeiro/parley/internal/chat"
	"github.com/pcordeiro/parley/internal/store"
)

// Wire representations mirror what the web client consumes. Kinds are
// uppercased on the wire (TEXT, IMAGE, FILE), timestamps are RFC3339, and
// absent values are JSON null.

type profileJSON struct {
	Username    string  `json:"username"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatarUrl"`
	DateOfBirth *string `json:"dateOfBirth"`
}

type userJSON struct {
	ID         string       `json:"id"`
	FullName   string       `json:"fullName"`
	Email      string       `json:"email,omitempty"`
	LastSeenAt *string      `json:"lastSeenAt"`
	Profile    *profileJSON `json:"profile"`
}

type participantJSON struct {
	User userJSON `json:"user"`
}

type senderJSON struct {
	ID       string       `json:"id"`
	FullName string       `json:"fullName"`
	Profile  *profileJSON `json:"profile"`
}

type readJSON struct {
	UserID string `json:"userId"`
	ReadAt string `json:"readAt"`
}

type reactionJSON struct {
	UserID string `json:"userId"`
	Emoji  string `json:"emoji"`
}

type messageJSON struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversationId"`
	SenderID       string         `json:"senderId"`
	Content        *string        `json:"content"`
	Type           string         `json:"type"`
	GroupID        *string        `json:"groupId"`
	FileURL        *string        `json:"fileUrl"`
	FileName       *string        `json:"fileName"`
	FileSize       *int64         `json:"fileSize"`
	DeletedAt      *string        `json:"deletedAt"`
	CreatedAt      string         `json:"createdAt"`
	Sender         senderJSON     `json:"sender"`
	Reads          []readJSON     `json:"reads"`
	Reactions      []reactionJSON `json:"reactions"`
}

type conversationJSON struct {
	ID           string            `json:"id"`
	Name         *string           `json:"name"`
	IsGroup      bool              `json:"isGroup"`
	CreatedAt    string            `json:"createdAt"`
	CreatedByID  string            `json:"createdById"`
	Participants []participantJSON `json:"participants"`
	Messages     []messageJSON     `json:"messages"`
	UnreadCount  int               `json:"unreadCount"`
	Display      *displayJSON      `json:"display,omitempty"`
	Preview      *previewJSON      `json:"preview,omitempty"`
}

// displayJSON and previewJSON carry the server-derived list presentation
// (name resolution, presence, last-message line) so clients don't have to
// re-derive them.
type displayJSON struct {
	Name         string   `json:"name"`
	AvatarURL    *string  `json:"avatarUrl"`
	Initials     string   `json:"initials"`
	Online       bool     `json:"online"`
	GroupAvatars []avatar `json:"groupAvatars,omitempty"`
}

type avatar struct {
	URL      *string `json:"url"`
	Initials string  `json:"initials"`
}

type previewJSON struct {
	Prefix *string `json:"prefix"`
	Text   string  `json:"text"`
	Icon   *string `json:"icon"`
}

type themeJSON struct {
	BgColor   *string `json:"bgColor"`
	TextColor *string `json:"textColor"`
}

func msToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func msToISOPtr(ms int64) *string {
	if ms == 0 {
		return nil
	}
	s := msToISO(ms)
	return &s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func renderProfile(p *store.Profile) *profileJSON {
	if p == nil {
		return nil
	}
	return &profileJSON{
		Username:    p.Username,
		Bio:         strPtr(p.Bio),
		AvatarURL:   strPtr(p.AvatarURL),
		DateOfBirth: strPtr(p.DateOfBirth),
	}
}

func renderUser(u *store.User, includeEmail bool) userJSON {
	out := userJSON{
		ID:         u.ID,
		FullName:   u.FullName,
		LastSeenAt: msToISOPtr(u.LastSeenAt),
		Profile:    renderProfile(u.Profile),
	}
	if includeEmail {
		out.Email = u.Email
	}
	return out
}

func renderMessage(m *store.Message) messageJSON {
	out := messageJSON{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Type:           strings.ToUpper(m.Kind),
		GroupID:        strPtr(m.GroupID),
		DeletedAt:      msToISOPtr(m.DeletedAt),
		CreatedAt:      msToISO(m.CreatedAt),
		Sender: senderJSON{
			ID:       m.SenderID,
			FullName: m.SenderName,
		},
		Reads:     []readJSON{},
		Reactions: []reactionJSON{},
	}
	if m.SenderUsername != "" {
		out.Sender.Profile = &profileJSON{
			Username:  m.SenderUsername,
			AvatarURL: strPtr(m.SenderAvatar),
		}
	}
	// Soft-deleted messages keep only their envelope; clients render the
	// placeholder off deletedAt.
	if m.DeletedAt == 0 {
		out.Content = strPtr(m.Content)
		out.FileURL = strPtr(m.FileURL)
		out.FileName = strPtr(m.FileName)
		if m.FileSize > 0 {
			size := m.FileSize
			out.FileSize = &size
		}
	}
	for _, r := range m.Reads {
		out.Reads = append(out.Reads, readJSON{UserID: r.UserID, ReadAt: msToISO(r.ReadAt)})
	}
	for _, r := range m.Reactions {
		out.Reactions = append(out.Reactions, reactionJSON{UserID: r.UserID, Emoji: r.Emoji})
	}
	return out
}

func renderMessages(msgs []store.Message) []messageJSON {
	out := make([]messageJSON, 0, len(msgs))
	for i := range msgs {
		out = append(out, renderMessage(&msgs[i]))
	}
	return out
}

func renderConversation(conv *store.Conversation, last *store.Message, unread int) conversationJSON {
	out := conversationJSON{
		ID:           conv.ID,
		Name:         strPtr(conv.Name),
		IsGroup:      conv.IsGroup,
		CreatedAt:    msToISO(conv.CreatedAt),
		CreatedByID:  conv.CreatedBy,
		Participants: []participantJSON{},
		Messages:     []messageJSON{},
		UnreadCount:  unread,
	}
	for i := range conv.Participants {
		out.Participants = append(out.Participants, participantJSON{
			User: renderUser(&conv.Participants[i], false),
		})
	}
	if last != nil {
		out.Messages = append(out.Messages, renderMessage(last))
	}
	return out
}

func renderSummaries(sums []chat.Summary, viewerID string, now time.Time) []conversationJSON {
	out := make([]conversationJSON, 0, len(sums))
	for i := range sums {
		c := renderConversation(&sums[i].Conversation, sums[i].LastMessage, sums[i].UnreadCount)

		d := chat.ConversationDisplay(sums[i].Conversation, viewerID, now)
		dj := displayJSON{
			Name:      d.Name,
			AvatarURL: strPtr(d.AvatarURL),
			Initials:  d.Initials,
			Online:    d.Online,
		}
		for _, a := range d.GroupAvatars {
			dj.GroupAvatars = append(dj.GroupAvatars, avatar{URL: strPtr(a.URL), Initials: a.Initials})
		}
		c.Display = &dj

		p := chat.LastMessagePreview(sums[i].LastMessage, viewerID)
		c.Preview = &previewJSON{
			Prefix: strPtr(p.Prefix),
			Text:   p.Text,
			Icon:   strPtr(p.Icon),
		}
		out = append(out, c)
	}
	return out
}

func renderTheme(t *store.Theme) *themeJSON {
	if t == nil {
		return nil
	}
	return &themeJSON{
		BgColor:   strPtr(t.BgColor),
		TextColor: strPtr(t.TextColor),
	}
}
