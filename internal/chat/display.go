package chat

import (
	"strings"
	"time"

	"github.com/pcordeiro/parley/internal/presence"
	"github.com/pcordeiro/parley/internal/store"
)

const previewMaxLen = 28

// Avatar is one stacked avatar for group list entries.
type Avatar struct {
	URL      string
	Initials string
}

// Display is the derived presentation of a conversation for one viewer.
type Display struct {
	Name         string
	AvatarURL    string
	Initials     string
	Online       bool
	GroupAvatars []Avatar
}

// Preview is the derived last-message line of a list entry.
type Preview struct {
	Prefix string
	Text   string
	Icon   string
}

func initials(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// ConversationDisplay derives name, avatar, and online state for a
// conversation as seen by currentUserID. Pure function, no I/O.
func ConversationDisplay(conv store.Conversation, currentUserID string, now time.Time) Display {
	if conv.IsGroup {
		name := conv.Name
		if name == "" {
			name = "Group Chat"
		}
		var stacked []Avatar
		for _, p := range conv.Participants {
			if len(stacked) == 2 {
				break
			}
			url := ""
			if p.Profile != nil {
				url = p.Profile.AvatarURL
			}
			stacked = append(stacked, Avatar{URL: url, Initials: initials(p.FullName, "U")})
		}
		return Display{
			Name:         name,
			Initials:     initials(conv.Name, "G"),
			Online:       false,
			GroupAvatars: stacked,
		}
	}

	var other *store.User
	for i := range conv.Participants {
		if conv.Participants[i].ID != currentUserID {
			other = &conv.Participants[i]
			break
		}
	}
	if other == nil {
		return Display{Name: "Unknown", Initials: "U"}
	}
	url := ""
	if other.Profile != nil {
		url = other.Profile.AvatarURL
	}
	return Display{
		Name:      other.FullName,
		AvatarURL: url,
		Initials:  initials(other.FullName, "U"),
		Online:    presence.IsOnline(other.LastSeenAt, now),
	}
}

// isVoiceNote matches the recorder's output: a .webm file attachment.
func isVoiceNote(fileName string) bool {
	return strings.HasSuffix(strings.ToLower(fileName), ".webm")
}

func isGIFLink(s string) bool {
	return strings.Contains(s, "giphy.com")
}

// LastMessagePreview derives the preview line for a conversation's most
// recent message. A nil message means the conversation has nothing to show
// (either empty or everything predates the viewer's cutoff).
func LastMessagePreview(last *store.Message, currentUserID string) Preview {
	if last == nil {
		return Preview{Text: "No messages yet"}
	}

	prefix := strings.SplitN(last.SenderName, " ", 2)[0]
	if last.SenderID == currentUserID {
		prefix = "You"
	}

	if last.DeletedAt != 0 {
		return Preview{Prefix: prefix, Text: "Message removed"}
	}

	switch {
	case last.Kind == store.KindImage:
		return Preview{Prefix: prefix, Text: "Photo", Icon: "image"}
	case last.Kind == store.KindFile && isGIFLink(last.Content):
		return Preview{Prefix: prefix, Text: "GIF", Icon: "gif"}
	case last.Kind == store.KindFile && isVoiceNote(last.FileName):
		return Preview{Prefix: prefix, Text: "Voice message", Icon: "mic"}
	case last.Kind == store.KindFile:
		text := last.FileName
		if text == "" {
			text = "File"
		}
		return Preview{Prefix: prefix, Text: text, Icon: "file"}
	case isGIFLink(last.Content):
		return Preview{Prefix: prefix, Text: "GIF", Icon: "gif"}
	}

	return Preview{Prefix: prefix, Text: truncate(last.Content, previewMaxLen)}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
