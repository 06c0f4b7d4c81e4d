package store

// Message kinds.
const (
	KindText  = "text"
	KindImage = "image"
	KindFile  = "file"
)

// User is a registered account. LastSeenAt is 0 until the first heartbeat.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	LastSeenAt   int64
	CreatedAt    int64
	Profile      *Profile
}

// Profile is the optional post-onboarding profile attached to a user.
type Profile struct {
	UserID      string
	Username    string
	Bio         string
	AvatarURL   string
	DateOfBirth string
	CreatedAt   int64
}

// Conversation is a direct or group conversation.
type Conversation struct {
	ID           string
	Name         string
	IsGroup      bool
	CreatedBy    string
	CreatedAt    int64
	Participants []User
}

// Message is a single chat message. DeletedAt is 0 while the message is
// alive; a non-zero value means the sender removed it for everyone and it
// renders as a placeholder.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	SenderUsername string
	SenderAvatar   string
	Kind           string
	Content        string
	FileURL        string
	FileName       string
	FileSize       int64
	GroupID        string
	DeletedAt      int64
	CreatedAt      int64
	Reads          []Read
	Reactions      []Reaction
}

// Read records that a user saw a message. At most one row per (message, user).
type Read struct {
	MessageID string
	UserID    string
	ReadAt    int64
}

// Reaction is an emoji reaction. At most one row per (message, user, emoji).
type Reaction struct {
	MessageID string
	UserID    string
	Emoji     string
	CreatedAt int64
}

// HideState is a per-user conversation visibility ledger entry.
// VisibleFrom of 0 means the conversation is fully hidden for the user;
// otherwise only messages created at or after VisibleFrom are shown.
type HideState struct {
	ConversationID string
	UserID         string
	HiddenAt       int64
	VisibleFrom    int64
}

// Typist is an active typing signal for a conversation.
type Typist struct {
	UserID    string
	ExpiresAt int64
}

// Theme is a cosmetic per-conversation color override. Empty fields mean
// the client default applies.
type Theme struct {
	ConversationID string
	BgColor        string
	TextColor      string
	UpdatedAt      int64
}
