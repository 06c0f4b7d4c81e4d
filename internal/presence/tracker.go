// Package presence tracks short-TTL liveness signals: last-seen heartbeats
// and typing indicators. Absence of a signal is the only "stopped" state;
// nothing is ever explicitly cleared by clients.
package presence

import (
	"time"

	"github.com/pcordeiro/parley/internal/store"
)

const (
	// HeartbeatInterval is how often clients are expected to call
	// Heartbeat while any authenticated view is open.
	HeartbeatInterval = 30 * time.Second
	// OnlineWindow is HeartbeatInterval plus a grace margin for
	// scheduling jitter.
	OnlineWindow = 35 * time.Second
	// TypingTTL is how long one typing signal stays valid after the last
	// keystroke.
	TypingTTL = 4 * time.Second
)

// Tracker persists presence signals in the store.
type Tracker struct {
	db  *store.DB
	now func() time.Time
}

// NewTracker creates a presence tracker.
func NewTracker(db *store.DB) *Tracker {
	return &Tracker{db: db, now: time.Now}
}

// Heartbeat updates the user's last-seen timestamp.
func (t *Tracker) Heartbeat(userID string) error {
	return t.db.TouchLastSeen(userID, t.now().UnixMilli())
}

// IsOnline reports whether a last-seen timestamp (unix ms, 0 = never) is
// within the online window.
func IsOnline(lastSeenAt int64, now time.Time) bool {
	if lastSeenAt == 0 {
		return false
	}
	return now.UnixMilli()-lastSeenAt < OnlineWindow.Milliseconds()
}

// SetTyping refreshes the user's typing signal for a conversation.
func (t *Tracker) SetTyping(conversationID, userID string) error {
	expires := t.now().Add(TypingTTL).UnixMilli()
	return t.db.UpsertTyping(conversationID, userID, expires)
}

// TypingUsers returns ids of users currently typing in the conversation,
// excluding the caller.
func (t *Tracker) TypingUsers(conversationID, excludeUserID string) ([]string, error) {
	ids, err := t.db.ActiveTypists(conversationID, t.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if id != excludeUserID {
			out = append(out, id)
		}
	}
	return out, nil
}
