// Package visibility implements the per-user conversation and message
// hide ledger. Hiding is a view filter: participant membership and the
// stored messages are never touched.
package visibility

import (
	"time"

	"github.com/pcordeiro/parley/internal/store"
)

// Ledger answers and mutates per-(user, conversation) hide state.
type Ledger struct {
	db *store.DB
}

// NewLedger creates a ledger over the store.
func NewLedger(db *store.DB) *Ledger {
	return &Ledger{db: db}
}

// HideConversation removes the conversation from the user's list. Other
// participants are unaffected. Re-hiding a reopened conversation fully
// hides it again.
func (l *Ledger) HideConversation(userID, conversationID string) error {
	return l.db.UpsertConversationHide(conversationID, userID, time.Now().UnixMilli())
}

// ReopenOnNewActivity re-opens a fully hidden conversation for one user,
// showing only messages created at or after activityTime. No-op if the
// user has no pending hide entry.
func (l *Ledger) ReopenOnNewActivity(userID, conversationID string, activityTime int64) error {
	return l.db.SetVisibleFrom(conversationID, userID, activityTime)
}

// ReopenAllOnNewActivity re-opens the conversation for every participant
// with a pending hide entry. Called whenever a new message lands, which is
// the only way a fully hidden conversation becomes visible again.
func (l *Ledger) ReopenAllOnNewActivity(conversationID string, activityTime int64) error {
	return l.db.ReopenPendingHides(conversationID, activityTime)
}

// IsConversationVisible reports whether the conversation shows up in the
// user's list. True unless a hide entry exists with no visible-from cutoff.
func (l *Ledger) IsConversationVisible(userID, conversationID string) (bool, error) {
	h, err := l.db.GetConversationHide(conversationID, userID)
	if err != nil {
		return false, err
	}
	return h == nil || h.VisibleFrom != 0, nil
}

// Cutoff returns the visible-from timestamp for (user, conversation), or 0
// when no cutoff applies. A fully hidden conversation reports its state via
// IsConversationVisible, not here.
func (l *Ledger) Cutoff(userID, conversationID string) (int64, error) {
	h, err := l.db.GetConversationHide(conversationID, userID)
	if err != nil {
		return 0, err
	}
	if h == nil {
		return 0, nil
	}
	return h.VisibleFrom, nil
}

// FilterMessagesForUser applies the user's message-level hides and the
// conversation visible-from cutoff to a message list.
func (l *Ledger) FilterMessagesForUser(userID, conversationID string, msgs []store.Message) ([]store.Message, error) {
	hidden, err := l.db.HiddenMessageIDs(conversationID, userID)
	if err != nil {
		return nil, err
	}
	cutoff, err := l.Cutoff(userID, conversationID)
	if err != nil {
		return nil, err
	}
	return FilterMessages(msgs, hidden, cutoff), nil
}

// FilterMessages is the pure filter pipeline: sender soft-deletes pass
// through (they render as placeholders), per-user hides drop the message,
// and a non-zero cutoff drops everything created before it.
func FilterMessages(msgs []store.Message, hidden map[string]bool, cutoff int64) []store.Message {
	out := make([]store.Message, 0, len(msgs))
	for _, m := range msgs {
		if hidden[m.ID] {
			continue
		}
		if cutoff != 0 && m.CreatedAt < cutoff {
			continue
		}
		out = append(out, m)
	}
	return out
}
