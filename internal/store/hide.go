package store

import "database/sql"

// UpsertConversationHide records that a user hid a conversation. Re-hiding
// resets any visible-from cutoff, so the conversation is fully hidden
// again.
func (db *DB) UpsertConversationHide(conversationID, userID string, hiddenAt int64) error {
	_, err := db.Exec(`
		INSERT INTO conversation_hides (conversation_id, user_id, hidden_at, visible_from)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(conversation_id, user_id) DO UPDATE SET
			hidden_at = excluded.hidden_at,
			visible_from = 0`,
		conversationID, userID, hiddenAt)
	return err
}

// GetConversationHide returns the hide ledger entry for (conversation,
// user), or nil if none exists.
func (db *DB) GetConversationHide(conversationID, userID string) (*HideState, error) {
	var h HideState
	err := db.QueryRow(`
		SELECT conversation_id, user_id, hidden_at, visible_from
		FROM conversation_hides
		WHERE conversation_id = ? AND user_id = ?`, conversationID, userID).
		Scan(&h.ConversationID, &h.UserID, &h.HiddenAt, &h.VisibleFrom)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListUserHides returns all hide entries of a user keyed by conversation.
func (db *DB) ListUserHides(userID string) (map[string]HideState, error) {
	rows, err := db.Query(`
		SELECT conversation_id, user_id, hidden_at, visible_from
		FROM conversation_hides WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	hides := make(map[string]HideState)
	for rows.Next() {
		var h HideState
		if err := rows.Scan(&h.ConversationID, &h.UserID, &h.HiddenAt, &h.VisibleFrom); err != nil {
			return nil, err
		}
		hides[h.ConversationID] = h
	}
	return hides, rows.Err()
}

// SetVisibleFrom re-opens a fully hidden conversation for one user. Only
// pending entries (visible_from = 0) are touched.
func (db *DB) SetVisibleFrom(conversationID, userID string, ts int64) error {
	_, err := db.Exec(`
		UPDATE conversation_hides SET visible_from = ?
		WHERE conversation_id = ? AND user_id = ? AND visible_from = 0`,
		ts, conversationID, userID)
	return err
}

// ReopenPendingHides re-opens the conversation for every participant whose
// hide entry is still fully hidden. Called on new message activity.
func (db *DB) ReopenPendingHides(conversationID string, ts int64) error {
	_, err := db.Exec(`
		UPDATE conversation_hides SET visible_from = ?
		WHERE conversation_id = ? AND visible_from = 0`,
		ts, conversationID)
	return err
}

// UpsertMessageHide records a per-user "delete for me" on one message.
// Idempotent.
func (db *DB) UpsertMessageHide(messageID, userID string, ts int64) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO message_hides (message_id, user_id, created_at)
		VALUES (?, ?, ?)`, messageID, userID, ts)
	return err
}

// CountMessageHides returns the number of hide rows for (message, user).
// Used by tests to assert idempotence.
func (db *DB) CountMessageHides(messageID, userID string) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM message_hides
		WHERE message_id = ? AND user_id = ?`, messageID, userID).Scan(&n)
	return n, err
}

// HiddenMessageIDs returns the set of message ids in a conversation the
// user has hidden for themselves.
func (db *DB) HiddenMessageIDs(conversationID, userID string) (map[string]bool, error) {
	rows, err := db.Query(`
		SELECT h.message_id
		FROM message_hides h
		JOIN messages m ON m.id = h.message_id
		WHERE m.conversation_id = ? AND h.user_id = ?`, conversationID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	hidden := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		hidden[id] = true
	}
	return hidden, rows.Err()
}
