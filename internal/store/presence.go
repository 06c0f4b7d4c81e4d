package store

// UpsertTyping refreshes a user's typing signal for a conversation.
func (db *DB) UpsertTyping(conversationID, userID string, expiresAt int64) error {
	_, err := db.Exec(`
		INSERT INTO typing_status (conversation_id, user_id, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id, user_id) DO UPDATE SET
			expires_at = excluded.expires_at`,
		conversationID, userID, expiresAt)
	return err
}

// ActiveTypists returns user ids with a non-expired typing signal for the
// conversation. Expiry is purely time-based; there is no stop signal.
func (db *DB) ActiveTypists(conversationID string, now int64) ([]string, error) {
	rows, err := db.Query(`
		SELECT user_id FROM typing_status
		WHERE conversation_id = ? AND expires_at > ?
		ORDER BY user_id`, conversationID, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PruneTyping deletes expired typing rows and returns how many were removed.
func (db *DB) PruneTyping(now int64) (int64, error) {
	res, err := db.Exec(`DELETE FROM typing_status WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
