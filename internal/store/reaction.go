package store

// ToggleReaction flips a (message, user, emoji) reaction: deletes the row
// if it exists, inserts it otherwise. Returns whether the reaction is
// present after the call.
func (db *DB) ToggleReaction(messageID, userID, emoji string, ts int64) (bool, error) {
	res, err := db.Exec(`
		DELETE FROM message_reactions
		WHERE message_id = ? AND user_id = ? AND emoji = ?`,
		messageID, userID, emoji)
	if err != nil {
		return false, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if deleted > 0 {
		return false, nil
	}
	_, err = db.Exec(`
		INSERT INTO message_reactions (message_id, user_id, emoji, created_at)
		VALUES (?, ?, ?, ?)`, messageID, userID, emoji, ts)
	if err != nil {
		return false, err
	}
	return true, nil
}
