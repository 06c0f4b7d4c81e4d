package store

import "database/sql"

// UpsertTheme creates or partially updates a conversation theme. Empty
// fields leave the stored value untouched.
func (db *DB) UpsertTheme(conversationID, bgColor, textColor string, ts int64) error {
	_, err := db.Exec(`
		INSERT INTO conversation_themes (conversation_id, bg_color, text_color, updated_at)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			bg_color = COALESCE(excluded.bg_color, conversation_themes.bg_color),
			text_color = COALESCE(excluded.text_color, conversation_themes.text_color),
			updated_at = excluded.updated_at`,
		conversationID, bgColor, textColor, ts)
	return err
}

// GetTheme returns the theme for a conversation, or nil if none was set.
func (db *DB) GetTheme(conversationID string) (*Theme, error) {
	var t Theme
	var bg, text sql.NullString
	err := db.QueryRow(`
		SELECT conversation_id, bg_color, text_color, updated_at
		FROM conversation_themes WHERE conversation_id = ?`, conversationID).
		Scan(&t.ConversationID, &bg, &text, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.BgColor = bg.String
	t.TextColor = text.String
	return &t, nil
}
