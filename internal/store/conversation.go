package store

import "database/sql"

// DMKey builds the unordered-pair key for a direct conversation.
func DMKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// CreateConversation inserts a conversation and its participant rows in one
// transaction. For direct conversations dmKey must be set so the unique
// index rejects a duplicate pair.
func (db *DB) CreateConversation(c *Conversation, dmKey string, participantIDs []string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var key any
	if dmKey != "" {
		key = dmKey
	}
	if _, err := tx.Exec(`
		INSERT INTO conversations (id, name, is_group, dm_key, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.IsGroup, key, c.CreatedBy, c.CreatedAt); err != nil {
		return err
	}
	for _, uid := range participantIDs {
		if _, err := tx.Exec(`
			INSERT INTO participants (conversation_id, user_id, created_at)
			VALUES (?, ?, ?)`, c.ID, uid, c.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetConversation returns a conversation with its participants (profiles
// included), or nil if absent.
func (db *DB) GetConversation(id string) (*Conversation, error) {
	var c Conversation
	err := db.QueryRow(`
		SELECT id, name, is_group, created_by, created_at
		FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.IsGroup, &c.CreatedBy, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(userSelect+`
		JOIN participants pt ON pt.user_id = u.id
		WHERE pt.conversation_id = ?
		ORDER BY pt.created_at, u.id`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		c.Participants = append(c.Participants, *u)
	}
	return &c, rows.Err()
}

// FindDirectConversation returns the direct conversation for an unordered
// user pair, or nil if none exists.
func (db *DB) FindDirectConversation(userA, userB string) (*Conversation, error) {
	var id string
	err := db.QueryRow(`SELECT id FROM conversations WHERE dm_key = ?`, DMKey(userA, userB)).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return db.GetConversation(id)
}

// ParticipantConversationIDs returns ids of all conversations the user
// belongs to.
func (db *DB) ParticipantConversationIDs(userID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT conversation_id FROM participants WHERE user_id = ?`, userID)
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

// IsParticipant reports whether the user belongs to the conversation.
func (db *DB) IsParticipant(conversationID, userID string) (bool, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM participants
		WHERE conversation_id = ? AND user_id = ?`, conversationID, userID).Scan(&n)
	return n > 0, err
}

// ParticipantIDs returns the user ids of all participants.
func (db *DB) ParticipantIDs(conversationID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT user_id FROM participants WHERE conversation_id = ?`, conversationID)
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

// LatestMessage returns the newest non-deleted message of a conversation,
// or nil if there is none.
func (db *DB) LatestMessage(conversationID string) (*Message, error) {
	msgs, err := db.queryMessages(`
		WHERE m.conversation_id = ? AND m.deleted_at = 0
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1`, conversationID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

// CountUnread counts alive messages in the conversation that were not sent
// by the user, were created at or after the cutoff (0 = no cutoff), and
// have no read receipt from the user.
func (db *DB) CountUnread(conversationID, userID string, cutoff int64) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM messages m
		WHERE m.conversation_id = ? AND m.deleted_at = 0
			AND m.sender_id != ? AND m.created_at >= ?
			AND NOT EXISTS (
				SELECT 1 FROM message_reads r
				WHERE r.message_id = m.id AND r.user_id = ?
			)
			AND NOT EXISTS (
				SELECT 1 FROM message_hides h
				WHERE h.message_id = m.id AND h.user_id = ?
			)`,
		conversationID, userID, cutoff, userID, userID).Scan(&n)
	return n, err
}
