package store

const messageSelect = `
	SELECT m.id, m.conversation_id, m.sender_id, u.full_name,
		COALESCE(p.username, ''), COALESCE(p.avatar_url, ''),
		m.kind, m.content, m.file_url, m.file_name, m.file_size,
		m.group_id, m.deleted_at, m.created_at
	FROM messages m
	JOIN users u ON u.id = m.sender_id
	LEFT JOIN user_profiles p ON p.user_id = u.id`

func (db *DB) queryMessages(clause string, args ...any) ([]Message, error) {
	rows, err := db.Query(messageSelect+" "+clause, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName,
			&m.SenderUsername, &m.SenderAvatar,
			&m.Kind, &m.Content, &m.FileURL, &m.FileName, &m.FileSize,
			&m.GroupID, &m.DeletedAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// InsertMessage stores a new message.
func (db *DB) InsertMessage(m *Message) error {
	_, err := db.Exec(`
		INSERT INTO messages (id, conversation_id, sender_id, kind, content,
			file_url, file_name, file_size, group_id, deleted_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.Kind, m.Content,
		m.FileURL, m.FileName, m.FileSize, m.GroupID, m.CreatedAt)
	return err
}

// GetMessage returns a message by id, or nil if absent.
func (db *DB) GetMessage(id string) (*Message, error) {
	msgs, err := db.queryMessages(`WHERE m.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

// ListConversationMessages returns all messages of a conversation, oldest
// first, soft-deleted ones included (they render as placeholders). Read
// receipts and reactions are attached.
func (db *DB) ListConversationMessages(conversationID string) ([]Message, error) {
	msgs, err := db.queryMessages(`
		WHERE m.conversation_id = ?
		ORDER BY m.created_at, m.id`, conversationID)
	if err != nil {
		return nil, err
	}
	if err := db.attachReads(conversationID, msgs); err != nil {
		return nil, err
	}
	if err := db.attachReactions(conversationID, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SoftDeleteMessage marks a message as removed for everyone. The row stays
// in storage.
func (db *DB) SoftDeleteMessage(id string, ts int64) error {
	_, err := db.Exec(`UPDATE messages SET deleted_at = ? WHERE id = ? AND deleted_at = 0`, ts, id)
	return err
}

// ListAttachments returns image and file messages of a conversation,
// excluding soft-deleted ones, newest first.
func (db *DB) ListAttachments(conversationID string) ([]Message, error) {
	return db.queryMessages(`
		WHERE m.conversation_id = ? AND m.kind IN (?, ?) AND m.deleted_at = 0
		ORDER BY m.created_at DESC, m.id DESC`,
		conversationID, KindImage, KindFile)
}

// MarkMessagesRead inserts read receipts for the given messages. Already
// existing receipts are ignored, so re-marking is a no-op.
func (db *DB) MarkMessagesRead(userID string, messageIDs []string, ts int64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range messageIDs {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO message_reads (message_id, user_id, read_at)
			VALUES (?, ?, ?)`, id, userID, ts); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (db *DB) attachReads(conversationID string, msgs []Message) error {
	rows, err := db.Query(`
		SELECT r.message_id, r.user_id, r.read_at
		FROM message_reads r
		JOIN messages m ON m.id = r.message_id
		WHERE m.conversation_id = ?`, conversationID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	byMsg := make(map[string][]Read)
	for rows.Next() {
		var r Read
		if err := rows.Scan(&r.MessageID, &r.UserID, &r.ReadAt); err != nil {
			return err
		}
		byMsg[r.MessageID] = append(byMsg[r.MessageID], r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range msgs {
		msgs[i].Reads = byMsg[msgs[i].ID]
	}
	return nil
}

func (db *DB) attachReactions(conversationID string, msgs []Message) error {
	rows, err := db.Query(`
		SELECT r.message_id, r.user_id, r.emoji, r.created_at
		FROM message_reactions r
		JOIN messages m ON m.id = r.message_id
		WHERE m.conversation_id = ?
		ORDER BY r.created_at`, conversationID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	byMsg := make(map[string][]Reaction)
	for rows.Next() {
		var r Reaction
		if err := rows.Scan(&r.MessageID, &r.UserID, &r.Emoji, &r.CreatedAt); err != nil {
			return err
		}
		byMsg[r.MessageID] = append(byMsg[r.MessageID], r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range msgs {
		msgs[i].Reactions = byMsg[msgs[i].ID]
	}
	return nil
}
