package store

import "database/sql"

// CreateUser inserts a new user row.
func (db *DB) CreateUser(u *User) error {
	_, err := db.Exec(`
		INSERT INTO users (id, email, full_name, password_hash, last_seen_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FullName, u.PasswordHash, u.LastSeenAt, u.CreatedAt)
	return err
}

const userSelect = `
	SELECT u.id, u.email, u.full_name, u.password_hash, u.last_seen_at, u.created_at,
		COALESCE(p.username, ''), COALESCE(p.bio, ''), COALESCE(p.avatar_url, ''),
		COALESCE(p.date_of_birth, ''), COALESCE(p.created_at, 0),
		p.user_id IS NOT NULL
	FROM users u
	LEFT JOIN user_profiles p ON p.user_id = u.id`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var p Profile
	var hasProfile bool
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.LastSeenAt, &u.CreatedAt,
		&p.Username, &p.Bio, &p.AvatarURL, &p.DateOfBirth, &p.CreatedAt, &hasProfile)
	if err != nil {
		return nil, err
	}
	if hasProfile {
		p.UserID = u.ID
		u.Profile = &p
	}
	return &u, nil
}

// GetUser returns a user with their profile, or nil if absent.
func (db *DB) GetUser(id string) (*User, error) {
	u, err := scanUser(db.QueryRow(userSelect+` WHERE u.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUserByEmail returns a user by email, or nil if absent.
func (db *DB) GetUserByEmail(email string) (*User, error) {
	u, err := scanUser(db.QueryRow(userSelect+` WHERE u.email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// SearchUsers returns users whose full name contains the query,
// case-insensitively, excluding the given user.
func (db *DB) SearchUsers(query, excludeUserID string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(userSelect+`
		WHERE u.full_name LIKE '%' || ? || '%' COLLATE NOCASE AND u.id != ?
		ORDER BY u.full_name
		LIMIT ?`, query, excludeUserID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// TouchLastSeen updates the user's presence heartbeat timestamp.
func (db *DB) TouchLastSeen(userID string, ts int64) error {
	_, err := db.Exec(`UPDATE users SET last_seen_at = ? WHERE id = ?`, ts, userID)
	return err
}

// UpdateFullName changes the user's display name.
func (db *DB) UpdateFullName(userID, fullName string) error {
	_, err := db.Exec(`UPDATE users SET full_name = ? WHERE id = ?`, fullName, userID)
	return err
}

// CreateProfile attaches a profile to a user. Fails if one already exists
// or the username is taken (unique constraints).
func (db *DB) CreateProfile(p *Profile) error {
	_, err := db.Exec(`
		INSERT INTO user_profiles (user_id, username, bio, avatar_url, date_of_birth, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Username, p.Bio, p.AvatarURL, p.DateOfBirth, p.CreatedAt)
	return err
}

// UpdateProfile rewrites bio and date of birth; the avatar URL is kept
// unless a new one is supplied.
func (db *DB) UpdateProfile(userID, bio, dateOfBirth, avatarURL string) error {
	_, err := db.Exec(`
		UPDATE user_profiles
		SET bio = ?, date_of_birth = ?,
			avatar_url = CASE WHEN ? = '' THEN avatar_url ELSE ? END
		WHERE user_id = ?`,
		bio, dateOfBirth, avatarURL, avatarURL, userID)
	return err
}
