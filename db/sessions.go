package db

import (
	"database/sql"
	"time"
)

const (
	// SessionDuration is the default session lifetime (30 days)
	SessionDuration = 30 * 24 * time.Hour
)

// CreateSession creates a new session for a user
func CreateSession(id, userID string) (*Session, error) {
	now := NowMs()
	expiresAt := time.Now().Add(SessionDuration).UnixMilli()

	_, err := GetDB().Exec(`
		INSERT INTO sessions (id, user_id, created_at, expires_at, last_used_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, now, expiresAt, now)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:         id,
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
		LastUsedAt: now,
	}, nil
}

// GetSession retrieves a session by ID, returns nil if not found or expired
func GetSession(id string) (*Session, error) {
	var s Session
	err := GetDB().QueryRow(`
		SELECT id, user_id, created_at, expires_at, last_used_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`, id, NowMs()).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.LastUsedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// TouchSession updates the last_used_at timestamp for a session
func TouchSession(id string) error {
	_, err := GetDB().Exec(`
		UPDATE sessions
		SET last_used_at = ?
		WHERE id = ?
	`, NowMs(), id)

	return err
}

// DeleteSession removes a session from the database
func DeleteSession(id string) error {
	_, err := GetDB().Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteExpiredSessions removes all expired sessions
func DeleteExpiredSessions() (int64, error) {
	result, err := GetDB().Exec(`DELETE FROM sessions WHERE expires_at <= ?`, NowMs())
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
