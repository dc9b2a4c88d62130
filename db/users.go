package db

import (
	"database/sql"

	"github.com/google/uuid"
)

// CreateUser inserts a new user and returns the record
func CreateUser(email, passwordHash string) (*User, error) {
	u := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    NowMs(),
	}

	_, err := GetDB().Exec(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// GetUserByEmail retrieves a user by email, nil if not found
func GetUserByEmail(email string) (*User, error) {
	var u User
	err := GetDB().QueryRow(`
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// EmailExists checks whether an email is already registered
func EmailExists(email string) (bool, error) {
	var count int
	err := GetDB().QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
