// Package auth implements the email/password identity provider: sign-up,
// sign-in with opaque session tokens, and token-to-user resolution.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/lasttodo/lasttodo/db"
	"github.com/lasttodo/lasttodo/log"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with a registered email
	ErrEmailTaken = errors.New("email already exists")
	// ErrWeakPassword is returned when the password is shorter than 6 characters
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrEmailRequired is returned when the email is empty
	ErrEmailRequired = errors.New("email is required")
)

// Service is the identity provider backed by the users and sessions tables
type Service struct{}

// NewService creates the identity provider
func NewService() *Service {
	return &Service{}
}

// SignUp registers a new account
func (s *Service) SignUp(email, password string) (*db.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	exists, err := db.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := db.CreateUser(email, hashPassword(password))
	if err != nil {
		return nil, err
	}

	log.Info().Str("userId", user.ID).Msg("user registered")
	return user, nil
}

// SignIn verifies credentials and returns a new session token
func (s *Service) SignIn(email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := db.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil || hashPassword(password) != user.PasswordHash {
		log.Warn().Str("email", email).Msg("sign-in attempt with invalid credentials")
		return "", ErrInvalidCredentials
	}

	token := generateSessionToken()
	if _, err := db.CreateSession(token, user.ID); err != nil {
		return "", err
	}

	log.Info().Str("userId", user.ID).Msg("sign-in successful")
	return token, nil
}

// SignOut ends the session for a token. Unknown tokens are a no-op.
func (s *Service) SignOut(token string) {
	if token == "" {
		return
	}
	if err := db.DeleteSession(token); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}
}

// UserIDForToken resolves a session token to a user id.
// Returns "" and false for unknown or expired tokens.
func (s *Service) UserIDForToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	session, err := db.GetSession(token)
	if err != nil {
		log.Error().Err(err).Msg("failed to get session")
		return "", false
	}
	if session == nil {
		return "", false
	}

	// Touch session to update last_used_at
	if err := db.TouchSession(token); err != nil {
		log.Error().Err(err).Msg("failed to touch session")
	}

	return session.UserID, true
}

// Helper functions

func hashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}

func generateSessionToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
