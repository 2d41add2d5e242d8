// Package auth handles password hashing and bearer-token sessions.
// Sessions are in-memory only: a restart logs everyone out, matching the
// product's transient auth state.
package auth

import (
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at registration and password change.
const MinPasswordLength = 8

// sessionTTL is how long a token stays valid without re-login.
const sessionTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against its stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type session struct {
	userID    string
	expiresAt time.Time
}

// Sessions issues and resolves bearer tokens.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]session)}
}

// Issue creates a token for userID.
func (s *Sessions) Issue(userID string) string {
	token := uuid.New().String()
	s.mu.Lock()
	s.sessions[token] = session{userID: userID, expiresAt: time.Now().Add(sessionTTL)}
	s.mu.Unlock()
	return token
}

// Resolve returns the user ID behind a token, or ErrInvalidToken.
func (s *Sessions) Resolve(token string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.expiresAt) {
		return "", ErrInvalidToken
	}
	return sess.userID, nil
}

// Revoke invalidates a token. Revoking an unknown token is a no-op.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
