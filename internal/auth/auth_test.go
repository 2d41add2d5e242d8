package auth_test

import (
	"errors"
	"testing"

	"github.com/verijob/verijob/internal/auth"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash equals plaintext")
	}
	if !auth.CheckPassword(hash, "hunter2hunter2") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong-password") {
		t.Error("wrong password accepted")
	}
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"not-an-email", false},
		{"@example.com", false},
		{"user@", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := auth.ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestSessions(t *testing.T) {
	t.Parallel()

	s := auth.NewSessions()
	token := s.Issue("user-1")
	if token == "" {
		t.Fatal("empty token")
	}

	userID, err := s.Resolve(token)
	if err != nil || userID != "user-1" {
		t.Errorf("Resolve = (%q, %v), want (user-1, nil)", userID, err)
	}

	s.Revoke(token)
	if _, err := s.Resolve(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Resolve after revoke = %v, want ErrInvalidToken", err)
	}

	if _, err := s.Resolve("bogus"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Resolve bogus token = %v, want ErrInvalidToken", err)
	}
}
