package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(" ana ", " Ana Petrova ", "Password123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}

	if user.Username != "ana" {
		t.Errorf("Expected trimmed username, got %q", user.Username)
	}

	if user.FullName != "Ana Petrova" {
		t.Errorf("Expected trimmed full name, got %q", user.FullName)
	}

	if user.Password != "Password123" {
		t.Error("Expected plaintext password to be kept until hashing")
	}

	if user.HashedPassword != "" {
		t.Error("Expected empty hashed password")
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		hash     string
		wantErr  error
	}{
		{"valid plaintext", "ana", "Password123", "", nil},
		{"valid hash", "ana", "", "$2a$10$hash", nil},
		{"empty username", "", "Password123", "", ErrEmptyUsername},
		{"username too long", strings.Repeat("u", 51), "Password123", "", ErrUsernameTooLong},
		{"short password", "ana", "short", "", ErrPasswordTooShort},
		{"long password", "ana", strings.Repeat("p", 73), "", ErrPasswordTooLong},
		{"no password or hash", "ana", "", "", ErrEmptyHashedPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user := User{
				ID:             uuid.New(),
				Username:       tc.username,
				Password:       tc.password,
				HashedPassword: tc.hash,
			}
			if err := user.Validate(); err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}

	user := User{Username: "ana", HashedPassword: "hash"}
	if err := user.Validate(); err != ErrEmptyUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}
}
