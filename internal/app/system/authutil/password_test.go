package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		// Valid passwords
		{"valid minimum", "abc123xy", nil},
		{"valid medium", "mySecurePassword", nil},
		{"valid max bytes", strings.Repeat("a", 72), nil},
		{"valid with special chars", "P@ssw0rd!123", nil},
		{"valid with inner spaces", "my secret password", nil},

		// Too short
		{"too short 7 chars", "abcdefg", ErrPasswordTooShort},
		{"too short empty", "", ErrPasswordTooShort},

		// Too long
		{"too long", strings.Repeat("a", 73), ErrPasswordTooLong},
		{"too long multibyte", strings.Repeat("é", 37), ErrPasswordTooLong},

		// Surrounding whitespace
		{"leading space", " abcdefgh", ErrPasswordWhitespace},
		{"trailing tab", "abcdefgh\t", ErrPasswordWhitespace},

		// Common passwords
		{"common password", "password", ErrPasswordCommon},
		{"common PASSWORD123 uppercase", "PASSWORD123", ErrPasswordCommon},
		{"common 12345678", "12345678", ErrPasswordCommon},
		{"common blogadmin", "BlogAdmin", ErrPasswordCommon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePasswordFor(t *testing.T) {
	tests := []struct {
		name     string
		password string
		loginID  string
		wantErr  error
	}{
		{"unrelated", "correct horse battery", "writer@example.com", nil},
		{"same as login id", "Writer@Example.com", "writer@example.com", ErrPasswordIsLoginID},
		{"same as local part", "writer12", "writer12@example.com", ErrPasswordIsLoginID},
		{"contains local part is fine", "writer12-and-more", "writer12@example.com", nil},
		{"empty login id", "correct horse battery", "", nil},
		{"base rules still apply", "short", "writer@example.com", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePasswordFor(tt.password, tt.loginID); err != tt.wantErr {
				t.Errorf("ValidatePasswordFor(%q, %q) = %v, want %v", tt.password, tt.loginID, err, tt.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "mySecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == password {
		t.Error("HashPassword() returned the plain password")
	}
	if !strings.HasPrefix(hash, "$2a$12$") {
		t.Errorf("HashPassword() = %q, want a cost-12 bcrypt hash", hash)
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() with correct password = false")
	}
	if CheckPassword("wrongPassword", hash) {
		t.Error("CheckPassword() with wrong password = true")
	}
	if CheckPassword(password, "not-a-hash") {
		t.Error("CheckPassword() with an invalid hash = true")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"match", hash, "correct horse battery", true},
		{"mismatch", hash, "wrong horse battery", false},
		{"no user", "", "correct horse battery", false},
		{"no user empty password", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.hash, tt.password); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewPasswordHash(t *testing.T) {
	if _, err := NewPasswordHash("password", "a@example.com"); err != ErrPasswordCommon {
		t.Errorf("NewPasswordHash(common) error = %v, want %v", err, ErrPasswordCommon)
	}

	hash, err := NewPasswordHash("a-long-enough-secret", "a@example.com")
	if err != nil {
		t.Fatalf("NewPasswordHash() error = %v", err)
	}
	if !CheckPassword("a-long-enough-secret", hash) {
		t.Error("hash from NewPasswordHash() does not verify")
	}
}

func TestCommonPasswords_MeetLengthRule(t *testing.T) {
	// Entries shorter than the minimum could never be reached.
	for p := range commonPasswords {
		if len(p) < MinPasswordLength {
			t.Errorf("common password %q is shorter than MinPasswordLength", p)
		}
		if p != strings.ToLower(p) {
			t.Errorf("common password %q must be lowercase", p)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	if !strings.Contains(ErrPasswordTooShort.Error(), "8") {
		t.Error("ErrPasswordTooShort should mention minimum length")
	}
	if !strings.Contains(ErrPasswordTooLong.Error(), "72") {
		t.Error("ErrPasswordTooLong should mention maximum length")
	}
	if !strings.Contains(ErrPasswordCommon.Error(), "common") {
		t.Error("ErrPasswordCommon should mention 'common'")
	}
}
