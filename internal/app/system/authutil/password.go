// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password rules. MaxPasswordLength is bcrypt's input limit in bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	BcryptCost        = 12
)

// Password validation errors
var (
	ErrPasswordTooShort   = errors.New("Password must be at least 8 characters.")
	ErrPasswordTooLong    = errors.New("Password must be at most 72 bytes.")
	ErrPasswordCommon     = errors.New("This password is too common. Please choose a different one.")
	ErrPasswordIsLoginID  = errors.New("Password must not be the same as your email.")
	ErrPasswordWhitespace = errors.New("Password must not start or end with a space.")
)

// commonPasswords blocks the passwords credential-stuffing lists try first.
var commonPasswords = map[string]bool{
	"12345678":      true,
	"123456789":     true,
	"1234567890":    true,
	"password":      true,
	"password1":     true,
	"password123":   true,
	"passw0rd":      true,
	"qwerty123":     true,
	"qwertyuiop":    true,
	"11111111":      true,
	"00000000":      true,
	"iloveyou":      true,
	"sunshine":      true,
	"princess":      true,
	"football":      true,
	"baseball":      true,
	"superman":      true,
	"letmein1":      true,
	"welcome1":      true,
	"admin123":      true,
	"administrator": true,
	"changeme":      true,
	"blogadmin":     true,
	"myblog123":     true,
}

// ValidatePassword checks if a password meets the requirements.
// Returns nil if valid, or an error describing the issue.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if strings.TrimSpace(password) != password {
		return ErrPasswordWhitespace
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

// ValidatePasswordFor applies ValidatePassword and additionally rejects a
// password equal to the login ID or its local part (before "@").
func ValidatePasswordFor(password, loginID string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	lower := strings.ToLower(password)
	id := strings.ToLower(strings.TrimSpace(loginID))
	if id == "" {
		return nil
	}
	if lower == id {
		return ErrPasswordIsLoginID
	}
	if at := strings.IndexByte(id, '@'); at > 0 && lower == id[:at] {
		return ErrPasswordIsLoginID
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
// The password should be validated with ValidatePassword first.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain-text password with a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
