// internal/app/system/authutil/authutil.go
// Package authutil provides centralized password credential handling
// for login, registration and admin seeding.
package authutil

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the single error shown for an unknown login ID or a
// wrong password, so responses do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("Invalid email or password.")

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// VerifyPassword reports whether password matches hash. An empty hash (no
// such user, or an account without a password) still costs one bcrypt
// comparison and always fails.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		dummyHashOnce.Do(func() {
			dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)
		})
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return CheckPassword(password, hash)
}

// NewPasswordHash validates password against the password rules for loginID
// and returns its bcrypt hash ready for storage.
func NewPasswordHash(password, loginID string) (string, error) {
	if err := ValidatePasswordFor(password, loginID); err != nil {
		return "", err
	}
	return HashPassword(password)
}
