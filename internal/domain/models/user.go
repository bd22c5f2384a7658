// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can sign in to the blog admin.
//
// Only password authentication exists; PasswordHash is a bcrypt hash and is
// never serialized to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	LoginID  string             `bson:"login_id" json:"login_id"` // lowercase

	PasswordHash string `bson:"password_hash" json:"-"`

	Role   string `bson:"role" json:"role"`
	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User roles
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

// User statuses
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// IsValidRole reports whether role is admin or author.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleAuthor
}

// IsActive reports whether the user may sign in.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == StatusActive
}
