// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a single blog post.
//
// Slug is system-generated ("posts/<date-token>/<title-token>") and unique
// across the collection. CreatedAt is set once at creation and never taken
// from client input.
type Post struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Content         string             `bson:"content" json:"content"` // sanitized HTML from the editor
	Summary         string             `bson:"summary" json:"summary"` // at most SummaryMaxLen characters
	MetaDescription string             `bson:"meta_description" json:"metaDescription"`
	Keywords        []string           `bson:"keywords" json:"keywords"`
	Slug            string             `bson:"slug" json:"slug"`
	Hidden          bool               `bson:"hidden" json:"hidden"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// SummaryMaxLen is the maximum summary length in characters (runes).
const SummaryMaxLen = 200

// PostsCollection is the MongoDB collection holding posts.
const PostsCollection = "posts"
