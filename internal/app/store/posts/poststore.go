// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stratablog/internal/app/store/storeutil"
	"github.com/dalemusser/stratablog/internal/app/system/blog"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the posts collection.
// It satisfies blog.Repository: missing documents are reported as
// blog.ErrNotFound and slug collisions as blog.ErrConflict.
type Store struct {
	c *mongo.Collection
}

// New creates a new post store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.PostsCollection)}
}

var _ blog.Repository = (*Store)(nil)

// newestFirst orders posts by creation time, _id breaking ties so paging is stable.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func visibility(includeHidden bool) bson.M {
	if includeHidden {
		return bson.M{}
	}
	return bson.M{"hidden": bson.M{"$ne": true}}
}

// Insert stores a new post and returns it with its assigned ID.
func (s *Store) Insert(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, mapErr(err)
	}
	return p, nil
}

// GetBySlug returns a post by its slug, hidden or not.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return models.Post{}, mapErr(err)
	}
	return p, nil
}

// Find returns posts newest first. A limit of 0 returns every match.
func (s *Store) Find(ctx context.Context, includeHidden bool, skip, limit int64) ([]models.Post, error) {
	opts := storeutil.Slice(skip, limit).SetSort(newestFirst)

	cur, err := s.c.Find(ctx, visibility(includeHidden), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of posts matching the visibility filter.
func (s *Store) Count(ctx context.Context, includeHidden bool) (int64, error) {
	return s.c.CountDocuments(ctx, visibility(includeHidden))
}

// Replace overwrites the stored post with the same ID.
func (s *Store) Replace(ctx context.Context, p models.Post) error {
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// ToggleHidden flips the hidden flag in a single atomic update and returns
// the post as stored afterwards.
func (s *Store) ToggleHidden(ctx context.Context, slug string) (models.Post, error) {
	// Pipeline update so the new value is computed from the stored one.
	flip := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "hidden", Value: bson.D{{Key: "$not", Value: bson.A{"$hidden"}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Post
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"slug": slug}, flip, opts).Decode(&p); err != nil {
		return models.Post{}, mapErr(err)
	}
	return p, nil
}

// DeleteBySlug removes the post and returns its last stored state.
func (s *Store) DeleteBySlug(ctx context.Context, slug string) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOneAndDelete(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return models.Post{}, mapErr(err)
	}
	return p, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return blog.ErrNotFound
	case isDuplicateKeyError(err):
		return blog.ErrConflict
	default:
		return err
	}
}

// isDuplicateKeyError checks if the error is a duplicate key error.
func isDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
