package blog

import (
	"context"

	"github.com/dalemusser/stratablog/internal/domain/models"
)

// Repository is the document store holding posts.
//
// Implementations return ErrNotFound when no document matches and
// ErrConflict when a write violates slug uniqueness. Find returns posts
// newest first; a limit of 0 means no limit.
type Repository interface {
	Insert(ctx context.Context, p models.Post) (models.Post, error)
	GetBySlug(ctx context.Context, slug string) (models.Post, error)
	Find(ctx context.Context, includeHidden bool, skip, limit int64) ([]models.Post, error)
	Count(ctx context.Context, includeHidden bool) (int64, error)
	Replace(ctx context.Context, p models.Post) error
	ToggleHidden(ctx context.Context, slug string) (models.Post, error)
	DeleteBySlug(ctx context.Context, slug string) (models.Post, error)
}
