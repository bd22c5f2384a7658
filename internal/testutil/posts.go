package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/dalemusser/stratablog/internal/app/system/blog"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryPosts is an in-memory blog.Repository for tests that do not need MongoDB.
// It enforces slug uniqueness the way the unique index does.
type MemoryPosts struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post

	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryPosts creates an empty MemoryPosts.
func NewMemoryPosts() *MemoryPosts {
	return &MemoryPosts{posts: make(map[primitive.ObjectID]models.Post)}
}

var _ blog.Repository = (*MemoryPosts)(nil)

// Len returns the number of stored posts.
func (m *MemoryPosts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func (m *MemoryPosts) Insert(_ context.Context, p models.Post) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Post{}, m.Err
	}
	if _, ok := m.findSlug(p.Slug); ok {
		return models.Post{}, blog.ErrConflict
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.posts[p.ID] = clonePost(p)
	return clonePost(p), nil
}

func (m *MemoryPosts) GetBySlug(_ context.Context, slug string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Post{}, m.Err
	}
	p, ok := m.findSlug(slug)
	if !ok {
		return models.Post{}, blog.ErrNotFound
	}
	return clonePost(p), nil
}

func (m *MemoryPosts) Find(_ context.Context, includeHidden bool, skip, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	all := m.visible(includeHidden)
	if skip >= int64(len(all)) {
		return []models.Post{}, nil
	}
	all = all[skip:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryPosts) Count(_ context.Context, includeHidden bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.visible(includeHidden))), nil
}

func (m *MemoryPosts) Replace(_ context.Context, p models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.posts[p.ID]; !ok {
		return blog.ErrNotFound
	}
	if other, ok := m.findSlug(p.Slug); ok && other.ID != p.ID {
		return blog.ErrConflict
	}
	m.posts[p.ID] = clonePost(p)
	return nil
}

func (m *MemoryPosts) ToggleHidden(_ context.Context, slug string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Post{}, m.Err
	}
	p, ok := m.findSlug(slug)
	if !ok {
		return models.Post{}, blog.ErrNotFound
	}
	p.Hidden = !p.Hidden
	m.posts[p.ID] = p
	return clonePost(p), nil
}

func (m *MemoryPosts) DeleteBySlug(_ context.Context, slug string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Post{}, m.Err
	}
	p, ok := m.findSlug(slug)
	if !ok {
		return models.Post{}, blog.ErrNotFound
	}
	delete(m.posts, p.ID)
	return p, nil
}

func (m *MemoryPosts) findSlug(slug string) (models.Post, bool) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return models.Post{}, false
}

// visible returns matching posts newest first, ties broken by id.
func (m *MemoryPosts) visible(includeHidden bool) []models.Post {
	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if p.Hidden && !includeHidden {
			continue
		}
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func clonePost(p models.Post) models.Post {
	if p.Keywords != nil {
		p.Keywords = append([]string(nil), p.Keywords...)
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}
