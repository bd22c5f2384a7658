// Package blog implements the post lifecycle (create, update, toggle
// visibility, delete) and the listing queries used by the public site.
//
// The Manager owns every rule about a post: content is sanitized before it
// is stored, slugs are generated from the title and creation time, and
// creation time always comes from the server clock. Persistence is delegated
// to a Repository.
package blog

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratablog/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratablog/internal/app/system/normalize"
	"github.com/dalemusser/stratablog/internal/app/system/slugify"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Default listing limits.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// CreateInput is the client-supplied part of a new post.
// Slug, creation time and visibility are never taken from the client.
type CreateInput struct {
	Title           string
	Content         string
	Summary         string
	MetaDescription string
	Keywords        []string
}

// UpdateInput holds the fields to change; nil fields are left as stored.
type UpdateInput struct {
	Title           *string
	Content         *string
	Summary         *string
	MetaDescription *string
	Keywords        *[]string
}

// Manager applies the post lifecycle rules on top of a Repository.
type Manager struct {
	repo   Repository
	clock  clockwork.Clock
	logger *zap.Logger

	defaultLimit int64
	maxLimit     int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithListLimits sets the page size used when none is requested and the
// largest page size a caller may ask for.
func WithListLimits(defaultLimit, maxLimit int64) Option {
	return func(m *Manager) {
		if defaultLimit > 0 {
			m.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			m.maxLimit = maxLimit
		}
	}
}

// NewManager creates a Manager. A nil clock uses the real clock.
func NewManager(repo Repository, clk clockwork.Clock, logger *zap.Logger, opts ...Option) *Manager {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		repo:         repo,
		clock:        clk,
		logger:       logger,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.defaultLimit > m.maxLimit {
		m.defaultLimit = m.maxLimit
	}
	return m
}

// now returns the current time at the precision the document store keeps.
func (m *Manager) now() time.Time {
	return m.clock.Now().UTC().Truncate(time.Millisecond)
}

// Create validates, sanitizes and stores a new visible post.
func (m *Manager) Create(ctx context.Context, in CreateInput) (models.Post, error) {
	p := models.Post{
		Title:           normalize.Text(in.Title),
		Content:         htmlsanitize.Sanitize(in.Content),
		MetaDescription: normalize.Text(in.MetaDescription),
		Keywords:        normalize.Keywords(in.Keywords),
		CreatedAt:       m.now(),
	}

	verr := &ValidationError{}
	checkTitle(verr, p.Title)
	checkContent(verr, p.Content)
	checkMeta(verr, p.MetaDescription)
	checkKeywords(verr, p.Keywords)

	if p.Title != "" {
		slug, err := slugify.Generate(p.Title, p.CreatedAt)
		if err != nil {
			verr.add("title", slugMessage(err))
		}
		p.Slug = slug
	}
	if verr.failed() {
		return models.Post{}, verr
	}

	p.Summary = summaryFor(in.Summary, p.Content)

	created, err := m.repo.Insert(ctx, p)
	if err != nil {
		return models.Post{}, storeErr("create", err)
	}

	m.logger.Info("blog post created",
		zap.String("slug", created.Slug),
		zap.String("id", created.ID.Hex()))
	return created, nil
}

// Update applies the present fields of in to the post at slug. A changed
// title moves the post to a new slug built from its original creation time.
func (m *Manager) Update(ctx context.Context, slug string, in UpdateInput) (models.Post, error) {
	p, err := m.repo.GetBySlug(ctx, slug)
	if err != nil {
		return models.Post{}, storeErr("update", err)
	}

	verr := &ValidationError{}

	if in.Title != nil {
		title := normalize.Text(*in.Title)
		checkTitle(verr, title)
		if title != "" && slugify.Changed(p.Title, title) {
			newSlug, err := slugify.Generate(title, p.CreatedAt)
			if err != nil {
				verr.add("title", slugMessage(err))
			}
			p.Slug = newSlug
		}
		if title != "" {
			p.Title = title
		}
	}
	if in.Content != nil {
		p.Content = htmlsanitize.Sanitize(*in.Content)
		checkContent(verr, p.Content)
	}
	if in.MetaDescription != nil {
		p.MetaDescription = normalize.Text(*in.MetaDescription)
		checkMeta(verr, p.MetaDescription)
	}
	if in.Keywords != nil {
		p.Keywords = normalize.Keywords(*in.Keywords)
		checkKeywords(verr, p.Keywords)
	}
	if verr.failed() {
		return models.Post{}, verr
	}

	if in.Summary != nil {
		p.Summary = ClampSummary(normalize.Text(*in.Summary))
	}

	now := m.now()
	p.UpdatedAt = &now

	if err := m.repo.Replace(ctx, p); err != nil {
		return models.Post{}, storeErr("update", err)
	}

	fields := []zap.Field{zap.String("slug", p.Slug)}
	if p.Slug != slug {
		fields = append(fields, zap.String("previous_slug", slug))
	}
	m.logger.Info("blog post updated", fields...)
	return p, nil
}

// ToggleVisibility flips the hidden flag of the post at slug and returns
// the post as stored afterwards. The flip is a single atomic store update.
func (m *Manager) ToggleVisibility(ctx context.Context, slug string) (models.Post, error) {
	p, err := m.repo.ToggleHidden(ctx, slug)
	if err != nil {
		return models.Post{}, storeErr("toggle visibility", err)
	}
	m.logger.Info("blog post visibility toggled",
		zap.String("slug", p.Slug),
		zap.Bool("hidden", p.Hidden))
	return p, nil
}

// Delete removes the post at slug and returns its last stored state.
func (m *Manager) Delete(ctx context.Context, slug string) (models.Post, error) {
	p, err := m.repo.DeleteBySlug(ctx, slug)
	if err != nil {
		return models.Post{}, storeErr("delete", err)
	}
	m.logger.Info("blog post deleted", zap.String("slug", p.Slug))
	return p, nil
}

// Get returns the post at slug regardless of its visibility.
func (m *Manager) Get(ctx context.Context, slug string) (models.Post, error) {
	p, err := m.repo.GetBySlug(ctx, slug)
	if err != nil {
		return models.Post{}, storeErr("get", err)
	}
	return p, nil
}

func checkTitle(verr *ValidationError, title string) {
	if title == "" {
		verr.add("title", "title is required")
	}
}

func checkContent(verr *ValidationError, content string) {
	if normalize.Text(content) == "" {
		verr.add("content", "content is required")
	}
}

func checkMeta(verr *ValidationError, meta string) {
	if meta == "" {
		verr.add("metaDescription", "meta description is required")
	}
}

func checkKeywords(verr *ValidationError, keywords []string) {
	if len(keywords) == 0 {
		verr.add("keywords", "at least one keyword is required")
	}
}

func slugMessage(err error) string {
	if errors.Is(err, slugify.ErrEmptyToken) {
		return "title must contain at least one letter or digit"
	}
	return err.Error()
}
