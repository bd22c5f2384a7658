// Package postsapi provides the blog post JSON API.
//
// Endpoints (mounted at /api/blogs):
//   - GET    /                          - List posts (page, limit, includeHidden)
//   - GET    /timeline                  - Posts grouped by year and month
//   - GET    /{slug...}                 - Get one post
//   - POST   /                          - Create a post (admin)
//   - PUT    /{slug...}                 - Update a post (admin)
//   - PATCH  /{slug...}/toggle-visibility - Hide or unhide a post (admin)
//   - DELETE /{slug...}                 - Delete a post (admin)
//
// Slugs contain slashes ("posts/<date>/<title>"), so every single-post route
// takes the rest of the path as the slug.
package postsapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/stratablog/internal/app/system/auth"
	"github.com/dalemusser/stratablog/internal/app/system/blog"
	"github.com/dalemusser/stratablog/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const toggleSuffix = "/toggle-visibility"

// Handler serves the blog post API.
type Handler struct {
	posts  *blog.Manager
	logger *zap.Logger

	// hiddenRequiresAdmin restricts includeHidden=true to admin callers.
	hiddenRequiresAdmin bool
}

// NewHandler creates a new postsapi handler.
func NewHandler(posts *blog.Manager, hiddenRequiresAdmin bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		posts:               posts,
		logger:              logger,
		hiddenRequiresAdmin: hiddenRequiresAdmin,
	}
}

// postRequest is the JSON body of create and update requests. Fields the
// server owns (slug, createdAt, hidden, id) are not decoded.
type postRequest struct {
	Title           *string   `json:"title"`
	Content         *string   `json:"content"`
	Summary         *string   `json:"summary"`
	MetaDescription *string   `json:"metaDescription"`
	Keywords        *[]string `json:"keywords"`
}

func (p postRequest) createInput() blog.CreateInput {
	in := blog.CreateInput{
		Title:           deref(p.Title),
		Content:         deref(p.Content),
		Summary:         deref(p.Summary),
		MetaDescription: deref(p.MetaDescription),
	}
	if p.Keywords != nil {
		in.Keywords = *p.Keywords
	}
	return in
}

func (p postRequest) updateInput() blog.UpdateInput {
	return blog.UpdateInput{
		Title:           p.Title,
		Content:         p.Content,
		Summary:         p.Summary,
		MetaDescription: p.MetaDescription,
		Keywords:        p.Keywords,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List handles GET /api/blogs.
//
// Response (200 OK):
//
//	{
//	    "blogs": [ ... ],
//	    "pagination": {"page": 1, "limit": 10, "total": 42, "pages": 5}
//	}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.posts.List(r.Context(), blog.ListQuery{
		Page:          parsePositive(q.Get("page")),
		Limit:         parsePositive(q.Get("limit")),
		IncludeHidden: h.includeHidden(r),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{
		"blogs":      res.Items,
		"pagination": res.Pagination,
	})
}

// Timeline handles GET /api/blogs/timeline.
//
// Response (200 OK): {"years": [{"year": 2024, "months": [...]}]}
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	years, err := h.posts.Timeline(r.Context(), h.includeHidden(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"years": years})
}

// Get handles GET /api/blogs/{slug...}. Hidden posts are returned too;
// visibility only filters listings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(r)
	if !ok {
		jsonutil.NotFound(w, "Blog not found")
		return
	}
	p, err := h.posts.Get(r.Context(), slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.OK(w, p)
}

// Create handles POST /api/blogs and returns the stored post (201).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	p, err := h.posts.Create(r.Context(), req.createInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.Created(w, p)
}

// Update handles PUT /api/blogs/{slug...}. Only fields present in the body
// change; a new title moves the post to a new slug.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(r)
	if !ok {
		jsonutil.NotFound(w, "Blog not found")
		return
	}
	var req postRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	p, err := h.posts.Update(r.Context(), slug, req.updateInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.OK(w, p)
}

// ToggleVisibility handles PATCH /api/blogs/{slug...}/toggle-visibility.
// Any other PATCH path is not found.
func (h *Handler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	rest, _ := slugParam(r)
	slug, found := strings.CutSuffix(rest, toggleSuffix)
	if !found || slug == "" {
		jsonutil.NotFound(w, "Not found")
		return
	}
	p, err := h.posts.ToggleVisibility(r.Context(), slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.OK(w, p)
}

// Delete handles DELETE /api/blogs/{slug...}.
//
// Response (200 OK): {"message": "Blog deleted successfully", "blog": {...}}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(r)
	if !ok {
		jsonutil.NotFound(w, "Blog not found")
		return
	}
	p, err := h.posts.Delete(r.Context(), slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{
		"message": "Blog deleted successfully",
		"blog":    p,
	})
}

// includeHidden reports whether hidden posts should be listed for r.
func (h *Handler) includeHidden(r *http.Request) bool {
	if r.URL.Query().Get("includeHidden") != "true" {
		return false
	}
	if !h.hiddenRequiresAdmin {
		return true
	}
	return auth.IsAdmin(r)
}

// writeError maps a blog error to a JSON response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *blog.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonutil.ValidationError(w, verr.Fields)
	case errors.Is(err, blog.ErrNotFound):
		jsonutil.NotFound(w, "Blog not found")
	case errors.Is(err, blog.ErrConflict):
		jsonutil.Conflict(w, "A blog with this title already exists for this date")
	default:
		h.logger.Error("blog request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		jsonutil.InternalError(w, "Something went wrong")
	}
}

// slugParam returns the wildcard part of the route.
func slugParam(r *http.Request) (string, bool) {
	slug := strings.Trim(chi.URLParam(r, "*"), "/")
	return slug, slug != ""
}

// parsePositive returns the value of s, or 0 when it is not a positive
// integer so the listing defaults apply.
func parsePositive(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
