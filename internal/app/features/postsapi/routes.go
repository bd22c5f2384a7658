package postsapi

import (
	"net/http"

	"github.com/dalemusser/stratablog/internal/app/system/auth"
	"github.com/dalemusser/stratablog/internal/app/system/throttle"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Limits holds the rate limit rule for each write route.
type Limits struct {
	Create throttle.Rule
	Update throttle.Rule
	Toggle throttle.Rule
	Delete throttle.Rule
}

// Routes returns a router with the blog post endpoints.
//
// Reads are public; a bearer token only matters for includeHidden.
// Writes are rate limited first and then require an admin token, so
// unauthenticated attempts count against the limit too.
func Routes(h *Handler, authMw *auth.Middleware, th *throttle.Throttle, limits Limits) http.Handler {
	r := chi.NewRouter()

	r.Use(authMw.LoadBearerUser)

	r.Get("/", h.List)
	r.Get("/timeline", h.Timeline)
	r.Get("/*", h.Get)

	admin := authMw.RequireRole(models.RoleAdmin)
	r.With(th.Limit(limits.Create), admin).Post("/", h.Create)
	r.With(th.Limit(limits.Update), admin).Put("/*", h.Update)
	r.With(th.Limit(limits.Toggle), admin).Patch("/*", h.ToggleVisibility)
	r.With(th.Limit(limits.Delete), admin).Delete("/*", h.Delete)

	return r
}
