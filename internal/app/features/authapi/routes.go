package authapi

import (
	"net/http"

	"github.com/dalemusser/stratablog/internal/app/system/auth"
	"github.com/dalemusser/stratablog/internal/app/system/throttle"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the account endpoints.
// login limits both login and registration attempts per client IP.
func Routes(h *Handler, authMw *auth.Middleware, th *throttle.Throttle, login throttle.Rule) http.Handler {
	r := chi.NewRouter()

	r.Use(authMw.LoadBearerUser)

	r.With(th.Limit(login)).Post("/login", h.Login)
	r.With(th.Limit(login)).Post("/register", h.Register)
	r.With(authMw.RequireAuth).Get("/profile", h.Profile)

	return r
}
