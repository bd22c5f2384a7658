// Package apicors sets CORS headers for the JSON API.
//
// The API authenticates with bearer tokens in the Authorization header and
// never with cookies, so credentials are not allowed and the allowed origins
// can be as wide as "*". Retry-After is exposed so browser clients can read
// how long a rate limit lasts.
package apicors

import (
	"net/http"
)

const (
	allowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, Accept, X-Request-ID"
	exposeHeaders = "Retry-After, X-Request-ID"
	maxAge        = "86400" // 24 hours
)

// Middleware returns CORS middleware for the /api routes.
//
// With no origins every origin is allowed (Access-Control-Allow-Origin: *).
// Otherwise only the listed origins are echoed back; requests from other
// origins get no CORS headers and the browser blocks them. Preflight OPTIONS
// requests are answered with 204 and never reach the API handlers.
//
// Usage in routes.go:
//
//	r.Route("/api", func(api chi.Router) {
//	    api.Use(apicors.Middleware(appCfg.APICORSOrigins...))
//	    api.Mount("/blogs", postsapi.Routes(...))
//	})
func Middleware(origins ...string) func(http.Handler) http.Handler {
	var originSet map[string]struct{}
	if len(origins) > 0 {
		originSet = make(map[string]struct{}, len(origins))
		for _, o := range origins {
			originSet[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if originSet == nil {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Add("Vary", "Origin")
				if origin := r.Header.Get("Origin"); origin != "" {
					if _, ok := originSet[origin]; ok {
						h.Set("Access-Control-Allow-Origin", origin)
					}
				}
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
