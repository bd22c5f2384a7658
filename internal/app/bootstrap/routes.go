// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authapifeature "github.com/dalemusser/stratablog/internal/app/features/authapi"
	healthfeature "github.com/dalemusser/stratablog/internal/app/features/health"
	postsapifeature "github.com/dalemusser/stratablog/internal/app/features/postsapi"
	spafeature "github.com/dalemusser/stratablog/internal/app/features/spa"
	poststore "github.com/dalemusser/stratablog/internal/app/store/posts"
	"github.com/dalemusser/stratablog/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/stratablog/internal/app/store/users"
	"github.com/dalemusser/stratablog/internal/app/system/apicors"
	"github.com/dalemusser/stratablog/internal/app/system/auth"
	"github.com/dalemusser/stratablog/internal/app/system/blog"
	"github.com/dalemusser/stratablog/internal/app/system/jsonutil"
	"github.com/dalemusser/stratablog/internal/app/system/network"
	"github.com/dalemusser/stratablog/internal/app/system/throttle"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Rate limit buckets. Keys in the rate_limits collection are "<bucket>:<ip>".
const (
	bucketCreate = "blog-create"
	bucketUpdate = "blog-update"
	bucketToggle = "blog-toggle"
	bucketDelete = "blog-delete"
	bucketLogin  = "auth-login"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Layout:
//   - /api/blogs: post API (public reads, admin writes, rate limited)
//   - /api/auth: login, registration, profile (bearer JWT)
//   - /health, /ready, /readyz, /livez: probes
//   - everything else: the compiled frontend with index.html fallback
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Weak signing keys are rejected in production.
	secure := coreCfg.Env == "prod"
	clk := clockwork.NewRealClock()

	tokens, err := auth.NewJWTManager(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL, secure, clk, logger)
	if err != nil {
		logger.Error("jwt manager init failed", zap.Error(err))
		return nil, err
	}

	// The fetcher reloads the user on each authenticated request so role
	// changes and disabled accounts take effect before the token expires.
	authMw := auth.NewMiddleware(tokens, userstore.NewFetcher(deps.MongoDatabase, logger), logger)

	ips, err := network.NewResolver(appCfg.TrustedProxies)
	if err != nil {
		logger.Error("trusted proxies invalid", zap.Error(err))
		return nil, err
	}

	// One Mongo-backed counter store serves both the per-IP route limits and
	// the per-account failed login lockout.
	var (
		th       *throttle.Throttle
		failures *ratelimit.Store
	)
	if appCfg.RateLimitEnabled {
		counters := ratelimit.New(deps.MongoDatabase, clk)
		th = throttle.New(counters, ips, clk, logger)
		failures = counters
	} else {
		logger.Warn("rate limiting disabled")
	}

	posts := blog.NewManager(
		poststore.New(deps.MongoDatabase),
		clk,
		logger,
		blog.WithListLimits(appCfg.ListDefaultLimit, appCfg.ListMaxLimit),
	)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(appCfg.RequestTimeout))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// ─────────────────────────────────────────────────────────────────────────────
	// JSON API
	// Bearer token auth, no cookies, so no CSRF protection is needed.
	// ─────────────────────────────────────────────────────────────────────────────
	postsHandler := postsapifeature.NewHandler(posts, appCfg.HiddenListingRequiresAuth, logger)
	postLimits := postsapifeature.Limits{
		Create: throttle.Rule{Bucket: bucketCreate, Limit: appCfg.RateLimitCreate, Window: appCfg.RateLimitWindow},
		Update: throttle.Rule{Bucket: bucketUpdate, Limit: appCfg.RateLimitUpdate, Window: appCfg.RateLimitWindow},
		Toggle: throttle.Rule{Bucket: bucketToggle, Limit: appCfg.RateLimitToggle, Window: appCfg.RateLimitWindow},
		Delete: throttle.Rule{Bucket: bucketDelete, Limit: appCfg.RateLimitDelete, Window: appCfg.RateLimitWindow},
	}

	authHandler := authapifeature.NewHandler(deps.MongoDatabase, tokens, failures, clk, authapifeature.Options{
		AllowRegistration: appCfg.AllowRegistration,
		MaxFailures:       appCfg.LoginMaxFailures,
		LockoutWindow:     appCfg.LoginLockoutWindow,
	}, logger)
	loginLimit := throttle.Rule{Bucket: bucketLogin, Limit: appCfg.RateLimitLogin, Window: appCfg.RateLimitWindow}

	r.Route("/api", func(api chi.Router) {
		api.Use(apicors.Middleware(appCfg.APICORSOrigins...))

		api.Mount("/blogs", postsapifeature.Routes(postsHandler, authMw, th, postLimits))
		api.Mount("/auth", authapifeature.Routes(authHandler, authMw, th, loginLimit))

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			jsonutil.NotFound(w, "Not found")
		})
		api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			jsonutil.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, Version, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Frontend: static files with pre-compressed variants, index.html for
	// client-side routes.
	r.NotFound(spafeature.NewHandler(appCfg.StaticDir, logger).ServeHTTP)

	logger.Info("routes ready",
		zap.String("static_dir", appCfg.StaticDir),
		zap.Bool("rate_limit_enabled", appCfg.RateLimitEnabled),
		zap.Bool("allow_registration", appCfg.AllowRegistration),
	)

	return r, nil
}
