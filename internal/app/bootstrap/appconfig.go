// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Access token configuration
	JWTSecret string        // HMAC signing key (32+ chars outside dev)
	JWTIssuer string        // iss claim (default: stratablog)
	JWTTTL    time.Duration // Token lifetime (default: 24h)

	// Bootstrap administrator, created or promoted in EnsureSchema
	AdminLoginID  string
	AdminPassword string
	AdminName     string

	// Account options
	AllowRegistration bool // Expose POST /api/auth/register (default: false)

	// Listing configuration
	HiddenListingRequiresAuth bool  // includeHidden honoured only for admins (default: true)
	ListDefaultLimit          int64 // Page size when none is given (default: 10)
	ListMaxLimit              int64 // Largest page size accepted (default: 100)

	// Rate limiting configuration (per client IP, fixed window)
	RateLimitEnabled bool          // Enable write and login rate limits (default: true)
	RateLimitWindow  time.Duration // Window shared by every rule (default: 15m)
	RateLimitCreate  int           // POST /api/blogs per window (default: 10)
	RateLimitUpdate  int           // PUT /api/blogs/... per window (default: 10)
	RateLimitToggle  int           // PATCH .../toggle-visibility per window (default: 10)
	RateLimitDelete  int           // DELETE /api/blogs/... per window (default: 5)
	RateLimitLogin   int           // POST /api/auth/{login,register} per window (default: 10)

	// Failed login lockout (per account)
	LoginMaxFailures   int           // Failed logins before lockout (default: 5)
	LoginLockoutWindow time.Duration // Lockout and counting window (default: 15m)

	// API CORS: origins allowed to call /api with bearer tokens (empty = any)
	APICORSOrigins []string

	// Reverse proxies whose X-Forwarded-For chain is used for client IPs.
	// Empty means the socket peer is always the client.
	TrustedProxies []string

	// Frontend build served for every non-API GET
	StaticDir string

	// Per-request deadline applied by chi's Timeout middleware (default: 30s)
	RequestTimeout time.Duration

	// Database call timeouts outside a request deadline
	DBPingTimeout time.Duration // health check ping (default: 2s)
	DBReadTimeout time.Duration // per-request user reload (default: 5s)
}
