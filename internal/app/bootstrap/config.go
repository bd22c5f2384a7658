// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratablog/internal/app/system/network"
	"github.com/dalemusser/stratablog/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATABLOG"

// minJWTSecretLen is the shortest signing key accepted outside dev.
const minJWTSecretLen = 32

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: STRATABLOG_MONGO_URI, STRATABLOG_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratablog", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Access tokens
	{Name: "jwt_secret", Default: "dev-only-jwt-secret-change-me-0123456789", Desc: "JWT signing key (32+ random chars in production)"},
	{Name: "jwt_issuer", Default: "stratablog", Desc: "JWT issuer claim"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Access token lifetime (e.g., 24h, 30m)"},

	// Admin seeding
	{Name: "admin_login_id", Default: "", Desc: "Email of the admin user to create on startup"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created admin user"},
	{Name: "admin_name", Default: "Admin", Desc: "Display name of the admin user"},

	{Name: "allow_registration", Default: false, Desc: "Allow self-registration of author accounts"},

	// Listing
	{Name: "hidden_listing_requires_auth", Default: true, Desc: "Only admins may list hidden posts with includeHidden=true"},
	{Name: "list_default_limit", Default: 10, Desc: "Default page size for post listings"},
	{Name: "list_max_limit", Default: 100, Desc: "Maximum page size for post listings"},

	// Rate limiting
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for writes and login"},
	{Name: "rate_limit_window", Default: "15m", Desc: "Rate limit window"},
	{Name: "rate_limit_create", Default: 10, Desc: "Post creations per client per window"},
	{Name: "rate_limit_update", Default: 10, Desc: "Post updates per client per window"},
	{Name: "rate_limit_toggle", Default: 10, Desc: "Visibility toggles per client per window"},
	{Name: "rate_limit_delete", Default: 5, Desc: "Post deletions per client per window"},
	{Name: "rate_limit_login", Default: 10, Desc: "Login and register requests per client per window"},
	{Name: "login_max_failures", Default: 5, Desc: "Failed logins per account before lockout"},
	{Name: "login_lockout_window", Default: "15m", Desc: "Failed login counting and lockout window"},

	{Name: "api_cors_origins", Default: "", Desc: "Comma-separated origins allowed to call /api (blank allows any)"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated IPs or CIDRs of reverse proxies whose X-Forwarded-For is honored (blank honors none)"},
	{Name: "static_dir", Default: "./frontend/dist", Desc: "Directory holding the compiled frontend"},
	{Name: "request_timeout", Default: "30s", Desc: "Per-request timeout"},
	{Name: "db_ping_timeout", Default: "2s", Desc: "Health check database ping timeout"},
	{Name: "db_read_timeout", Default: "5s", Desc: "Timeout for the per-request user reload"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATABLOG_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		AdminLoginID:  appValues.String("admin_login_id"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),

		AllowRegistration: appValues.Bool("allow_registration"),

		HiddenListingRequiresAuth: appValues.Bool("hidden_listing_requires_auth"),
		ListDefaultLimit:          int64(appValues.Int("list_default_limit")),
		ListMaxLimit:              int64(appValues.Int("list_max_limit")),

		RateLimitEnabled: appValues.Bool("rate_limit_enabled"),
		RateLimitWindow:  appValues.Duration("rate_limit_window", 15*time.Minute),
		RateLimitCreate:  appValues.Int("rate_limit_create"),
		RateLimitUpdate:  appValues.Int("rate_limit_update"),
		RateLimitToggle:  appValues.Int("rate_limit_toggle"),
		RateLimitDelete:  appValues.Int("rate_limit_delete"),
		RateLimitLogin:   appValues.Int("rate_limit_login"),

		LoginMaxFailures:   appValues.Int("login_max_failures"),
		LoginLockoutWindow: appValues.Duration("login_lockout_window", 15*time.Minute),

		APICORSOrigins: splitList(appValues.String("api_cors_origins")),
		TrustedProxies: splitList(appValues.String("trusted_proxies")),
		StaticDir:      appValues.String("static_dir"),
		RequestTimeout: appValues.Duration("request_timeout", 30*time.Second),
		DBPingTimeout:  appValues.Duration("db_ping_timeout", timeouts.DefaultPing),
		DBReadTimeout:  appValues.Duration("db_read_timeout", timeouts.DefaultShort),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	var errs []error
	if coreCfg.Env != "dev" && len(appCfg.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d characters outside dev", minJWTSecretLen))
	}
	if appCfg.JWTTTL <= 0 {
		errs = append(errs, errors.New("jwt_ttl must be positive"))
	}
	if appCfg.ListDefaultLimit <= 0 || appCfg.ListMaxLimit <= 0 {
		errs = append(errs, errors.New("list_default_limit and list_max_limit must be positive"))
	} else if appCfg.ListDefaultLimit > appCfg.ListMaxLimit {
		errs = append(errs, errors.New("list_default_limit must not exceed list_max_limit"))
	}
	if appCfg.RateLimitEnabled {
		if appCfg.RateLimitWindow <= 0 {
			errs = append(errs, errors.New("rate_limit_window must be positive"))
		}
		for _, rule := range []struct {
			key string
			n   int
		}{
			{"rate_limit_create", appCfg.RateLimitCreate},
			{"rate_limit_update", appCfg.RateLimitUpdate},
			{"rate_limit_toggle", appCfg.RateLimitToggle},
			{"rate_limit_delete", appCfg.RateLimitDelete},
			{"rate_limit_login", appCfg.RateLimitLogin},
		} {
			if rule.n <= 0 {
				errs = append(errs, fmt.Errorf("%s must be positive", rule.key))
			}
		}
	}
	if _, err := network.NewResolver(appCfg.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("trusted_proxies: %w", err))
	}
	if appCfg.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if (appCfg.AdminLoginID == "") != (appCfg.AdminPassword == "") {
		logger.Warn("admin seeding needs both admin_login_id and admin_password; skipping")
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

// splitList parses a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
