package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/stratablog/internal/app/system/jsonutil"
	"github.com/dalemusser/stratablog/internal/app/system/normalize"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware - bearer token authentication                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// Middleware authenticates requests carrying "Authorization: Bearer <jwt>".
// Use NewMiddleware to create an instance.
type Middleware struct {
	tokens      *JWTManager
	logger      *zap.Logger
	userFetcher UserFetcher
}

// NewMiddleware creates bearer-token middleware. If fetcher is nil the user
// is built from the token claims alone.
func NewMiddleware(tokens *JWTManager, fetcher UserFetcher, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		tokens:      tokens,
		logger:      logger,
		userFetcher: fetcher,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| UserFetcher interface                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// UserFetcher fetches fresh user data from the database.
// Implementations should return nil if the user is not found or is disabled.
type UserFetcher interface {
	// FetchUser retrieves a user by ID. Returns nil if user not found,
	// disabled, or any other condition that should invalidate the token.
	FetchUser(ctx context.Context, userID string) *User
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// User represents the authenticated user in the request context.
type User struct {
	ID      string
	Name    string
	LoginID string
	Role    string
}

// UserID returns the user's ID as an ObjectID.
// If the ID is invalid, returns a zero ObjectID.
func (u *User) UserID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && normalize.Role(u.Role) == models.RoleAdmin
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag from the request context.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*User)
	return u, ok
}

// IsAdmin reports whether the request carries an authenticated admin.
func IsAdmin(r *http.Request) bool {
	u, ok := CurrentUser(r)
	return ok && u.IsAdmin()
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadBearerUser returns middleware that injects the user into context when
// the request carries a valid token. Requests without one pass through
// anonymously; RequireAuth and RequireRole decide whether that is enough.
func (m *Middleware) LoadBearerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Validate(raw)
		if err != nil {
			m.logger.Debug("bearer token rejected",
				zap.Error(err),
				zap.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
			return
		}

		if m.userFetcher != nil {
			u := m.userFetcher.FetchUser(r.Context(), claims.Subject)
			if u == nil {
				m.logger.Info("token ignored: user not found or disabled",
					zap.String("user_id", claims.Subject),
					zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			r = withUser(r, u)
		} else {
			r = withUser(r, &User{
				ID:   claims.Subject,
				Name: claims.Name,
				Role: normalize.Role(claims.Role),
			})
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth returns middleware that ensures there is a user in context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		jsonutil.Unauthorized(w, "not authorized, valid token required")
	})
}

// RequireRole returns middleware that ensures there is a user with the required role.
func (m *Middleware) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[normalize.Role(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)

			// 1) Not signed in → 401
			if !ok {
				jsonutil.Unauthorized(w, "not authorized, valid token required")
				return
			}

			// 2) Signed in but wrong role → 403
			if _, has := set[normalize.Role(u.Role)]; !has {
				m.logger.Info("role check failed",
					zap.String("user_id", u.ID),
					zap.String("role", u.Role),
					zap.String("path", r.URL.Path))
				jsonutil.Forbidden(w, "not authorized for this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func withUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a User into the request context for testing.
func WithTestUser(r *http.Request, u *User) *http.Request {
	return withUser(r, u)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// isDefaultKey checks if the signing key appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
