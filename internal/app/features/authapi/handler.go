// Package authapi provides the account JSON API used by the admin frontend.
//
// Endpoints (mounted at /api/auth):
//   - POST /login    - Exchange email and password for a bearer token
//   - POST /register - Create an author account (only when enabled)
//   - GET  /profile  - Return the signed-in user
//
// Repeated failed logins for one email lock that email out for a window,
// independent of the per-IP request throttle on the routes.
package authapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/stratablog/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/stratablog/internal/app/store/users"
	"github.com/dalemusser/stratablog/internal/app/system/auth"
	"github.com/dalemusser/stratablog/internal/app/system/authutil"
	"github.com/dalemusser/stratablog/internal/app/system/inputval"
	"github.com/dalemusser/stratablog/internal/app/system/jsonutil"
	"github.com/dalemusser/stratablog/internal/app/system/normalize"
	"github.com/dalemusser/stratablog/internal/app/system/throttle"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Default lockout policy.
const (
	DefaultMaxFailures   = 5
	DefaultLockoutWindow = 15 * time.Minute
)

// Options configures a Handler.
type Options struct {
	// AllowRegistration enables POST /register.
	AllowRegistration bool
	// MaxFailures is the number of failed logins allowed per email within
	// LockoutWindow. Zero uses DefaultMaxFailures.
	MaxFailures   int
	LockoutWindow time.Duration
}

// Handler serves the account endpoints.
type Handler struct {
	users    *userstore.Store
	tokens   *auth.JWTManager
	failures *ratelimit.Store // nil disables lockout
	clock    clockwork.Clock
	opts     Options
	logger   *zap.Logger
}

// NewHandler creates a new authapi Handler.
// failures can be nil to disable the failed-login lockout.
func NewHandler(db *mongo.Database, tokens *auth.JWTManager, failures *ratelimit.Store, clk clockwork.Clock, opts Options, logger *zap.Logger) *Handler {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.LockoutWindow <= 0 {
		opts.LockoutWindow = DefaultLockoutWindow
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		users:    userstore.New(db),
		tokens:   tokens,
		failures: failures,
		clock:    clk,
		opts:     opts,
		logger:   logger,
	}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,notblank" label:"Password"`
}

type registerInput struct {
	Username string `json:"username" validate:"required,max=100" label:"Username"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,notblank" label:"Password"`
}

// userResponse is the account as the frontend sees it.
type userResponse struct {
	ID        string     `json:"_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:       u.ID.Hex(),
		Username: u.FullName,
		Email:    u.LoginID,
		Role:     u.Role,
	}
}

// Login handles POST /api/auth/login.
//
// Request body:
//
//	{"email": "owner@example.com", "password": "..."}
//
// Response (200 OK):
//
//	{"_id": "...", "username": "...", "email": "...", "role": "admin",
//	 "token": "<jwt>", "expiresAt": "..."}
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}

	loginID := normalize.LoginID(in.Email)
	failureKey := "login-failure:" + loginID

	if h.failures != nil {
		d, err := h.failures.Peek(r.Context(), failureKey, h.opts.MaxFailures, h.opts.LockoutWindow)
		if err != nil {
			h.logger.Warn("login lockout check failed", zap.String("login_id", loginID), zap.Error(err))
		} else if !d.Allowed {
			h.logger.Info("login rejected: locked out", zap.String("login_id", loginID))
			w.Header().Set("Retry-After", strconv.Itoa(throttle.RetryAfterSeconds(d, h.clock.Now())))
			jsonutil.TooManyRequests(w, "Too many failed login attempts. Please try again later.")
			return
		}
	}

	u, err := h.users.GetByLoginID(r.Context(), loginID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.logger.Error("login lookup failed", zap.String("login_id", loginID), zap.Error(err))
		jsonutil.InternalError(w, "Something went wrong")
		return
	}

	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if !authutil.VerifyPassword(hash, in.Password) {
		h.recordFailure(r, failureKey, loginID)
		jsonutil.Unauthorized(w, authutil.ErrInvalidCredentials.Error())
		return
	}

	if !u.IsActive() {
		h.logger.Info("login rejected: account disabled", zap.String("login_id", loginID))
		jsonutil.Forbidden(w, "This account is disabled.")
		return
	}

	if h.failures != nil {
		if err := h.failures.Reset(r.Context(), failureKey); err != nil {
			h.logger.Warn("failed to clear login failures", zap.String("login_id", loginID), zap.Error(err))
		}
	}

	h.logger.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	h.respondWithToken(w, r, http.StatusOK, u)
}

// Register handles POST /api/auth/register. New accounts are authors; the
// admin account comes from configuration.
//
// Request body:
//
//	{"username": "Writer", "email": "writer@example.com", "password": "..."}
//
// Response (201 Created): same shape as Login.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.opts.AllowRegistration {
		jsonutil.Forbidden(w, "Registration is disabled.")
		return
	}

	var in registerInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	in.Username = normalize.Name(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}

	hash, err := authutil.NewPasswordHash(in.Password, in.Email)
	if err != nil {
		jsonutil.ValidationError(w, map[string]string{"password": err.Error()})
		return
	}

	u, err := h.users.Create(r.Context(), models.User{
		FullName:     in.Username,
		LoginID:      in.Email,
		PasswordHash: hash,
		Role:         models.RoleAuthor,
	})
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		jsonutil.Conflict(w, "User already exists")
		return
	}
	if err != nil {
		h.logger.Error("registration failed", zap.String("login_id", normalize.LoginID(in.Email)), zap.Error(err))
		jsonutil.InternalError(w, "Something went wrong")
		return
	}

	h.logger.Info("user registered", zap.String("user_id", u.ID.Hex()))
	h.respondWithToken(w, r, http.StatusCreated, &u)
}

// Profile handles GET /api/auth/profile. The account is reloaded so a
// changed role or name shows without a new token.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	cu, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "not authorized, valid token required")
		return
	}

	u, err := h.users.GetByID(r.Context(), cu.UserID())
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.Unauthorized(w, "not authorized, valid token required")
		return
	}
	if err != nil {
		h.logger.Error("profile lookup failed", zap.String("user_id", cu.ID), zap.Error(err))
		jsonutil.InternalError(w, "Something went wrong")
		return
	}
	jsonutil.OK(w, newUserResponse(u))
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *models.User) {
	token, expiresAt, err := h.tokens.Issue(&auth.User{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.LoginID,
		Role:    u.Role,
	})
	if err != nil {
		h.logger.Error("failed to issue token", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Something went wrong")
		return
	}

	resp := newUserResponse(u)
	resp.Token = token
	resp.ExpiresAt = &expiresAt
	jsonutil.JSON(w, status, resp)
}

func (h *Handler) recordFailure(r *http.Request, key, loginID string) {
	if h.failures == nil {
		return
	}
	d, err := h.failures.Hit(r.Context(), key, h.opts.MaxFailures, h.opts.LockoutWindow)
	if err != nil {
		h.logger.Warn("failed to record login failure", zap.String("login_id", loginID), zap.Error(err))
		return
	}
	h.logger.Info("login failed",
		zap.String("login_id", loginID),
		zap.Int("failures", d.Count))
}
