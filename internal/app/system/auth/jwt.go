package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultIssuer is used when no issuer is configured.
const DefaultIssuer = "stratablog"

// ErrInvalidToken is returned by Validate for any token that must not be trusted.
var ErrInvalidToken = errors.New("invalid or expired token")

// ConfigError is returned when token configuration is invalid.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Claims is the payload of an access token. Subject holds the user ID hex.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// JWTManager issues and validates HS256 access tokens.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewJWTManager creates a JWTManager.
//
// Parameters:
//   - secret: HMAC signing key (must be ≥32 chars in production)
//   - issuer: iss claim written and required on validation (DefaultIssuer if empty)
//   - ttl: token lifetime (e.g., 24*time.Hour)
//   - secure: if true, a weak or placeholder secret is rejected instead of logged
//   - clk: time source (nil uses the real clock)
//   - logger: zap logger for configuration warnings
func NewJWTManager(secret, issuer string, ttl time.Duration, secure bool, clk clockwork.Clock, logger *zap.Logger) (*JWTManager, error) {
	if secret == "" {
		return nil, &ConfigError{Message: "jwt secret is empty; provide ≥32 random chars"}
	}
	if ttl <= 0 {
		return nil, &ConfigError{Message: "jwt ttl must be positive"}
	}

	isWeak := len(secret) < 32 || isDefaultKey(secret)
	if secure {
		if isWeak {
			return nil, &ConfigError{
				Message: "jwt secret is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("jwt secret is weak; 32+ random chars required in production",
			zap.Int("length", len(secret)),
			zap.Bool("is_default", isDefaultKey(secret)))
	}

	if issuer == "" {
		issuer = DefaultIssuer
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}

	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  clk,
	}, nil
}

// Issue signs a new access token for u and returns it with its expiry.
func (m *JWTManager) Issue(u *User) (string, time.Time, error) {
	if u == nil || u.ID == "" {
		return "", time.Time{}, errors.New("issue token: user has no id")
	}

	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: u.Role,
		Name: u.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses tokenString and checks its signature, issuer and expiry.
// Any failure is reported as ErrInvalidToken wrapping the cause.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	return claims, nil
}
