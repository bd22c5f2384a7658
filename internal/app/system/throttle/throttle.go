// Package throttle limits how often one client may call a group of routes.
//
// Counting is delegated to a Limiter (the Mongo-backed ratelimit.Store in
// production) so limits hold across every instance of the service. A
// limiter failure lets the request through and is logged.
package throttle

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/stratablog/internal/app/store/ratelimit"
	"github.com/dalemusser/stratablog/internal/app/system/jsonutil"
	"github.com/dalemusser/stratablog/internal/app/system/network"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Limiter counts one hit for key against limit within window.
type Limiter interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error)
}

// Rule is the limit for one route group. Keys are "<Bucket>:<client ip>".
type Rule struct {
	Bucket string
	Limit  int
	Window time.Duration
}

// Throttle builds per-rule rate limiting middleware.
type Throttle struct {
	limiter Limiter
	ips     *network.Resolver
	clock   clockwork.Clock
	logger  *zap.Logger
}

// New creates a Throttle. A nil limiter disables limiting entirely; a nil
// resolver keys clients by their peer address.
func New(limiter Limiter, ips *network.Resolver, clk clockwork.Clock, logger *zap.Logger) *Throttle {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Throttle{limiter: limiter, ips: ips, clock: clk, logger: logger}
}

// Limit returns middleware enforcing rule. Rules with a non-positive limit
// or window are not enforced.
func (t *Throttle) Limit(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if t == nil || t.limiter == nil || rule.Limit <= 0 || rule.Window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := t.ips.ClientIP(r)
			d, err := t.limiter.Hit(r.Context(), rule.Bucket+":"+ip, rule.Limit, rule.Window)
			if err != nil {
				t.logger.Warn("rate limiter unavailable; allowing request",
					zap.String("bucket", rule.Bucket),
					zap.String("ip", ip),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds(d, t.clock.Now())))
				t.logger.Info("rate limit exceeded",
					zap.String("bucket", rule.Bucket),
					zap.String("ip", ip),
					zap.Int("count", d.Count))
				jsonutil.TooManyRequests(w, "Too many requests, please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RetryAfterSeconds rounds the wait until the window resets up to whole
// seconds, never less than one.
func RetryAfterSeconds(d ratelimit.Decision, now time.Time) int {
	secs := int(math.Ceil(d.RetryAfter(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
