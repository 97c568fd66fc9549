package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cowrite/internal/httputil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var (
	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cowrite_http_rate_limited_total",
		Help: "Requests rejected by a per-user rate limit.",
	})
	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cowrite_http_panics_total",
		Help: "Handler panics recovered.",
	})
)

// idleLimiterTTL is how long an unused per-user limiter is kept.
const idleLimiterTTL = 10 * time.Minute

// UserRateLimiter hands out one token bucket per user.
type UserRateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*userLimiter
	lastGC   time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter allows perMinute requests per user with a burst of the
// same size.
func NewUserRateLimiter(perMinute int) *UserRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &UserRateLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		now:      time.Now,
		limiters: make(map[string]*userLimiter),
	}
}

// Reserve takes a token for key. When none is available it returns false and
// the wait until the next one.
func (l *UserRateLimiter) Reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > idleLimiterTTL {
		for k, ul := range l.limiters {
			if now.Sub(ul.lastSeen) > idleLimiterTTL {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	ul, ok := l.limiters[key]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = ul
	}
	ul.lastSeen = now

	r := ul.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// RateLimit rejects requests above the per-user budget with 429. Requests
// without a user share the client address as key.
func RateLimit(l *UserRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := httputil.GetUserID(r)
			if key == "" {
				key = "addr:" + r.RemoteAddr
			}
			ok, wait := l.Reserve(key)
			if !ok {
				rateLimitedTotal.Inc()
				retry := int(math.Ceil(wait.Seconds()))
				logger.Info("rate limited",
					"key", key,
					"path", r.URL.Path,
					"retry_after_seconds", retry,
				)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				httputil.RespondErrorWithExtras(w, http.StatusTooManyRequests, "too many requests", map[string]any{
					"retryAfter": retry,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
