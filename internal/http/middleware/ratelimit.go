package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/shoplens/shoplens/internal/httputil"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
					"user_agent", r.UserAgent(),
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// CreateRateLimiters builds the per-surface limiters. Auth endpoints get a
// tighter limit than the general API; sync is tightest because each request
// fans out to the remote platform.
func CreateRateLimiters(requests int, window time.Duration, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	return map[string]func(http.Handler) http.Handler{
		"api": RateLimit(RateLimitConfig{
			Requests: requests,
			Window:   window,
			Logger:   logger,
		}),
		"auth": RateLimit(RateLimitConfig{
			Requests: atLeastOne(requests / 5),
			Window:   window,
			Logger:   logger,
		}),
		"sync": RateLimit(RateLimitConfig{
			Requests: atLeastOne(requests / 10),
			Window:   window,
			Logger:   logger,
		}),
	}
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
