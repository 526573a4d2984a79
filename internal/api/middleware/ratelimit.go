package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/igloolab/pharmacy-inventory/internal/api/metrics"
)

// Limiter decides whether one more request for key fits its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// memoryLimiter adapts echo's per-process token bucket store to Limiter.
type memoryLimiter struct {
	store *echomiddleware.RateLimiterMemoryStore
}

// NewMemoryLimiter allows max requests per window and key, refilled evenly.
// State lives in this process only.
func NewMemoryLimiter(max int, window time.Duration) Limiter {
	return &memoryLimiter{
		store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(max) / window.Seconds()),
			Burst:     max,
			ExpiresIn: window,
		}),
	}
}

func (m *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return m.store.Allow(key)
}

// RateLimit rejects requests over the limiter's budget with 429, keyed by
// client IP. Limiter errors let the request through.
func RateLimit(l Limiter, scope string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := l.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}
