package api

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once the token bucket is empty.
// A non-positive limit disables limiting.
func RateLimit(limit rate.Limit, burst int) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(limit, burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if !lim.Allow() {
				return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many requests")
			}
			return next(c)
		}
	}
}
