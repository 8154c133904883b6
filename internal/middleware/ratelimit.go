package middleware

import (
	"net/http"

	"rewardbase/internal/common"
	"rewardbase/internal/services"

	"github.com/labstack/echo/v4"
)

// RateLimit applies the fixed-window limiter keyed by caller identity:
// the authenticated user when known, otherwise the client IP.
func RateLimit(limiter *services.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
				key = userID.String()
			}

			allowed, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Rate limiter unavailable")
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}
			return next(c)
		}
	}
}
