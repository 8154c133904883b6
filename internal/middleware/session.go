package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rewardbase/internal/common"
	"rewardbase/internal/repositories"
	"rewardbase/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// RequireSession authenticates API requests from either the Authorization
// header or the session cookie, and attaches the user's id plus the
// workspace of their confirmed membership (if any) to the request context.
func RequireSession(authSvc services.AuthService, membershipRepo repositories.MembershipRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				result := common.ReadSessionCookie(c.Request())
				if result.State != common.StateSession {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
				}
				token = result.Token
			}

			userID, err := authSvc.ValidateSessionToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)

			membership, err := membershipRepo.GetConfirmedByUser(ctx, userID)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return echo.NewHTTPError(http.StatusInternalServerError, "Membership lookup failed")
			}
			if membership != nil {
				ctx = context.WithValue(ctx, common.WorkspaceIDKey, membership.WorkspaceID)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return token
}
