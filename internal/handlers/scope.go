package handlers

import (
	"net/http"

	"rewardbase/internal/common"
	"rewardbase/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// workspaceScope returns the caller's user id and active workspace, erroring
// when either is missing from the request context.
func workspaceScope(c echo.Context) (userID, workspaceID uuid.UUID, err error) {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	workspaceID, ok = common.GetWorkspaceIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "No active workspace")
	}
	return userID, workspaceID, nil
}

// privilegedScope is workspaceScope plus an owner-or-admin role check.
func privilegedScope(c echo.Context, authzSvc services.AuthzService) (userID, workspaceID uuid.UUID, err error) {
	userID, workspaceID, err = workspaceScope(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	roles, rerr := authzSvc.ResolveRoles(c.Request().Context(), userID, workspaceID)
	if rerr != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusInternalServerError, "Authorization check failed")
	}
	decision := services.AuthzDecision{Roles: roles}
	if !decision.Privileged() {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "Owner or admin role required")
	}
	return userID, workspaceID, nil
}
