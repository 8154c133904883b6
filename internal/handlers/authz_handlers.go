package handlers

import (
	"net/http"

	"rewardbase/internal/common"
	"rewardbase/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthzHandlers exposes the internal authorization check used by sibling
// services and the portal frontend.
type AuthzHandlers struct {
	authzService services.AuthzService
}

func NewAuthzHandlers(authzService services.AuthzService) *AuthzHandlers {
	return &AuthzHandlers{authzService: authzService}
}

// Check resolves the caller's roles for a tenant slug. No access comes back
// as an empty role set with status 200; only resolver faults are errors.
func (h *AuthzHandlers) Check(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	slug := c.QueryParam("slug")
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant slug is required")
	}

	decision, err := h.authzService.Check(ctx, userID, slug)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authorization check failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workspace_id": decision.WorkspaceID,
		"slug":         decision.Slug,
		"roles":        decision.Roles,
		"privileged":   decision.Privileged(),
	})
}
