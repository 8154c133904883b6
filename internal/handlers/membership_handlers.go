package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"rewardbase/internal/common"
	"rewardbase/internal/models"
	"rewardbase/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MembershipHandlers handles invitations, direct adds, removals and listing
// of workspace members.
type MembershipHandlers struct {
	membershipService services.MembershipService
	authzService      services.AuthzService
}

func NewMembershipHandlers(membershipService services.MembershipService, authzService services.AuthzService) *MembershipHandlers {
	return &MembershipHandlers{
		membershipService: membershipService,
		authzService:      authzService,
	}
}

// MemberRequest represents the invite / add payload
type MemberRequest struct {
	Email string   `json:"email" validate:"required,email"`
	Roles []string `json:"roles"`
}

// Invite invites an email into the caller's workspace. Registered active
// users are added directly; unknown emails get a pending invitation.
func (h *MembershipHandlers) Invite(c echo.Context) error {
	ctx := c.Request().Context()

	workspaceID, err := h.requirePrivileged(c)
	if err != nil {
		return err
	}

	var req MemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateEmail(req.Email); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}

	outcome, err := h.membershipService.Invite(ctx, workspaceID, req.Email, parseRoles(req.Roles))
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(http.StatusCreated, outcome)
}

// AddExisting adds a registered identity to the caller's workspace
func (h *MembershipHandlers) AddExisting(c echo.Context) error {
	ctx := c.Request().Context()

	workspaceID, err := h.requirePrivileged(c)
	if err != nil {
		return err
	}

	var req MemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateEmail(req.Email); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}

	outcome, err := h.membershipService.AddExisting(ctx, workspaceID, req.Email, parseRoles(req.Roles))
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(http.StatusCreated, outcome)
}

// List returns the workspace's members, paginated
func (h *MembershipHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	workspaceID, err := h.requirePrivileged(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	memberships, err := h.membershipService.List(ctx, workspaceID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list members")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"memberships": memberships,
		"limit":       limit,
		"offset":      offset,
	})
}

// Remove deletes a membership from the caller's workspace
func (h *MembershipHandlers) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	workspaceID, err := h.requirePrivileged(c)
	if err != nil {
		return err
	}

	membershipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid membership ID")
	}

	if err := h.membershipService.Remove(ctx, workspaceID, membershipID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "membership")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove member")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Member removed",
	})
}

// ConfirmInviteRequest represents the invite confirmation payload
type ConfirmInviteRequest struct {
	MembershipID string `json:"membership_id" validate:"required"`
	Secret       string `json:"secret" validate:"required"`
}

// ConfirmInvite accepts a pending invitation for the authenticated user and
// remembers the workspace as the active tenant
func (h *MembershipHandlers) ConfirmInvite(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req ConfirmInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	membershipID, err := uuid.Parse(req.MembershipID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid membership ID")
	}
	if req.Secret == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Secret is required")
	}

	slug, err := h.membershipService.ConfirmInvite(ctx, membershipID, userID, req.Secret)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "invitation")
		case errors.Is(err, services.ErrInvalidSecret):
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid invitation secret")
		case errors.Is(err, services.ErrWorkspaceConflict):
			return common.SendConflict(c, "You already belong to a different workspace")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to confirm invitation")
		}
	}

	common.WriteActiveTenantCookie(c, slug)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Invitation accepted",
		"slug":    slug,
	})
}

func (h *MembershipHandlers) mutationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrEmailNotRegistered):
		return common.SendNotFoundError(c, "user")
	case errors.Is(err, services.ErrWorkspaceConflict):
		return common.SendConflict(c, "User already belongs to a different workspace")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Membership mutation failed")
	}
}

// requirePrivileged resolves the caller's workspace and checks for an owner
// or admin role there.
func (h *MembershipHandlers) requirePrivileged(c echo.Context) (uuid.UUID, error) {
	_, workspaceID, err := privilegedScope(c, h.authzService)
	return workspaceID, err
}

func parseRoles(labels []string) []models.Role {
	roles := make([]models.Role, 0, len(labels))
	for _, label := range labels {
		roles = append(roles, models.ParseRole(label))
	}
	return roles
}
