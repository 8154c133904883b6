package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"rewardbase/internal/common"
	"rewardbase/internal/models"
	"rewardbase/internal/repositories"
	"rewardbase/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// TierHandlers handles reward tier management for the admin dashboard.
type TierHandlers struct {
	tierRepo     repositories.TierRepository
	authzService services.AuthzService
}

func NewTierHandlers(tierRepo repositories.TierRepository, authzService services.AuthzService) *TierHandlers {
	return &TierHandlers{
		tierRepo:     tierRepo,
		authzService: authzService,
	}
}

// TierRequest represents the tier create/update payload
type TierRequest struct {
	Name      string  `json:"name" validate:"required"`
	MinPoints int     `json:"min_points"`
	Perks     *string `json:"perks"`
}

// Create handles tier creation
func (h *TierHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}

	var req TierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.MinPoints < 0 {
		return common.SendValidationError(c, "min_points", "min_points cannot be negative")
	}

	tier := &models.Tier{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		MinPoints:   req.MinPoints,
		Perks:       req.Perks,
	}
	if err := h.tierRepo.Create(ctx, tier); err != nil {
		if repositories.IsUniqueViolation(err) {
			return common.SendConflict(c, "A tier with this name already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create tier")
	}
	return c.JSON(http.StatusCreated, tier)
}

// Update handles tier updates
func (h *TierHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tier ID")
	}

	var req TierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.MinPoints < 0 {
		return common.SendValidationError(c, "min_points", "min_points cannot be negative")
	}

	tier, err := h.tierRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "tier")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get tier")
	}

	tier.Name = req.Name
	tier.MinPoints = req.MinPoints
	tier.Perks = req.Perks

	if err := h.tierRepo.Update(ctx, tier); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update tier")
	}
	return c.JSON(http.StatusOK, tier)
}

// Delete handles tier deletion
func (h *TierHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tier ID")
	}

	if err := h.tierRepo.Delete(ctx, workspaceID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete tier")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Tier deleted",
	})
}

// List returns the workspace's tiers ordered by points threshold
func (h *TierHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	tiers, err := h.tierRepo.List(ctx, workspaceID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tiers")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tiers":  tiers,
		"limit":  limit,
		"offset": offset,
	})
}
