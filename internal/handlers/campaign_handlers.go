package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"rewardbase/internal/common"
	"rewardbase/internal/models"
	"rewardbase/internal/repositories"
	"rewardbase/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// CampaignHandlers handles reward campaign management for the admin dashboard.
type CampaignHandlers struct {
	campaignRepo repositories.CampaignRepository
	authzService services.AuthzService
}

func NewCampaignHandlers(campaignRepo repositories.CampaignRepository, authzService services.AuthzService) *CampaignHandlers {
	return &CampaignHandlers{
		campaignRepo: campaignRepo,
		authzService: authzService,
	}
}

// CampaignRequest represents the campaign create/update payload
type CampaignRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Create handles campaign creation
func (h *CampaignHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}

	var req CampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.Status == "" {
		req.Status = "draft"
	}

	campaign := &models.Campaign{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := h.campaignRepo.Create(ctx, campaign); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create campaign")
	}
	return c.JSON(http.StatusCreated, campaign)
}

// Get handles getting a campaign by ID
func (h *CampaignHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	campaign, err := h.campaignRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "campaign")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get campaign")
	}
	return c.JSON(http.StatusOK, campaign)
}

// Update handles campaign updates
func (h *CampaignHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	var req CampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	campaign, err := h.campaignRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "campaign")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get campaign")
	}

	campaign.Name = req.Name
	campaign.Description = req.Description
	if req.Status != "" {
		campaign.Status = req.Status
	}
	campaign.StartsAt = req.StartsAt
	campaign.EndsAt = req.EndsAt

	if err := h.campaignRepo.Update(ctx, campaign); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update campaign")
	}
	return c.JSON(http.StatusOK, campaign)
}

// Delete handles campaign deletion
func (h *CampaignHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid campaign ID")
	}

	if err := h.campaignRepo.Delete(ctx, workspaceID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete campaign")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Campaign deleted",
	})
}

// List handles listing campaigns with pagination
func (h *CampaignHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	campaigns, err := h.campaignRepo.List(ctx, workspaceID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list campaigns")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"campaigns": campaigns,
		"limit":     limit,
		"offset":    offset,
	})
}
