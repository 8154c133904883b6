package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rewardbase/internal/common"
	"rewardbase/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	brandingBucket  = "tenant-branding"
	maxLogoSize     = 2 << 20 // 2 MiB
	presignedExpiry = 24 * time.Hour
)

// TenantHandlers handles team creation, tenant resolution and branding.
type TenantHandlers struct {
	tenantService  services.TenantService
	authzService   services.AuthzService
	storageService services.StorageService
}

func NewTenantHandlers(tenantService services.TenantService, authzService services.AuthzService, storageService services.StorageService) *TenantHandlers {
	return &TenantHandlers{
		tenantService:  tenantService,
		authzService:   authzService,
		storageService: storageService,
	}
}

// CreateTeamRequest represents the team creation payload
type CreateTeamRequest struct {
	Slug string `json:"slug" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// CreateTeam creates a tenant with the caller as owner and remembers it as
// the active tenant
func (h *TenantHandlers) CreateTeam(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	tenant, err := h.tenantService.CreateTeam(ctx, userID, req.Slug, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSlugTaken):
			return common.SendConflict(c, "Slug is already taken")
		case errors.Is(err, services.ErrWorkspaceConflict):
			return common.SendConflict(c, "You already belong to a workspace")
		default:
			return common.SendClientError(c, err.Error())
		}
	}

	common.WriteActiveTenantCookie(c, tenant.Slug)
	return c.JSON(http.StatusCreated, tenant)
}

// Resolve returns the tenant's public attributes for a slug
func (h *TenantHandlers) Resolve(c echo.Context) error {
	ctx := c.Request().Context()

	slug := c.Param("slug")
	tenant, err := h.tenantService.Resolve(ctx, slug)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Tenant lookup failed")
	}
	if tenant == nil {
		return common.SendNotFoundError(c, "tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

// List returns a page of tenants for the workspace picker
func (h *TenantHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	tenants, err := h.tenantService.List(ctx, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tenants")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   limit,
		"offset":  offset,
	})
}

// UpdateBrandingRequest represents the branding update payload
type UpdateBrandingRequest struct {
	Name       string  `json:"name" validate:"required"`
	LogoURL    *string `json:"logo_url"`
	ThemeColor *string `json:"theme_color"`
}

// UpdateBranding updates the tenant's display name, logo and theme. The slug
// is immutable and not part of the payload.
func (h *TenantHandlers) UpdateBranding(c echo.Context) error {
	ctx := c.Request().Context()

	workspaceID, ok := common.GetWorkspaceIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "No active workspace")
	}
	if err := h.requirePrivileged(c); err != nil {
		return err
	}

	var req UpdateBrandingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	if err := h.tenantService.UpdateBranding(ctx, workspaceID, req.Name, req.LogoURL, req.ThemeColor); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update branding")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Branding updated",
	})
}

// UploadLogo stores a logo in object storage and returns a presigned URL
func (h *TenantHandlers) UploadLogo(c echo.Context) error {
	ctx := c.Request().Context()

	workspaceID, ok := common.GetWorkspaceIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "No active workspace")
	}
	if err := h.requirePrivileged(c); err != nil {
		return err
	}
	if h.storageService == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Object storage not configured")
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "logo file is required")
	}
	if fileHeader.Size > maxLogoSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Logo must be 2MB or smaller")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	switch contentType {
	case "image/png", "image/jpeg", "image/svg+xml", "image/webp":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported logo content type")
	}

	if err := h.storageService.EnsureBucketExists(ctx, brandingBucket); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to prepare storage")
	}

	objectName := fmt.Sprintf("logos/%s", workspaceID)
	if err := h.storageService.UploadAsset(ctx, brandingBucket, objectName, contentType, src, fileHeader.Size); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store logo")
	}

	url, err := h.storageService.GetPresignedURL(brandingBucket, objectName, presignedExpiry)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate logo URL")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"logo_url": url,
	})
}

func (h *TenantHandlers) requirePrivileged(c echo.Context) error {
	_, _, err := privilegedScope(c, h.authzService)
	return err
}
