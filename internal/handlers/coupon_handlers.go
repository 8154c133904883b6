package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rewardbase/internal/common"
	"rewardbase/internal/models"
	"rewardbase/internal/repositories"
	"rewardbase/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// CouponHandlers handles coupon management for the admin dashboard.
type CouponHandlers struct {
	couponRepo   repositories.CouponRepository
	authzService services.AuthzService
}

func NewCouponHandlers(couponRepo repositories.CouponRepository, authzService services.AuthzService) *CouponHandlers {
	return &CouponHandlers{
		couponRepo:   couponRepo,
		authzService: authzService,
	}
}

// CouponRequest represents the coupon create/update payload
type CouponRequest struct {
	Code      string     `json:"code" validate:"required"`
	Discount  float64    `json:"discount"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Create handles coupon creation
func (h *CouponHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}

	var req CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Code, "code"); err != nil {
		return common.SendValidationError(c, "code", err.Error())
	}
	if req.Discount <= 0 || req.Discount > 100 {
		return common.SendValidationError(c, "discount", "discount must be between 0 and 100")
	}
	if req.MaxUses < 0 {
		return common.SendValidationError(c, "max_uses", "max_uses cannot be negative")
	}

	coupon := &models.Coupon{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Discount:    req.Discount,
		MaxUses:     req.MaxUses,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := h.couponRepo.Create(ctx, coupon); err != nil {
		if repositories.IsUniqueViolation(err) {
			return common.SendConflict(c, "A coupon with this code already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create coupon")
	}
	return c.JSON(http.StatusCreated, coupon)
}

// Get handles getting a coupon by ID
func (h *CouponHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid coupon ID")
	}

	coupon, err := h.couponRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "coupon")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get coupon")
	}
	return c.JSON(http.StatusOK, coupon)
}

// Delete handles coupon deletion
func (h *CouponHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid coupon ID")
	}

	if err := h.couponRepo.Delete(ctx, workspaceID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete coupon")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Coupon deleted",
	})
}

// List handles listing coupons with pagination
func (h *CouponHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	coupons, err := h.couponRepo.List(ctx, workspaceID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list coupons")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"coupons": coupons,
		"limit":   limit,
		"offset":  offset,
	})
}
