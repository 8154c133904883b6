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

// TicketHandlers handles support tickets. Any member can open a ticket;
// status changes are for owners and admins.
type TicketHandlers struct {
	ticketRepo   repositories.TicketRepository
	authzService services.AuthzService
}

func NewTicketHandlers(ticketRepo repositories.TicketRepository, authzService services.AuthzService) *TicketHandlers {
	return &TicketHandlers{
		ticketRepo:   ticketRepo,
		authzService: authzService,
	}
}

// TicketRequest represents the ticket creation payload
type TicketRequest struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// Create opens a support ticket for the caller's workspace
func (h *TicketHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}

	var req TicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Subject, "subject"); err != nil {
		return common.SendValidationError(c, "subject", err.Error())
	}
	if err := common.ValidateRequiredString(req.Body, "body"); err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}

	ticket := &models.Ticket{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		OpenedBy:    userID,
		Subject:     req.Subject,
		Body:        req.Body,
		Status:      models.TicketStatusOpen,
	}
	if err := h.ticketRepo.Create(ctx, ticket); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create ticket")
	}
	return c.JSON(http.StatusCreated, ticket)
}

// Get handles getting a ticket by ID
func (h *TicketHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid ticket ID")
	}

	ticket, err := h.ticketRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "ticket")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get ticket")
	}
	return c.JSON(http.StatusOK, ticket)
}

// UpdateStatusRequest represents the ticket status change payload
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves a ticket through its lifecycle
func (h *TicketHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := privilegedScope(c, h.authzService)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid ticket ID")
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	switch req.Status {
	case models.TicketStatusOpen, models.TicketStatusPending, models.TicketStatusResolved, models.TicketStatusClosed:
	default:
		return common.SendValidationError(c, "status", "invalid ticket status")
	}

	if err := h.ticketRepo.UpdateStatus(ctx, workspaceID, id, req.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "ticket")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update ticket")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Ticket updated",
	})
}

// List handles listing tickets with pagination
func (h *TicketHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	tickets, err := h.ticketRepo.List(ctx, workspaceID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tickets")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"limit":   limit,
		"offset":  offset,
	})
}
