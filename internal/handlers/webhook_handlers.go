package handlers

import (
	"io"
	"log"
	"net/http"

	"rewardbase/internal/services"

	"github.com/labstack/echo/v4"
)

// SignatureHeader carries the payment processor's HMAC over the raw body.
const SignatureHeader = "X-Billing-Signature"

const maxWebhookBody = 1 << 20 // 1 MiB

// WebhookHandlers receives signed events from the payment processor.
type WebhookHandlers struct {
	billingService services.BillingService
}

func NewWebhookHandlers(billingService services.BillingService) *WebhookHandlers {
	return &WebhookHandlers{billingService: billingService}
}

// HandleBillingEvent verifies the signature against the raw body before any
// parsing, then applies the event. Unknown event types are acknowledged.
func (h *WebhookHandlers) HandleBillingEvent(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}

	signature := c.Request().Header.Get(SignatureHeader)
	if signature == "" || !h.billingService.VerifySignature(body, signature) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook signature")
	}

	event, err := h.billingService.ParseEvent(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook payload")
	}

	if err := h.billingService.HandleEvent(c.Request().Context(), event); err != nil {
		// 5xx signals the processor to retry delivery.
		log.Printf("Failed to apply billing event %s: %v", event.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to apply event")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"received": event.ID,
	})
}

// SubscriptionStatus reports the caller workspace's premium flag
func (h *WebhookHandlers) SubscriptionStatus(c echo.Context) error {
	_, workspaceID, err := workspaceScope(c)
	if err != nil {
		return err
	}

	premium, err := h.billingService.SubscriptionStatus(c.Request().Context(), workspaceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up subscription")
	}
	return c.JSON(http.StatusOK, map[string]bool{
		"premium": premium,
	})
}
