package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"rewardbase/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Event types the payment processor posts. Anything else is acknowledged
// and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// WebhookEvent is a signed event from the payment processor.
type WebhookEvent struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data"`
	Created int64                  `json:"created"`
}

// BillingService verifies and applies payment-processor webhook events.
type BillingService interface {
	VerifySignature(body []byte, signature string) bool
	ParseEvent(body []byte) (*WebhookEvent, error)
	// HandleEvent applies the event. Unknown event types and unknown
	// customer references are no-ops, not errors.
	HandleEvent(ctx context.Context, event *WebhookEvent) error

	// SubscriptionStatus reports whether a workspace has an active premium
	// subscription. Workspaces with no billing record are simply not premium.
	SubscriptionStatus(ctx context.Context, workspaceID uuid.UUID) (bool, error)
}

type billingService struct {
	webhookSecret  string
	subscriberRepo repositories.SubscriberRepository
}

func NewBillingService(webhookSecret string, subscriberRepo repositories.SubscriberRepository) BillingService {
	return &billingService{
		webhookSecret:  webhookSecret,
		subscriberRepo: subscriberRepo,
	}
}

// VerifySignature checks the HMAC-SHA256 of the raw body. Constant time
// comparison to prevent timing attacks.
func (s *billingService) VerifySignature(body []byte, signature string) bool {
	hash := hmac.New(sha256.New, []byte(s.webhookSecret))
	hash.Write(body)
	expected := hex.EncodeToString(hash.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (s *billingService) ParseEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %v", err)
	}
	return &event, nil
}

func (s *billingService) HandleEvent(ctx context.Context, event *WebhookEvent) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	default:
		return nil
	}
}

func (s *billingService) handleCheckoutCompleted(ctx context.Context, event *WebhookEvent) error {
	customerRef, ok := event.Data["customer_ref"].(string)
	if !ok || customerRef == "" {
		return nil // no customer reference to apply
	}
	paymentStatus, _ := event.Data["payment_status"].(string)

	subscriber, err := s.subscriberRepo.GetByCustomerRef(ctx, customerRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("WARN: checkout event %s for unknown customer %s", event.ID, customerRef)
			return nil
		}
		return fmt.Errorf("subscriber lookup failed: %v", err)
	}

	return s.subscriberRepo.SetPremium(ctx, subscriber.ID, paymentStatus == "paid")
}

func (s *billingService) SubscriptionStatus(ctx context.Context, workspaceID uuid.UUID) (bool, error) {
	subscriber, err := s.subscriberRepo.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("subscriber lookup failed: %v", err)
	}
	return subscriber.Premium, nil
}
