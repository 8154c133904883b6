package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber links a workspace to its billing customer record at the payment
// processor. Premium is flipped by the billing webhook.
type Subscriber struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	CustomerRef string    `json:"customer_ref" db:"customer_ref"`
	Email       string    `json:"email" db:"email"`
	Premium     bool      `json:"premium" db:"premium"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
