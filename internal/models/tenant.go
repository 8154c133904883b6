package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a customer workspace. The slug is the public-facing identifier
// and is immutable once created; WorkspaceID is the internal opaque id that
// memberships reference.
type Tenant struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	LogoURL     *string   `json:"logo_url" db:"logo_url"`
	ThemeColor  *string   `json:"theme_color" db:"theme_color"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
