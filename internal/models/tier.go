package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a reward tier within a workspace, ordered by MinPoints.
type Tier struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	MinPoints   int       `json:"min_points" db:"min_points"`
	Perks       *string   `json:"perks" db:"perks"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
