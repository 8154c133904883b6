package models

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id" db:"workspace_id"`
	Code        string     `json:"code" db:"code"`
	Discount    float64    `json:"discount" db:"discount"`
	MaxUses     int        `json:"max_uses" db:"max_uses"`
	Uses        int        `json:"uses" db:"uses"`
	ExpiresAt   *time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
