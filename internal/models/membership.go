package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a closed enumeration of workspace role labels. Labels arriving from
// the outside are normalized through ParseRole; anything unrecognized becomes
// RoleUnknown instead of being passed through as a raw string.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleMember  Role = "member"
	RoleUnknown Role = "unknown"
)

// ParseRole normalizes a raw role label. Comparison is case-insensitive.
func ParseRole(label string) Role {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "owner":
		return RoleOwner
	case "admin":
		return RoleAdmin
	case "member", "user":
		return RoleMember
	default:
		return RoleUnknown
	}
}

// Privileged reports whether the role grants tenant-admin access.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Membership binds a user to a workspace with a set of role labels.
// At most one membership exists per (user_id, workspace_id); the unique
// constraint makes duplicate inserts surface as a conflict.
type Membership struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	WorkspaceID      uuid.UUID  `json:"workspace_id" db:"workspace_id"`
	Roles            []string   `json:"roles" db:"roles"`
	Confirmed        bool       `json:"confirmed" db:"confirmed"`
	InviteSecretHash *string    `json:"-" db:"invite_secret_hash"`
	InvitedAt        *time.Time `json:"invited_at" db:"invited_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}
