package services

import (
	"context"
	"fmt"

	"rewardbase/internal/models"
	"rewardbase/internal/repositories"

	"github.com/google/uuid"
)

// AuthzDecision is the result of the internal authorization lookup: the
// resolved workspace and the caller's normalized roles in it. Empty roles
// means "no access", never an error.
type AuthzDecision struct {
	WorkspaceID uuid.UUID     `json:"workspace_id"`
	Slug        string        `json:"slug"`
	Roles       []models.Role `json:"roles"`
}

// Privileged reports whether the decision carries an owner or admin role.
func (d *AuthzDecision) Privileged() bool {
	for _, r := range d.Roles {
		if r.Privileged() {
			return true
		}
	}
	return false
}

// AuthzService resolves the roles a user holds in a workspace. Roles are
// re-resolved per request and never trusted from the session token.
type AuthzService interface {
	// ResolveRoles returns the normalized role set, or the empty set when
	// the user has no membership or an unconfirmed one.
	ResolveRoles(ctx context.Context, userID, workspaceID uuid.UUID) ([]models.Role, error)

	// Check resolves a slug and the caller's roles in one call; used by the
	// request gate and exposed as the authorization check endpoint.
	Check(ctx context.Context, userID uuid.UUID, slug string) (*AuthzDecision, error)
}

type authzService struct {
	tenantSvc      TenantService
	membershipRepo repositories.MembershipRepository
}

func NewAuthzService(tenantSvc TenantService, membershipRepo repositories.MembershipRepository) AuthzService {
	return &authzService{
		tenantSvc:      tenantSvc,
		membershipRepo: membershipRepo,
	}
}

const membershipPageSize = 100

func (s *authzService) ResolveRoles(ctx context.Context, userID, workspaceID uuid.UUID) ([]models.Role, error) {
	offset := 0
	for {
		memberships, err := s.membershipRepo.ListByWorkspace(ctx, workspaceID, membershipPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("membership lookup failed: %v", err)
		}
		for _, m := range memberships {
			if m.UserID != userID {
				continue
			}
			if !m.Confirmed {
				return []models.Role{}, nil
			}
			roles := make([]models.Role, 0, len(m.Roles))
			for _, label := range m.Roles {
				roles = append(roles, models.ParseRole(label))
			}
			return roles, nil
		}
		if len(memberships) < membershipPageSize {
			return []models.Role{}, nil
		}
		offset += membershipPageSize
	}
}

func (s *authzService) Check(ctx context.Context, userID uuid.UUID, slug string) (*AuthzDecision, error) {
	tenant, err := s.tenantSvc.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		// Unknown tenant reads as "no access", same as no membership.
		return &AuthzDecision{Slug: slug, Roles: []models.Role{}}, nil
	}

	roles, err := s.ResolveRoles(ctx, userID, tenant.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return &AuthzDecision{
		WorkspaceID: tenant.WorkspaceID,
		Slug:        tenant.Slug,
		Roles:       roles,
	}, nil
}
