package services

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"
	"time"

	"rewardbase/internal/models"
	"rewardbase/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MutationOutcome reports a membership mutation. Duplicate adds and invites
// come back as success with a Note instead of an error. InviteSecret is set
// only when a pending invitation was issued; it is sent to the invitee
// out-of-band and never stored in the clear.
type MutationOutcome struct {
	Membership   *models.Membership `json:"membership"`
	Note         string             `json:"note,omitempty"`
	InviteSecret string             `json:"-"`
}

// MembershipService mutates workspace memberships. All operations are
// idempotent or conflict-safe; the backing unique constraint serializes
// concurrent duplicates.
type MembershipService interface {
	Invite(ctx context.Context, workspaceID uuid.UUID, email string, roles []models.Role) (*MutationOutcome, error)
	AddExisting(ctx context.Context, workspaceID uuid.UUID, email string, roles []models.Role) (*MutationOutcome, error)
	// Remove deletes a membership. The workspace scope is enforced here:
	// memberships of other workspaces read as not found.
	Remove(ctx context.Context, workspaceID, membershipID uuid.UUID) error
	// ConfirmInvite returns the workspace's slug so the caller can set the
	// active-tenant cookie.
	ConfirmInvite(ctx context.Context, membershipID, userID uuid.UUID, secret string) (string, error)
	List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Membership, error)
}

type membershipService struct {
	userRepo       repositories.UserRepository
	membershipRepo repositories.MembershipRepository
	tenantRepo     repositories.TenantRepository
}

func NewMembershipService(userRepo repositories.UserRepository, membershipRepo repositories.MembershipRepository, tenantRepo repositories.TenantRepository) MembershipService {
	return &membershipService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		tenantRepo:     tenantRepo,
	}
}

// Invite adds a registered identity directly; for unknown emails it creates
// an invited user stub and a pending membership the invitee confirms later.
func (s *membershipService) Invite(ctx context.Context, workspaceID uuid.UUID, email string, roles []models.Role) (*MutationOutcome, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user lookup failed: %v", err)
	}

	if user != nil && user.Status == models.UserStatusActive {
		return s.AddExisting(ctx, workspaceID, email, roles)
	}

	if user == nil {
		user = &models.User{
			ID:     uuid.New(),
			Email:  email,
			Status: models.UserStatusInvited,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create invited user: %v", err)
		}
	}

	secret := generateSecureToken()
	secretHash := hashToken(secret)
	now := time.Now()
	membership := &models.Membership{
		ID:               uuid.New(),
		UserID:           user.ID,
		WorkspaceID:      workspaceID,
		Roles:            normalizeRoles(roles),
		Confirmed:        false,
		InviteSecretHash: &secretHash,
		InvitedAt:        &now,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		if repositories.IsUniqueViolation(err) {
			existing, lookupErr := s.membershipRepo.GetByUserAndWorkspace(ctx, user.ID, workspaceID)
			if lookupErr != nil {
				return nil, fmt.Errorf("membership lookup failed: %v", lookupErr)
			}
			return &MutationOutcome{Membership: existing, Note: "an invitation for this email already exists"}, nil
		}
		return nil, fmt.Errorf("failed to create invitation: %v", err)
	}

	return &MutationOutcome{Membership: membership, InviteSecret: secret}, nil
}

// AddExisting adds a registered identity with a confirmed membership. A
// confirmed membership in a different workspace is rejected; one in the same
// workspace is reported as a friendly note.
func (s *membershipService) AddExisting(ctx context.Context, workspaceID uuid.UUID, email string, roles []models.Role) (*MutationOutcome, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmailNotRegistered
		}
		return nil, fmt.Errorf("user lookup failed: %v", err)
	}
	// Invited stubs have no credentials yet; they go through the
	// invitation confirmation flow, never a direct add.
	if user.Status != models.UserStatusActive {
		return nil, ErrEmailNotRegistered
	}

	confirmed, err := s.membershipRepo.GetConfirmedByUser(ctx, user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("membership lookup failed: %v", err)
	}
	if confirmed != nil {
		if confirmed.WorkspaceID != workspaceID {
			return nil, ErrWorkspaceConflict
		}
		return &MutationOutcome{Membership: confirmed, Note: "user is already a member of this workspace"}, nil
	}

	membership := &models.Membership{
		ID:          uuid.New(),
		UserID:      user.ID,
		WorkspaceID: workspaceID,
		Roles:       normalizeRoles(roles),
		Confirmed:   true,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		if repositories.IsUniqueViolation(err) {
			existing, lookupErr := s.membershipRepo.GetByUserAndWorkspace(ctx, user.ID, workspaceID)
			if lookupErr != nil {
				return nil, fmt.Errorf("membership lookup failed: %v", lookupErr)
			}
			return &MutationOutcome{Membership: existing, Note: "user is already a member of this workspace"}, nil
		}
		return nil, fmt.Errorf("failed to add member: %v", err)
	}

	return &MutationOutcome{Membership: membership}, nil
}

func (s *membershipService) Remove(ctx context.Context, workspaceID, membershipID uuid.UUID) error {
	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("membership lookup failed: %v", err)
	}
	if membership.WorkspaceID != workspaceID {
		return ErrNotFound
	}

	if _, err := s.tenantRepo.GetByWorkspaceID(ctx, membership.WorkspaceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("workspace lookup failed: %v", err)
	}

	return s.membershipRepo.Delete(ctx, membershipID)
}

func (s *membershipService) ConfirmInvite(ctx context.Context, membershipID, userID uuid.UUID, secret string) (string, error) {
	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("membership lookup failed: %v", err)
	}

	// The secret only counts for the identity it was issued to.
	if membership.UserID != userID {
		return "", ErrInvalidSecret
	}

	tenant, err := s.tenantRepo.GetByWorkspaceID(ctx, membership.WorkspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("workspace lookup failed: %v", err)
	}

	if membership.Confirmed {
		return tenant.Slug, nil
	}

	if membership.InviteSecretHash == nil || !hmac.Equal([]byte(*membership.InviteSecretHash), []byte(hashToken(secret))) {
		return "", ErrInvalidSecret
	}

	// Confirming a second workspace would break the one-active-workspace
	// invariant; pending invitations elsewhere stay allowed until this point.
	confirmed, err := s.membershipRepo.GetConfirmedByUser(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("membership lookup failed: %v", err)
	}
	if confirmed != nil && confirmed.WorkspaceID != membership.WorkspaceID {
		return "", ErrWorkspaceConflict
	}

	if err := s.membershipRepo.Confirm(ctx, membershipID); err != nil {
		return "", fmt.Errorf("failed to confirm membership: %v", err)
	}

	return tenant.Slug, nil
}

func (s *membershipService) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Membership, error) {
	return s.membershipRepo.ListByWorkspace(ctx, workspaceID, limit, offset)
}

// normalizeRoles lower-cases incoming labels through the closed enum,
// defaulting to member when nothing usable was supplied.
func normalizeRoles(roles []models.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r == models.RoleUnknown || r == "" {
			continue
		}
		out = append(out, string(r))
	}
	if len(out) == 0 {
		out = []string{string(models.RoleMember)}
	}
	return out
}
