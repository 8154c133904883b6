package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"rewardbase/internal/models"
	"rewardbase/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Sentinel errors shared by the tenant and membership services.
var (
	ErrNotFound           = errors.New("not found")
	ErrSlugTaken          = errors.New("slug already taken")
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrWorkspaceConflict  = errors.New("user already belongs to a different workspace")
	ErrInvalidSecret      = errors.New("invite secret does not match")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,38}[a-z0-9])?$`)

// TenantInfo is the resolver's view of a tenant: the internal workspace id
// plus public customization attributes.
type TenantInfo struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	LogoURL     *string   `json:"logo_url"`
	ThemeColor  *string   `json:"theme_color"`
}

type TenantService interface {
	// Resolve maps a public slug to its workspace. An unknown slug returns
	// (nil, nil): NotFound is a normal outcome, not a fault.
	Resolve(ctx context.Context, slug string) (*TenantInfo, error)

	// CreateTeam creates the tenant and grants the creator a confirmed
	// owner membership. The slug is immutable afterwards.
	CreateTeam(ctx context.Context, creatorID uuid.UUID, slug, name string) (*models.Tenant, error)

	UpdateBranding(ctx context.Context, workspaceID uuid.UUID, name string, logoURL, themeColor *string) error

	// List pages through tenants, newest first, for the workspace picker.
	List(ctx context.Context, limit, offset int) ([]*TenantInfo, error)
}

type tenantService struct {
	tenantRepo     repositories.TenantRepository
	membershipRepo repositories.MembershipRepository
	subscriberRepo repositories.SubscriberRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository, membershipRepo repositories.MembershipRepository, subscriberRepo repositories.SubscriberRepository) TenantService {
	return &tenantService{
		tenantRepo:     tenantRepo,
		membershipRepo: membershipRepo,
		subscriberRepo: subscriberRepo,
	}
}

func (s *tenantService) Resolve(ctx context.Context, slug string) (*TenantInfo, error) {
	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("tenant lookup failed: %v", err)
	}
	return &TenantInfo{
		WorkspaceID: tenant.WorkspaceID,
		Slug:        tenant.Slug,
		Name:        tenant.Name,
		LogoURL:     tenant.LogoURL,
		ThemeColor:  tenant.ThemeColor,
	}, nil
}

func (s *tenantService) CreateTeam(ctx context.Context, creatorID uuid.UUID, slug, name string) (*models.Tenant, error) {
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("slug must be 1-40 lower-case letters, digits or hyphens")
	}

	// Creating a team makes the creator its owner, so the isolation
	// invariant applies here too.
	existing, err := s.membershipRepo.GetConfirmedByUser(ctx, creatorID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("membership lookup failed: %v", err)
	}
	if existing != nil {
		return nil, ErrWorkspaceConflict
	}

	tenant := &models.Tenant{
		ID:          uuid.New(),
		Slug:        slug,
		WorkspaceID: uuid.New(),
		Name:        name,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create tenant: %v", err)
	}

	ownerMembership := &models.Membership{
		ID:          uuid.New(),
		UserID:      creatorID,
		WorkspaceID: tenant.WorkspaceID,
		Roles:       []string{string(models.RoleOwner)},
		Confirmed:   true,
	}
	if err := s.membershipRepo.Create(ctx, ownerMembership); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %v", err)
	}

	// Every workspace starts on the free plan. The customer ref is what the
	// checkout session carries, so billing webhooks can find their way back.
	subscriber := &models.Subscriber{
		ID:          uuid.New(),
		WorkspaceID: tenant.WorkspaceID,
		CustomerRef: fmt.Sprintf("ws_%s", tenant.WorkspaceID),
		Premium:     false,
	}
	if err := s.subscriberRepo.Create(ctx, subscriber); err != nil {
		return nil, fmt.Errorf("failed to provision billing record: %v", err)
	}

	return tenant, nil
}

func (s *tenantService) UpdateBranding(ctx context.Context, workspaceID uuid.UUID, name string, logoURL, themeColor *string) error {
	return s.tenantRepo.UpdateBranding(ctx, workspaceID, name, logoURL, themeColor)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*TenantInfo, error) {
	tenants, err := s.tenantRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("tenant listing failed: %v", err)
	}
	infos := make([]*TenantInfo, 0, len(tenants))
	for _, tenant := range tenants {
		infos = append(infos, &TenantInfo{
			WorkspaceID: tenant.WorkspaceID,
			Slug:        tenant.Slug,
			Name:        tenant.Name,
			LogoURL:     tenant.LogoURL,
			ThemeColor:  tenant.ThemeColor,
		})
	}
	return infos, nil
}
