package repositories

import (
	"context"

	"rewardbase/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) (*models.Tenant, error)
	UpdateBranding(ctx context.Context, workspaceID uuid.UUID, name string, logoURL, themeColor *string) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, slug, workspace_id, name, logo_url, theme_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Slug, tenant.WorkspaceID, tenant.Name, tenant.LogoURL, tenant.ThemeColor)
	return err
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, slug, workspace_id, name, logo_url, theme_color, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`
	err := r.db.QueryRow(ctx, query, slug).Scan(&tenant.ID, &tenant.Slug, &tenant.WorkspaceID, &tenant.Name, &tenant.LogoURL, &tenant.ThemeColor, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, slug, workspace_id, name, logo_url, theme_color, created_at, updated_at
		FROM tenants
		WHERE workspace_id = $1
	`
	err := r.db.QueryRow(ctx, query, workspaceID).Scan(&tenant.ID, &tenant.Slug, &tenant.WorkspaceID, &tenant.Name, &tenant.LogoURL, &tenant.ThemeColor, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// UpdateBranding never touches the slug; it is immutable once created.
func (r *tenantRepo) UpdateBranding(ctx context.Context, workspaceID uuid.UUID, name string, logoURL, themeColor *string) error {
	query := `
		UPDATE tenants
		SET name = $1, logo_url = $2, theme_color = $3, updated_at = NOW()
		WHERE workspace_id = $4
	`
	_, err := r.db.Exec(ctx, query, name, logoURL, themeColor, workspaceID)
	return err
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT id, slug, workspace_id, name, logo_url, theme_color, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Slug, &tenant.WorkspaceID, &tenant.Name, &tenant.LogoURL, &tenant.ThemeColor, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}
