package repositories

import (
	"context"

	"rewardbase/internal/models"

	"github.com/google/uuid"
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Campaign, error)
}

type campaignRepo struct {
	db Database
}

func NewCampaignRepo(db Database) CampaignRepository {
	return &campaignRepo{db: db}
}

func (r *campaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, workspace_id, name, description, status, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, campaign.ID, campaign.WorkspaceID, campaign.Name, campaign.Description, campaign.Status, campaign.StartsAt, campaign.EndsAt)
	return err
}

func (r *campaignRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Campaign, error) {
	c := &models.Campaign{}
	query := `
		SELECT id, workspace_id, name, description, status, starts_at, ends_at, created_at, updated_at
		FROM campaigns
		WHERE workspace_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, workspaceID, id).Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Description, &c.Status, &c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *campaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $1, description = $2, status = $3, starts_at = $4, ends_at = $5, updated_at = NOW()
		WHERE workspace_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, campaign.Name, campaign.Description, campaign.Status, campaign.StartsAt, campaign.EndsAt, campaign.WorkspaceID, campaign.ID)
	return err
}

func (r *campaignRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := `DELETE FROM campaigns WHERE workspace_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, workspaceID, id)
	return err
}

func (r *campaignRepo) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	query := `
		SELECT id, workspace_id, name, description, status, starts_at, ends_at, created_at, updated_at
		FROM campaigns
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c := &models.Campaign{}
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Description, &c.Status, &c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}
