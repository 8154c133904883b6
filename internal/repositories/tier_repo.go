package repositories

import (
	"context"

	"rewardbase/internal/models"

	"github.com/google/uuid"
)

type TierRepository interface {
	Create(ctx context.Context, tier *models.Tier) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Tier, error)
	Update(ctx context.Context, tier *models.Tier) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Tier, error)
}

type tierRepo struct {
	db Database
}

func NewTierRepo(db Database) TierRepository {
	return &tierRepo{db: db}
}

func (r *tierRepo) Create(ctx context.Context, tier *models.Tier) error {
	query := `
		INSERT INTO tiers (id, workspace_id, name, min_points, perks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tier.ID, tier.WorkspaceID, tier.Name, tier.MinPoints, tier.Perks)
	return err
}

func (r *tierRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Tier, error) {
	t := &models.Tier{}
	query := `
		SELECT id, workspace_id, name, min_points, perks, created_at, updated_at
		FROM tiers
		WHERE workspace_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, workspaceID, id).Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.MinPoints, &t.Perks, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tierRepo) Update(ctx context.Context, tier *models.Tier) error {
	query := `
		UPDATE tiers
		SET name = $1, min_points = $2, perks = $3, updated_at = NOW()
		WHERE workspace_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, tier.Name, tier.MinPoints, tier.Perks, tier.WorkspaceID, tier.ID)
	return err
}

func (r *tierRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := `DELETE FROM tiers WHERE workspace_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, workspaceID, id)
	return err
}

func (r *tierRepo) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Tier, error) {
	query := `
		SELECT id, workspace_id, name, min_points, perks, created_at, updated_at
		FROM tiers
		WHERE workspace_id = $1
		ORDER BY min_points ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []*models.Tier
	for rows.Next() {
		t := &models.Tier{}
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.MinPoints, &t.Perks, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}
