package repositories

import (
	"context"

	"rewardbase/internal/models"

	"github.com/google/uuid"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Coupon, error)
}

type couponRepo struct {
	db Database
}

func NewCouponRepo(db Database) CouponRepository {
	return &couponRepo{db: db}
}

func (r *couponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (id, workspace_id, code, discount, max_uses, uses, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, coupon.ID, coupon.WorkspaceID, coupon.Code, coupon.Discount, coupon.MaxUses, coupon.Uses, coupon.ExpiresAt)
	return err
}

func (r *couponRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Coupon, error) {
	c := &models.Coupon{}
	query := `
		SELECT id, workspace_id, code, discount, max_uses, uses, expires_at, created_at, updated_at
		FROM coupons
		WHERE workspace_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, workspaceID, id).Scan(&c.ID, &c.WorkspaceID, &c.Code, &c.Discount, &c.MaxUses, &c.Uses, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *couponRepo) Update(ctx context.Context, coupon *models.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $1, discount = $2, max_uses = $3, uses = $4, expires_at = $5, updated_at = NOW()
		WHERE workspace_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, coupon.Code, coupon.Discount, coupon.MaxUses, coupon.Uses, coupon.ExpiresAt, coupon.WorkspaceID, coupon.ID)
	return err
}

func (r *couponRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := `DELETE FROM coupons WHERE workspace_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, workspaceID, id)
	return err
}

func (r *couponRepo) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Coupon, error) {
	query := `
		SELECT id, workspace_id, code, discount, max_uses, uses, expires_at, created_at, updated_at
		FROM coupons
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []*models.Coupon
	for rows.Next() {
		c := &models.Coupon{}
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Code, &c.Discount, &c.MaxUses, &c.Uses, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, nil
}
