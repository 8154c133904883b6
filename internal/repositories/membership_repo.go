package repositories

import (
	"context"
	"time"

	"rewardbase/internal/models"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*models.Membership, error)
	GetConfirmedByUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Membership, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type membershipRepo struct {
	db Database
}

func NewMembershipRepo(db Database) MembershipRepository {
	return &membershipRepo{db: db}
}

// Create inserts a membership row. The unique constraint on
// (user_id, workspace_id) makes a duplicate surface as a conflict error;
// callers translate that into idempotent success.
func (r *membershipRepo) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO memberships (id, user_id, workspace_id, roles, confirmed, invite_secret_hash, invited_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, membership.ID, membership.UserID, membership.WorkspaceID, membership.Roles, membership.Confirmed, membership.InviteSecretHash, membership.InvitedAt)
	return err
}

func (r *membershipRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	m := &models.Membership{}
	query := `
		SELECT id, user_id, workspace_id, roles, confirmed, invite_secret_hash, invited_at, created_at, updated_at
		FROM memberships
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.Roles, &m.Confirmed, &m.InviteSecretHash, &m.InvitedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepo) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*models.Membership, error) {
	m := &models.Membership{}
	query := `
		SELECT id, user_id, workspace_id, roles, confirmed, invite_secret_hash, invited_at, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND workspace_id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, workspaceID).Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.Roles, &m.Confirmed, &m.InviteSecretHash, &m.InvitedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetConfirmedByUser returns the user's confirmed membership, if any.
// A user holds at most one confirmed membership at a time.
func (r *membershipRepo) GetConfirmedByUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	m := &models.Membership{}
	query := `
		SELECT id, user_id, workspace_id, roles, confirmed, invite_secret_hash, invited_at, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND confirmed = TRUE
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.Roles, &m.Confirmed, &m.InviteSecretHash, &m.InvitedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Membership, error) {
	query := `
		SELECT id, user_id, workspace_id, roles, confirmed, invite_secret_hash, invited_at, created_at, updated_at
		FROM memberships
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.Roles, &m.Confirmed, &m.InviteSecretHash, &m.InvitedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}

func (r *membershipRepo) Confirm(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE memberships
		SET confirmed = TRUE, invite_secret_hash = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *membershipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM memberships WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *membershipRepo) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM memberships WHERE confirmed = FALSE AND invited_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
