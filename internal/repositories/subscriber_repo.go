package repositories

import (
	"context"

	"rewardbase/internal/models"

	"github.com/google/uuid"
)

type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *models.Subscriber) error
	GetByCustomerRef(ctx context.Context, customerRef string) (*models.Subscriber, error)
	GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) (*models.Subscriber, error)
	SetPremium(ctx context.Context, id uuid.UUID, premium bool) error
}

type subscriberRepo struct {
	db Database
}

func NewSubscriberRepo(db Database) SubscriberRepository {
	return &subscriberRepo{db: db}
}

func (r *subscriberRepo) Create(ctx context.Context, subscriber *models.Subscriber) error {
	query := `
		INSERT INTO subscribers (id, workspace_id, customer_ref, email, premium, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, subscriber.ID, subscriber.WorkspaceID, subscriber.CustomerRef, subscriber.Email, subscriber.Premium)
	return err
}

func (r *subscriberRepo) GetByCustomerRef(ctx context.Context, customerRef string) (*models.Subscriber, error) {
	s := &models.Subscriber{}
	query := `
		SELECT id, workspace_id, customer_ref, email, premium, created_at, updated_at
		FROM subscribers
		WHERE customer_ref = $1
	`
	err := r.db.QueryRow(ctx, query, customerRef).Scan(&s.ID, &s.WorkspaceID, &s.CustomerRef, &s.Email, &s.Premium, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *subscriberRepo) GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) (*models.Subscriber, error) {
	s := &models.Subscriber{}
	query := `
		SELECT id, workspace_id, customer_ref, email, premium, created_at, updated_at
		FROM subscribers
		WHERE workspace_id = $1
	`
	err := r.db.QueryRow(ctx, query, workspaceID).Scan(&s.ID, &s.WorkspaceID, &s.CustomerRef, &s.Email, &s.Premium, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *subscriberRepo) SetPremium(ctx context.Context, id uuid.UUID, premium bool) error {
	query := `UPDATE subscribers SET premium = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, premium, id)
	return err
}
