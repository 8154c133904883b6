package repositories

import (
	"context"

	"rewardbase/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Ticket, error)
	UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status string) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Ticket, error)
}

type ticketRepo struct {
	db Database
}

func NewTicketRepo(db Database) TicketRepository {
	return &ticketRepo{db: db}
}

func (r *ticketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (id, workspace_id, opened_by, subject, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, ticket.ID, ticket.WorkspaceID, ticket.OpenedBy, ticket.Subject, ticket.Body, ticket.Status)
	return err
}

func (r *ticketRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Ticket, error) {
	t := &models.Ticket{}
	query := `
		SELECT id, workspace_id, opened_by, subject, body, status, created_at, updated_at
		FROM tickets
		WHERE workspace_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, workspaceID, id).Scan(&t.ID, &t.WorkspaceID, &t.OpenedBy, &t.Subject, &t.Body, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *ticketRepo) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status string) error {
	query := `UPDATE tickets SET status = $1, updated_at = NOW() WHERE workspace_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, status, workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := `DELETE FROM tickets WHERE workspace_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, workspaceID, id)
	return err
}

func (r *ticketRepo) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*models.Ticket, error) {
	query := `
		SELECT id, workspace_id, opened_by, subject, body, status, created_at, updated_at
		FROM tickets
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		t := &models.Ticket{}
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.OpenedBy, &t.Subject, &t.Body, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}
