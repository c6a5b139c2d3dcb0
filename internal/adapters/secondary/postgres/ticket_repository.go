package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

const ticketColumns = `id, tenant_id, subject, description, status, priority, type,
	created_by, assigned_to, closed_at, created_at, updated_at`

// TicketRepository is the secondary adapter for support ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t                      domain.Ticket
		status, priority, kind string
		assignedTo             pgtype.UUID
		closedAt               pgtype.Timestamptz
	)
	err := row.Scan(
		&t.ID, &t.TenantID, &t.Subject, &t.Description, &status, &priority, &kind,
		&t.CreatedBy, &assignedTo, &closedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TicketStatus(status)
	t.Priority = domain.TicketPriority(priority)
	t.Type = domain.TicketType(kind)
	t.AssignedTo = fromNullUUID(assignedTo)
	t.ClosedAt = fromNullTime(closedAt)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// Create persists a new ticket.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	q := `
		INSERT INTO support_tickets (id, tenant_id, subject, description, status, priority, type,
			created_by, assigned_to, closed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + ticketColumns

	created, err := scanTicket(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		ticket.ID, ticket.TenantID, ticket.Subject, ticket.Description, string(ticket.Status),
		string(ticket.Priority), string(ticket.Type), ticket.CreatedBy, toNullUUID(ticket.AssignedTo),
		toNullTime(ticket.ClosedAt), ticket.CreatedAt, ticket.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return created, nil
}

// GetByID returns a ticket of the given tenant.
func (r *TicketRepository) GetByID(ctx context.Context, tenantID, ticketID uuid.UUID) (*domain.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE tenant_id = $1 AND id = $2`

	ticket, err := scanTicket(GetDBTX(ctx, r.pool).QueryRow(ctx, q, tenantID, ticketID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// Update writes the workflow fields of a ticket back. A closed ticket is
// never rewritten.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	q := `
		UPDATE support_tickets SET
			status = $3, assigned_to = $4, closed_at = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2 AND closed_at IS NULL
		RETURNING ` + ticketColumns

	db := GetDBTX(ctx, r.pool)
	updated, err := scanTicket(db.QueryRow(ctx, q,
		ticket.TenantID, ticket.ID, string(ticket.Status), toNullUUID(ticket.AssignedTo),
		toNullTime(ticket.ClosedAt), ticket.UpdatedAt,
	))
	if err == nil {
		return updated, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM support_tickets WHERE tenant_id = $1 AND id = $2)`,
		ticket.TenantID, ticket.ID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check ticket: %w", err)
	}
	if exists {
		return nil, apperrors.ErrTicketClosed
	}
	return nil, apperrors.ErrTicketNotFound
}

// List returns tickets of a tenant, newest first.
func (r *TicketRepository) List(ctx context.Context, filter ports.TicketFilter) ([]*domain.Ticket, error) {
	where := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if filter.Participant != nil {
		args = append(args, *filter.Participant)
		where = append(where, fmt.Sprintf("(created_by = $%d OR assigned_to = $%d)", len(args), len(args)))
	}

	args = append(args, filter.Limit, filter.Offset)
	q := fmt.Sprintf(`SELECT %s FROM support_tickets WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		ticketColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// CommentRepository is the secondary adapter for ticket comments.
type CommentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.CommentRepository = (*CommentRepository)(nil)

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(pool *pgxpool.Pool) ports.CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentColumns = `id, tenant_id, ticket_id, author_id, body, created_at`

func scanComment(row pgx.Row) (*domain.TicketComment, error) {
	var c domain.TicketComment
	if err := row.Scan(&c.ID, &c.TenantID, &c.TicketID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// Create persists a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.TicketComment) (*domain.TicketComment, error) {
	q := `
		INSERT INTO ticket_comments (id, tenant_id, ticket_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + commentColumns

	created, err := scanComment(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		comment.ID, comment.TenantID, comment.TicketID, comment.AuthorID, comment.Body, comment.CreatedAt,
	))
	if err != nil {
		if _, ok := constraintViolation(err, pgForeignKeyViolation); ok {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

// ListByTicket returns the comments of a ticket, oldest first.
func (r *CommentRepository) ListByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) ([]*domain.TicketComment, error) {
	q := `SELECT ` + commentColumns + ` FROM ticket_comments
		WHERE tenant_id = $1 AND ticket_id = $2
		ORDER BY created_at, id`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, q, tenantID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.TicketComment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
