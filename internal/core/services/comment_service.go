package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// CommentService implements the business logic for ticket comments. Anyone
// who can see a ticket can read and write its thread.
type CommentService struct {
	commentRepo ports.CommentRepository
	tickets     ports.TicketService
	notifier    ports.NotificationService
	logger      *slog.Logger
}

var _ ports.CommentService = (*CommentService)(nil)

// NewCommentService creates a new service for comment logic.
func NewCommentService(
	commentRepo ports.CommentRepository,
	tickets ports.TicketService,
	notifier ports.NotificationService,
	logger *slog.Logger,
) ports.CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		tickets:     tickets,
		notifier:    notifier,
		logger:      logger.With("component", "comments"),
	}
}

// CreateComment adds a comment to a ticket and tells the other participants.
func (s *CommentService) CreateComment(ctx context.Context, actor domain.Identity, ticketID uuid.UUID, body string) (*domain.TicketComment, error) {
	ticket, err := s.tickets.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	comment, err := domain.NewTicketComment(ticket, actor.UserID, body)
	if err != nil {
		return nil, err
	}

	created, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "comment added", "ticket_id", ticket.ID, "comment_id", created.ID)
	s.notifier.NotifyTicketComment(ctx, ticket, created)
	return created, nil
}

// ListComments returns the thread of a ticket, oldest first.
func (s *CommentService) ListComments(ctx context.Context, actor domain.Identity, ticketID uuid.UUID) ([]*domain.TicketComment, error) {
	if _, err := s.tickets.GetTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTicket(ctx, actor.TenantID, ticketID)
}
