package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// TicketService implements business logic for support tickets. Admins see
// every ticket of their tenant; other users see the tickets they opened or
// were assigned.
type TicketService struct {
	ticketRepo ports.TicketRepository
	userRepo   ports.UserRepository
	notifier   ports.NotificationService
	logger     *slog.Logger
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo ports.TicketRepository,
	userRepo ports.UserRepository,
	notifier ports.NotificationService,
	logger *slog.Logger,
) ports.TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		logger:     logger.With("component", "tickets"),
	}
}

// CreateTicket opens a ticket in the actor's tenant and announces it.
func (s *TicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(domain.TicketParams{
		TenantID:    params.Actor.TenantID,
		Subject:     params.Subject,
		Description: params.Description,
		Priority:    params.Priority,
		Type:        params.Type,
		CreatedBy:   params.Actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket created", "ticket_id", created.ID)
	s.notifier.NotifyTicketCreated(ctx, created)
	return created, nil
}

// GetTicket returns a ticket the actor may see.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Identity, ticketID uuid.UUID) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !ticket.IsParticipant(actor.UserID) {
		return nil, apperrors.ErrForbidden
	}
	return ticket, nil
}

// ListTickets lists the tickets the actor may see.
func (s *TicketService) ListTickets(ctx context.Context, params ports.ListTicketsParams) ([]*domain.Ticket, error) {
	limit, offset := normalizePage(params.Limit, params.Offset)
	filter := ports.TicketFilter{
		TenantID:   params.Actor.TenantID,
		Status:     params.Status,
		AssignedTo: params.AssignedTo,
		Limit:      limit,
		Offset:     offset,
	}
	if !params.Actor.IsAdmin() {
		filter.Participant = &params.Actor.UserID
	}
	return s.ticketRepo.List(ctx, filter)
}

// UpdateStatus moves a ticket along its workflow and tells the requester.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Identity, ticketID uuid.UUID, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.UpdateStatus(status); err != nil {
		return nil, err
	}

	updated, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket status changed", "ticket_id", updated.ID, "status", updated.Status)
	s.notifier.NotifyTicketStatusChanged(ctx, updated, actor.UserID)
	return updated, nil
}

// AssignTicket hands a ticket to a member of the same tenant. Only admins
// assign.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.Identity, ticketID, assigneeID uuid.UUID) (*domain.Ticket, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	ticket, err := s.ticketRepo.GetByID(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, actor.TenantID, assigneeID); err != nil {
		return nil, err
	}
	if err := ticket.Assign(assigneeID); err != nil {
		return nil, err
	}

	updated, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket assigned", "ticket_id", updated.ID, "assignee_id", assigneeID)
	s.notifier.NotifyTicketAssigned(ctx, updated, actor.UserID)
	return updated, nil
}
