package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
	"github.com/lorrc/skycrm-backend/internal/infrastructure/logging"
)

// NotificationService turns domain changes into "notification" events.
// Task assignments are also mailed, since the assignee may be offline.
type NotificationService struct {
	publisher ports.RealtimePublisher
	mailer    ports.Mailer
	logger    *slog.Logger
}

var _ ports.NotificationService = (*NotificationService)(nil)

// NewNotificationService creates a notification service that pushes through
// publisher. mailer may be nil.
func NewNotificationService(publisher ports.RealtimePublisher, mailer ports.Mailer, logger *slog.Logger) ports.NotificationService {
	return &NotificationService{
		publisher: publisher,
		mailer:    mailer,
		logger:    logger.With("component", "notifications"),
	}
}

// NotifyNewTask tells the assignee, if any, about a task handed to them.
func (s *NotificationService) NotifyNewTask(ctx context.Context, task *domain.Task) {
	if task.AssignedTo == nil {
		return
	}
	n := domain.NewTaskAssignedNotification(task)
	s.pushToUser(ctx, *task.AssignedTo, n)

	if s.mailer != nil {
		s.mailer.Send(ctx, ports.MailParams{
			TenantID:        task.TenantID,
			RecipientUserID: *task.AssignedTo,
			Subject:         n.Title,
			Body:            n.Message,
		})
	}
}

// NotifyTaskUpdate tells the assignee and every watcher that a task changed.
// The user who made the change is never notified about it.
func (s *NotificationService) NotifyTaskUpdate(ctx context.Context, task *domain.Task, updatedBy uuid.UUID) {
	if task.AssignedTo != nil && *task.AssignedTo != updatedBy {
		s.pushToUser(ctx, *task.AssignedTo, domain.NewTaskUpdatedNotification(task))
	}

	for _, watcher := range task.Watchers {
		if watcher == updatedBy {
			continue
		}
		s.pushToUser(ctx, watcher, domain.NewWatchedTaskUpdatedNotification(task))
	}
}

// NotifyTaskReassigned handles an update that changed the assignee. The new
// assignee hears only about the assignment, watchers hear about the change,
// and the user who made it hears nothing.
func (s *NotificationService) NotifyTaskReassigned(ctx context.Context, task *domain.Task, updatedBy uuid.UUID) {
	if task.AssignedTo != nil && *task.AssignedTo != updatedBy {
		s.NotifyNewTask(ctx, task)
	}

	for _, watcher := range task.Watchers {
		if watcher == updatedBy || (task.AssignedTo != nil && watcher == *task.AssignedTo) {
			continue
		}
		s.pushToUser(ctx, watcher, domain.NewWatchedTaskUpdatedNotification(task))
	}
}

// NotifyNewCustomer informs the whole tenant about a new customer.
func (s *NotificationService) NotifyNewCustomer(ctx context.Context, customer *domain.Customer, tenantID uuid.UUID) {
	s.pushToTenant(ctx, tenantID, domain.NewCustomerAddedNotification(customer))
}

// NotifyCustomerUpdated syncs an edited customer to every screen of the
// tenant, the same event a client relays after editing one itself.
func (s *NotificationService) NotifyCustomerUpdated(ctx context.Context, customer *domain.Customer) {
	s.syncTenant(ctx, customer.TenantID, domain.EventCustomerUpdated, domain.NewCustomerSnapshot(customer))
}

// NotifyCustomerDeleted tells the tenant to drop a customer from view.
func (s *NotificationService) NotifyCustomerDeleted(ctx context.Context, tenantID, customerID uuid.UUID) {
	s.syncTenant(ctx, tenantID, domain.EventCustomerDeleted, domain.CustomerRef{ID: customerID.String()})
}

// NotifyTicketCreated announces a new support ticket to its tenant.
func (s *NotificationService) NotifyTicketCreated(ctx context.Context, ticket *domain.Ticket) {
	s.syncTenant(ctx, ticket.TenantID, domain.EventSupportCreated, domain.NewTicketSnapshot(ticket))
}

// NotifyTicketAssigned tells the new assignee, online or not, unless they
// picked the ticket up themselves.
func (s *NotificationService) NotifyTicketAssigned(ctx context.Context, ticket *domain.Ticket, assignedBy uuid.UUID) {
	if ticket.AssignedTo == nil || *ticket.AssignedTo == assignedBy {
		return
	}
	n := domain.NewTicketAssignedNotification(ticket)
	s.pushToUser(ctx, *ticket.AssignedTo, n)

	if s.mailer != nil {
		s.mailer.Send(ctx, ports.MailParams{
			TenantID:        ticket.TenantID,
			RecipientUserID: *ticket.AssignedTo,
			Subject:         n.Title,
			Body:            n.Message,
		})
	}
}

// NotifyTicketStatusChanged tells the requester their ticket moved.
func (s *NotificationService) NotifyTicketStatusChanged(ctx context.Context, ticket *domain.Ticket, changedBy uuid.UUID) {
	if ticket.CreatedBy == changedBy {
		return
	}
	s.pushToUser(ctx, ticket.CreatedBy, domain.NewTicketStatusNotification(ticket))
}

// NotifyTicketComment tells the requester and the assignee about a reply.
// The author is skipped.
func (s *NotificationService) NotifyTicketComment(ctx context.Context, ticket *domain.Ticket, comment *domain.TicketComment) {
	n := domain.NewTicketCommentNotification(ticket, comment)
	if ticket.CreatedBy != comment.AuthorID {
		s.pushToUser(ctx, ticket.CreatedBy, n)
	}
	if ticket.AssignedTo != nil && *ticket.AssignedTo != comment.AuthorID && *ticket.AssignedTo != ticket.CreatedBy {
		s.pushToUser(ctx, *ticket.AssignedTo, n)
	}
}

// NotifyInvoicePaid informs the whole tenant that an invoice was settled.
func (s *NotificationService) NotifyInvoicePaid(ctx context.Context, invoice *domain.Invoice, customer *domain.Customer, tenantID uuid.UUID) {
	s.pushToTenant(ctx, tenantID, domain.NewInvoicePaidNotification(invoice, customer))
}

func (s *NotificationService) pushToUser(ctx context.Context, userID uuid.UUID, n domain.Notification) {
	logging.LoggerFromContext(ctx, s.logger).Debug("pushing notification",
		"target", domain.UserRoom(userID),
		"title", n.Title,
	)
	s.publisher.PushToUser(userID, domain.EventNotification, n)
}

func (s *NotificationService) pushToTenant(ctx context.Context, tenantID uuid.UUID, n domain.Notification) {
	logging.LoggerFromContext(ctx, s.logger).Debug("pushing notification",
		"target", domain.TenantRoom(tenantID),
		"title", n.Title,
	)
	s.publisher.PushToTenant(tenantID, domain.EventNotification, n)
}

func (s *NotificationService) syncTenant(ctx context.Context, tenantID uuid.UUID, event string, data any) {
	logging.LoggerFromContext(ctx, s.logger).Debug("pushing sync event",
		"target", domain.TenantRoom(tenantID),
		"event", event,
	)
	s.publisher.PushToTenant(tenantID, event, data)
}
