package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/mocks"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
	"github.com/lorrc/skycrm-backend/internal/core/services"
	"github.com/lorrc/skycrm-backend/internal/infrastructure/logging"
)

func titled(title string) interface{} {
	return mock.MatchedBy(func(n domain.Notification) bool { return n.Title == title })
}

func TestNotificationService_NotifyNewTask(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes to assignee", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())

		assignee := uuid.New()
		task := &domain.Task{ID: uuid.New(), Title: "Follow up", AssignedTo: &assignee}

		publisher.On("PushToUser", assignee, domain.EventNotification, titled("New Task Assigned")).Once()

		svc.NotifyNewTask(ctx, task)
		publisher.AssertExpectations(t)
	})

	t.Run("mails assignee", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		mailer := mocks.NewMockMailer()
		svc := services.NewNotificationService(publisher, mailer, logging.NewNopLogger())

		tenantID := uuid.New()
		assignee := uuid.New()
		task := &domain.Task{ID: uuid.New(), TenantID: tenantID, Title: "Follow up", AssignedTo: &assignee}

		publisher.On("PushToUser", assignee, domain.EventNotification, mock.Anything).Once()
		mailer.On("Send", ctx, ports.MailParams{
			TenantID:        tenantID,
			RecipientUserID: assignee,
			Subject:         "New Task Assigned",
			Body:            "You have been assigned a new task: Follow up",
		}).Once()

		svc.NotifyNewTask(ctx, task)
		mailer.AssertExpectations(t)
	})

	t.Run("unassigned task pushes nothing", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())

		svc.NotifyNewTask(ctx, &domain.Task{ID: uuid.New(), Title: "Orphan"})
		publisher.AssertNotCalled(t, "PushToUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNotificationService_NotifyTaskUpdate(t *testing.T) {
	ctx := context.Background()
	assignee := uuid.New()
	watcherA := uuid.New()
	watcherB := uuid.New()

	t.Run("assignee and watchers are told", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		actor := uuid.New()
		task := &domain.Task{ID: uuid.New(), Title: "Quote", AssignedTo: &assignee, Watchers: []uuid.UUID{watcherA, watcherB}}

		publisher.On("PushToUser", assignee, domain.EventNotification, titled("Task Updated")).Once()
		publisher.On("PushToUser", watcherA, domain.EventNotification, titled("Watched Task Updated")).Once()
		publisher.On("PushToUser", watcherB, domain.EventNotification, titled("Watched Task Updated")).Once()

		svc.NotifyTaskUpdate(ctx, task, actor)
		publisher.AssertExpectations(t)
		publisher.AssertNumberOfCalls(t, "PushToUser", 3)
	})

	t.Run("assignee updating their own task is not told", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		task := &domain.Task{ID: uuid.New(), Title: "Quote", AssignedTo: &assignee, Watchers: []uuid.UUID{watcherA}}

		publisher.On("PushToUser", watcherA, domain.EventNotification, titled("Watched Task Updated")).Once()

		svc.NotifyTaskUpdate(ctx, task, assignee)
		publisher.AssertExpectations(t)
		publisher.AssertNumberOfCalls(t, "PushToUser", 1)
	})

	t.Run("watcher making the change is skipped", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		task := &domain.Task{ID: uuid.New(), Title: "Quote", Watchers: []uuid.UUID{watcherA, watcherB}}

		publisher.On("PushToUser", watcherB, domain.EventNotification, titled("Watched Task Updated")).Once()

		svc.NotifyTaskUpdate(ctx, task, watcherA)
		publisher.AssertExpectations(t)
		publisher.AssertNumberOfCalls(t, "PushToUser", 1)
	})
}

func TestNotificationService_NotifyTaskReassigned(t *testing.T) {
	ctx := context.Background()
	watcher := uuid.New()

	t.Run("new assignee gets one assignment notice", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		actor, assignee := uuid.New(), uuid.New()
		task := &domain.Task{ID: uuid.New(), Title: "Quote", AssignedTo: &assignee, Watchers: []uuid.UUID{watcher, assignee}}

		publisher.On("PushToUser", assignee, domain.EventNotification, titled("New Task Assigned")).Once()
		publisher.On("PushToUser", watcher, domain.EventNotification, titled("Watched Task Updated")).Once()

		svc.NotifyTaskReassigned(ctx, task, actor)
		publisher.AssertExpectations(t)
		publisher.AssertNumberOfCalls(t, "PushToUser", 2)
	})

	t.Run("self assignment is silent for the actor", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		mailer := mocks.NewMockMailer()
		svc := services.NewNotificationService(publisher, mailer, logging.NewNopLogger())
		actor := uuid.New()
		task := &domain.Task{ID: uuid.New(), Title: "Quote", AssignedTo: &actor, Watchers: []uuid.UUID{watcher}}

		publisher.On("PushToUser", watcher, domain.EventNotification, titled("Watched Task Updated")).Once()

		svc.NotifyTaskReassigned(ctx, task, actor)
		publisher.AssertExpectations(t)
		publisher.AssertNumberOfCalls(t, "PushToUser", 1)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestNotificationService_TenantNotifications(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	customer := &domain.Customer{ID: uuid.New(), CompanyName: "Acme"}

	t.Run("new customer goes to the tenant", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())

		publisher.On("PushToTenant", tenantID, domain.EventNotification, titled("New Customer Added")).Once()

		svc.NotifyNewCustomer(ctx, customer, tenantID)
		publisher.AssertExpectations(t)
	})

	t.Run("paid invoice goes to the tenant", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		invoice := &domain.Invoice{ID: uuid.New(), InvoiceNumber: "INV-2026-00003"}

		publisher.On("PushToTenant", tenantID, domain.EventNotification, mock.MatchedBy(func(n domain.Notification) bool {
			return n.Message == "Invoice INV-2026-00003 from Acme has been paid"
		})).Once()

		svc.NotifyInvoicePaid(ctx, invoice, customer, tenantID)
		publisher.AssertExpectations(t)
	})
}

func TestNotificationService_CustomerSync(t *testing.T) {
	ctx := context.Background()
	publisher := mocks.NewMockRealtimePublisher()
	svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
	customer := &domain.Customer{ID: uuid.New(), TenantID: uuid.New(), CompanyName: "Acme"}

	publisher.On("PushToTenant", customer.TenantID, domain.EventCustomerUpdated, mock.MatchedBy(func(s domain.CustomerSnapshot) bool {
		return s.ID == customer.ID.String() && s.Communications != nil && s.Deals != nil
	})).Once()
	publisher.On("PushToTenant", customer.TenantID, domain.EventCustomerDeleted, domain.CustomerRef{ID: customer.ID.String()}).Once()

	svc.NotifyCustomerUpdated(ctx, customer)
	svc.NotifyCustomerDeleted(ctx, customer.TenantID, customer.ID)
	publisher.AssertExpectations(t)
}

func TestNotificationService_Tickets(t *testing.T) {
	ctx := context.Background()
	requester := uuid.New()
	agent := uuid.New()
	ticket := func() *domain.Ticket {
		return &domain.Ticket{ID: uuid.New(), TenantID: uuid.New(), Subject: "Export", Status: domain.TicketStatusOpen, CreatedBy: requester}
	}

	t.Run("creation is announced to the tenant", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		tk := ticket()

		publisher.On("PushToTenant", tk.TenantID, domain.EventSupportCreated, domain.NewTicketSnapshot(tk)).Once()

		svc.NotifyTicketCreated(ctx, tk)
		publisher.AssertExpectations(t)
	})

	t.Run("assignee is pushed and mailed", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		mailer := mocks.NewMockMailer()
		svc := services.NewNotificationService(publisher, mailer, logging.NewNopLogger())
		tk := ticket()
		tk.AssignedTo = &agent

		publisher.On("PushToUser", agent, domain.EventNotification, titled("Support Ticket Assigned")).Once()
		mailer.On("Send", ctx, mock.MatchedBy(func(p ports.MailParams) bool {
			return p.RecipientUserID == agent && p.TenantID == tk.TenantID
		})).Once()

		svc.NotifyTicketAssigned(ctx, tk, requester)
		publisher.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("self assignment is silent", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		mailer := mocks.NewMockMailer()
		svc := services.NewNotificationService(publisher, mailer, logging.NewNopLogger())
		tk := ticket()
		tk.AssignedTo = &agent

		svc.NotifyTicketAssigned(ctx, tk, agent)
		publisher.AssertNotCalled(t, "PushToUser", mock.Anything, mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("status change reaches the requester only when someone else moved it", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		tk := ticket()

		publisher.On("PushToUser", requester, domain.EventNotification, titled("Support Ticket Updated")).Once()

		svc.NotifyTicketStatusChanged(ctx, tk, agent)
		svc.NotifyTicketStatusChanged(ctx, tk, requester)
		publisher.AssertExpectations(t)
		publisher.AssertNumberOfCalls(t, "PushToUser", 1)
	})

	t.Run("comment skips its author", func(t *testing.T) {
		publisher := mocks.NewMockRealtimePublisher()
		svc := services.NewNotificationService(publisher, nil, logging.NewNopLogger())
		tk := ticket()
		tk.AssignedTo = &agent
		comment := &domain.TicketComment{ID: uuid.New(), TicketID: tk.ID, AuthorID: agent, Body: "On it"}

		publisher.On("PushToUser", requester, domain.EventNotification, titled("New Ticket Comment")).Once()

		svc.NotifyTicketComment(ctx, tk, comment)
		publisher.AssertExpectations(t)
		publisher.AssertNumberOfCalls(t, "PushToUser", 1)
	})
}
