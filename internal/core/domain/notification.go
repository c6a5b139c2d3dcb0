package domain

import "fmt"

// NotificationType classifies a notification for client-side rendering.
type NotificationType string

const (
	NotificationTask         NotificationType = "task"
	NotificationCustomer     NotificationType = "customer"
	NotificationInvoice      NotificationType = "invoice"
	NotificationSupport      NotificationType = "support"
	NotificationAnnouncement NotificationType = "announcement"
)

// Notification is the payload of every "notification" event.
type Notification struct {
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Data    any              `json:"data"`
}

// NewTaskAssignedNotification tells an assignee about a task handed to them.
func NewTaskAssignedNotification(task *Task) Notification {
	return Notification{
		Type:    NotificationTask,
		Title:   "New Task Assigned",
		Message: fmt.Sprintf("You have been assigned a new task: %s", task.Title),
		Data:    NewTaskSnapshot(task),
	}
}

// NewTaskUpdatedNotification tells an assignee their task changed.
func NewTaskUpdatedNotification(task *Task) Notification {
	return Notification{
		Type:    NotificationTask,
		Title:   "Task Updated",
		Message: fmt.Sprintf("Task \"%s\" has been updated", task.Title),
		Data:    NewTaskSnapshot(task),
	}
}

// NewWatchedTaskUpdatedNotification tells a watcher a task they follow changed.
func NewWatchedTaskUpdatedNotification(task *Task) Notification {
	return Notification{
		Type:    NotificationTask,
		Title:   "Watched Task Updated",
		Message: fmt.Sprintf("Task \"%s\" has been updated", task.Title),
		Data:    NewTaskSnapshot(task),
	}
}

// NewCustomerAddedNotification informs a tenant's team about a new customer.
func NewCustomerAddedNotification(customer *Customer) Notification {
	return Notification{
		Type:    NotificationCustomer,
		Title:   "New Customer Added",
		Message: fmt.Sprintf("New customer \"%s\" has been added", customer.CompanyName),
		Data:    NewCustomerSnapshot(customer),
	}
}

// NewTicketAssignedNotification tells an agent a ticket was handed to them.
func NewTicketAssignedNotification(ticket *Ticket) Notification {
	return Notification{
		Type:    NotificationSupport,
		Title:   "Support Ticket Assigned",
		Message: fmt.Sprintf("You have been assigned support ticket: %s", ticket.Subject),
		Data:    NewTicketSnapshot(ticket),
	}
}

// NewTicketStatusNotification tells the requester their ticket moved.
func NewTicketStatusNotification(ticket *Ticket) Notification {
	return Notification{
		Type:    NotificationSupport,
		Title:   "Support Ticket Updated",
		Message: fmt.Sprintf("Ticket \"%s\" is now %s", ticket.Subject, ticket.Status),
		Data:    NewTicketSnapshot(ticket),
	}
}

// NewTicketCommentNotification tells a participant about a reply.
func NewTicketCommentNotification(ticket *Ticket, comment *TicketComment) Notification {
	return Notification{
		Type:    NotificationSupport,
		Title:   "New Ticket Comment",
		Message: fmt.Sprintf("A new comment was added to ticket \"%s\"", ticket.Subject),
		Data:    NewCommentSnapshot(comment),
	}
}

// NewInvoicePaidNotification informs a tenant's team that an invoice was paid.
func NewInvoicePaidNotification(invoice *Invoice, customer *Customer) Notification {
	return Notification{
		Type:    NotificationInvoice,
		Title:   "Invoice Paid",
		Message: fmt.Sprintf("Invoice %s from %s has been paid", invoice.InvoiceNumber, customer.CompanyName),
		Data:    NewInvoiceSnapshot(invoice),
	}
}

// NewAnnouncementNotification wraps a platform-wide message.
func NewAnnouncementNotification(title, message string) Notification {
	return Notification{
		Type:    NotificationAnnouncement,
		Title:   title,
		Message: message,
	}
}
