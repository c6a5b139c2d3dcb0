package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskSnapshot matches the API response shape for tasks.
type TaskSnapshot struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	CompletedAt *string  `json:"completedAt"`
	AssignedTo  *string  `json:"assignedTo"`
	AssignedBy  string   `json:"assignedBy"`
	Watchers    []string `json:"watchers"`
	CustomerID  *string  `json:"customerId"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// CustomerSnapshot matches the API response shape for customers.
type CustomerSnapshot struct {
	ID          string          `json:"id"`
	CompanyName string          `json:"companyName"`
	ContactName string          `json:"contactName,omitempty"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone,omitempty"`
	Status      string          `json:"status"`
	Value       decimal.Decimal `json:"value"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   string          `json:"createdAt"`

	Communications  []CustomerCommunication `json:"communication"`
	Deals           []CustomerDeal          `json:"deals"`
	LastContactDate *string                 `json:"lastContactDate"`
}

// CustomerRef identifies a customer that no longer exists.
type CustomerRef struct {
	ID string `json:"id"`
}

// TicketSnapshot matches the API response shape for support tickets.
type TicketSnapshot struct {
	ID          string  `json:"id"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Type        string  `json:"type"`
	CreatedBy   string  `json:"createdBy"`
	AssignedTo  *string `json:"assignedTo"`
	ClosedAt    *string `json:"closedAt"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CommentSnapshot matches the API response shape for ticket comments.
type CommentSnapshot struct {
	ID        string `json:"id"`
	TicketID  string `json:"ticketId"`
	AuthorID  string `json:"authorId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// InvoiceSnapshot matches the API response shape for invoices.
type InvoiceSnapshot struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	CustomerID    string          `json:"customerId"`
	Status        string          `json:"status"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	IssueDate     string          `json:"issueDate"`
	DueDate       string          `json:"dueDate"`
	PaymentDate   *string         `json:"paymentDate"`
	PaymentMethod *string         `json:"paymentMethod"`
	CreatedAt     string          `json:"createdAt"`
}

// NewTaskSnapshot builds a task snapshot from a domain task.
func NewTaskSnapshot(task *Task) TaskSnapshot {
	watchers := make([]string, 0, len(task.Watchers))
	for _, w := range task.Watchers {
		watchers = append(watchers, w.String())
	}

	return TaskSnapshot{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     formatTimePtr(task.DueDate),
		CompletedAt: formatTimePtr(task.CompletedAt),
		AssignedTo:  formatUUIDPtr(task.AssignedTo),
		AssignedBy:  task.AssignedBy.String(),
		Watchers:    watchers,
		CustomerID:  formatUUIDPtr(task.CustomerID),
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewCustomerSnapshot builds a customer snapshot from a domain customer.
func NewCustomerSnapshot(customer *Customer) CustomerSnapshot {
	return CustomerSnapshot{
		ID:          customer.ID.String(),
		CompanyName: customer.CompanyName,
		ContactName: customer.ContactName,
		Email:       customer.Email,
		Phone:       customer.Phone,
		Status:      string(customer.Status),
		Value:       customer.Value,
		CreatedBy:   customer.CreatedBy.String(),
		CreatedAt:   customer.CreatedAt.UTC().Format(time.RFC3339),

		Communications:  nonNil(customer.Communications),
		Deals:           nonNil(customer.Deals),
		LastContactDate: formatTimePtr(customer.LastContactDate),
	}
}

// NewTicketSnapshot builds a ticket snapshot from a domain ticket.
func NewTicketSnapshot(ticket *Ticket) TicketSnapshot {
	return TicketSnapshot{
		ID:          ticket.ID.String(),
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		Priority:    string(ticket.Priority),
		Type:        string(ticket.Type),
		CreatedBy:   ticket.CreatedBy.String(),
		AssignedTo:  formatUUIDPtr(ticket.AssignedTo),
		ClosedAt:    formatTimePtr(ticket.ClosedAt),
		CreatedAt:   ticket.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   ticket.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewCommentSnapshot builds a comment snapshot from a domain comment.
func NewCommentSnapshot(comment *TicketComment) CommentSnapshot {
	return CommentSnapshot{
		ID:        comment.ID.String(),
		TicketID:  comment.TicketID.String(),
		AuthorID:  comment.AuthorID.String(),
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewInvoiceSnapshot builds an invoice snapshot from a domain invoice.
func NewInvoiceSnapshot(invoice *Invoice) InvoiceSnapshot {
	var method *string
	if invoice.PaymentMethod != nil {
		value := string(*invoice.PaymentMethod)
		method = &value
	}

	return InvoiceSnapshot{
		ID:            invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID.String(),
		Status:        string(invoice.Status),
		Items:         invoice.Items,
		Subtotal:      invoice.Subtotal,
		TaxRate:       invoice.TaxRate,
		TaxAmount:     invoice.TaxAmount,
		Discount:      invoice.Discount,
		Total:         invoice.Total,
		Currency:      invoice.Currency,
		IssueDate:     invoice.IssueDate.UTC().Format(time.RFC3339),
		DueDate:       invoice.DueDate.UTC().Format(time.RFC3339),
		PaymentDate:   formatTimePtr(invoice.PaymentDate),
		PaymentMethod: method,
		CreatedAt:     invoice.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// nonNil keeps empty logs as [] rather than null on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.UTC().Format(time.RFC3339)
	return &value
}

func formatUUIDPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	value := id.String()
	return &value
}
