package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
)

// TenantRepository persists tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error)
}

// TaskFilter narrows a tenant-scoped task listing.
type TaskFilter struct {
	TenantID   uuid.UUID
	Status     *domain.TaskStatus
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

// TaskRepository persists tasks. Every lookup is scoped by tenant.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, tenantID, taskID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
}

// CustomerFilter narrows a tenant-scoped customer listing.
type CustomerFilter struct {
	TenantID uuid.UUID
	Status   *domain.CustomerStatus
	Limit    int
	Offset   int
}

// CustomerRepository persists customers. Every lookup is scoped by tenant.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]*domain.Customer, error)
	// Update writes the editable profile fields. The logs are not touched.
	Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	// Delete fails with ErrCustomerHasInvoices while invoices reference it.
	Delete(ctx context.Context, tenantID, customerID uuid.UUID) error
	// AppendCommunication adds to the log atomically and moves the last
	// contact date forward.
	AppendCommunication(ctx context.Context, tenantID, customerID uuid.UUID, entry domain.CustomerCommunication) (*domain.Customer, error)
	AppendDeal(ctx context.Context, tenantID, customerID uuid.UUID, deal domain.CustomerDeal) (*domain.Customer, error)
}

// TicketFilter narrows a tenant-scoped ticket listing. Participant limits
// the listing to tickets the user opened or is assigned to.
type TicketFilter struct {
	TenantID    uuid.UUID
	Status      *domain.TicketStatus
	AssignedTo  *uuid.UUID
	Participant *uuid.UUID
	Limit       int
	Offset      int
}

// TicketRepository persists support tickets. Every lookup is scoped by tenant.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, tenantID, ticketID uuid.UUID) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, error)
}

// CommentRepository persists ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) (*domain.TicketComment, error)
	ListByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) ([]*domain.TicketComment, error)
}

// InvoiceFilter narrows a tenant-scoped invoice listing.
type InvoiceFilter struct {
	TenantID   uuid.UUID
	Status     *domain.InvoiceStatus
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
}

// InvoiceRepository persists invoices. Every lookup is scoped by tenant.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)
	GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	Update(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	// NextSequence reserves the next invoice number sequence for a tenant
	// and year. It must run inside the transaction that creates the invoice.
	NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int64, error)
}
