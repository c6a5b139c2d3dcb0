package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
)

// RealtimePublisher is the outbound port to the connection hub. Every method
// is fire-and-forget: it never blocks on delivery and never fails. When the
// hub is not running the push is dropped.
type RealtimePublisher interface {
	PushToTenant(tenantID uuid.UUID, event string, data any)
	PushToUser(userID uuid.UUID, event string, data any)
	PushToAll(event string, data any)
}

// TokenVerifier resolves a bearer credential into the identity it carries.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// TokenIssuer signs credentials for authenticated users.
type TokenIssuer interface {
	GenerateToken(identity domain.Identity) (string, error)
}

// NotificationService formats domain changes into user-facing notifications
// and pushes them to the right audience.
type NotificationService interface {
	NotifyNewTask(ctx context.Context, task *domain.Task)
	NotifyTaskUpdate(ctx context.Context, task *domain.Task, updatedBy uuid.UUID)
	NotifyTaskReassigned(ctx context.Context, task *domain.Task, updatedBy uuid.UUID)
	NotifyNewCustomer(ctx context.Context, customer *domain.Customer, tenantID uuid.UUID)
	NotifyCustomerUpdated(ctx context.Context, customer *domain.Customer)
	NotifyCustomerDeleted(ctx context.Context, tenantID, customerID uuid.UUID)
	NotifyTicketCreated(ctx context.Context, ticket *domain.Ticket)
	NotifyTicketAssigned(ctx context.Context, ticket *domain.Ticket, assignedBy uuid.UUID)
	NotifyTicketStatusChanged(ctx context.Context, ticket *domain.Ticket, changedBy uuid.UUID)
	NotifyTicketComment(ctx context.Context, ticket *domain.Ticket, comment *domain.TicketComment)
	NotifyInvoicePaid(ctx context.Context, invoice *domain.Invoice, customer *domain.Customer, tenantID uuid.UUID)
}

// RegisterParams defines the input for registering a user. A new subdomain
// creates the tenant and makes the user its admin.
type RegisterParams struct {
	TenantName string
	Subdomain  string
	Name       string
	Email      string
	Password   string
}

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Me(ctx context.Context, identity domain.Identity) (*domain.User, error)
}

// CreateTaskParams defines the input for creating a task.
type CreateTaskParams struct {
	Actor       domain.Identity
	Title       string
	Description string
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
	Watchers    []uuid.UUID
	CustomerID  *uuid.UUID
}

// UpdateTaskParams carries a partial task update. Nil fields are left alone.
type UpdateTaskParams struct {
	Actor         domain.Identity
	TaskID        uuid.UUID
	Title         *string
	Description   *string
	Status        *domain.TaskStatus
	Priority      *domain.TaskPriority
	DueDate       *time.Time
	AssignedTo    *uuid.UUID
	ClearAssignee bool
	Watchers      []uuid.UUID
	SetWatchers   bool
}

// ListTasksParams defines the input for listing tasks.
type ListTasksParams struct {
	Actor      domain.Identity
	Status     *domain.TaskStatus
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

// TaskService defines the business operations for tasks.
type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)
	GetTask(ctx context.Context, actor domain.Identity, taskID uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, params ListTasksParams) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*domain.Task, error)
}

// CreateCustomerParams defines the input for creating a customer.
type CreateCustomerParams struct {
	Actor       domain.Identity
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Status      domain.CustomerStatus
	Value       decimal.Decimal
}

// ListCustomersParams defines the input for listing customers.
type ListCustomersParams struct {
	Actor  domain.Identity
	Status *domain.CustomerStatus
	Limit  int
	Offset int
}

// CustomerService defines the business operations for customers.
type CustomerService interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.Customer, error)
	GetCustomer(ctx context.Context, actor domain.Identity, customerID uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context, params ListCustomersParams) ([]*domain.Customer, error)
	UpdateCustomer(ctx context.Context, params UpdateCustomerParams) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, actor domain.Identity, customerID uuid.UUID) error
	AddCommunication(ctx context.Context, params AddCommunicationParams) (*domain.Customer, error)
	AddDeal(ctx context.Context, params AddDealParams) (*domain.Customer, error)
}

// UpdateCustomerParams carries a partial customer update.
type UpdateCustomerParams struct {
	Actor      domain.Identity
	CustomerID uuid.UUID
	Changes    domain.CustomerChanges
}

// AddCommunicationParams defines the input for logging a contact.
type AddCommunicationParams struct {
	Actor       domain.Identity
	CustomerID  uuid.UUID
	Type        domain.CommunicationType
	Subject     string
	Description string
	Date        time.Time
}

// AddDealParams defines the input for opening a deal.
type AddDealParams struct {
	Actor      domain.Identity
	CustomerID uuid.UUID
	Deal       domain.DealParams
}

// CreateTicketParams defines the input for opening a support ticket.
type CreateTicketParams struct {
	Actor       domain.Identity
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Type        domain.TicketType
}

// ListTicketsParams defines the input for listing tickets.
type ListTicketsParams struct {
	Actor      domain.Identity
	Status     *domain.TicketStatus
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

// TicketService defines the business operations for support tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, actor domain.Identity, ticketID uuid.UUID) (*domain.Ticket, error)
	ListTickets(ctx context.Context, params ListTicketsParams) ([]*domain.Ticket, error)
	UpdateStatus(ctx context.Context, actor domain.Identity, ticketID uuid.UUID, status domain.TicketStatus) (*domain.Ticket, error)
	AssignTicket(ctx context.Context, actor domain.Identity, ticketID, assigneeID uuid.UUID) (*domain.Ticket, error)
}

// CommentService defines the business operations for ticket comments.
type CommentService interface {
	CreateComment(ctx context.Context, actor domain.Identity, ticketID uuid.UUID, body string) (*domain.TicketComment, error)
	ListComments(ctx context.Context, actor domain.Identity, ticketID uuid.UUID) ([]*domain.TicketComment, error)
}

// CreateInvoiceParams defines the input for creating an invoice.
type CreateInvoiceParams struct {
	Actor      domain.Identity
	CustomerID uuid.UUID
	Items      []domain.InvoiceItem
	TaxRate    decimal.Decimal
	Discount   decimal.Decimal
	Currency   string
	IssueDate  time.Time
	DueDate    time.Time
}

// MarkPaidParams defines the input for settling an invoice.
type MarkPaidParams struct {
	Actor     domain.Identity
	InvoiceID uuid.UUID
	Method    domain.PaymentMethod
	Reference string
	PaidAt    time.Time
}

// ListInvoicesParams defines the input for listing invoices.
type ListInvoicesParams struct {
	Actor      domain.Identity
	Status     *domain.InvoiceStatus
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
}

// InvoiceService defines the business operations for invoices.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, actor domain.Identity, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, params ListInvoicesParams) ([]*domain.Invoice, error)
	MarkPaid(ctx context.Context, params MarkPaidParams) (*domain.Invoice, error)
}

// AnnouncementService broadcasts platform-wide messages.
type AnnouncementService interface {
	Announce(ctx context.Context, actor domain.Identity, title, message string) error
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MailParams addresses an email to a user of a tenant.
type MailParams struct {
	TenantID        uuid.UUID
	RecipientUserID uuid.UUID
	Subject         string
	Body            string
}

// Mailer delivers email notices. Delivery failures are logged by the
// adapter, never returned.
type Mailer interface {
	Send(ctx context.Context, params MailParams)
}
