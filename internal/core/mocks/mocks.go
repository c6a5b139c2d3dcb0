package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// MockTenantRepository is a mock implementation of ports.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func NewMockTenantRepository() *MockTenantRepository {
	return &MockTenantRepository{}
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockTaskRepository is a mock implementation of ports.TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{}
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, tenantID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, tenantID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

// MockCustomerRepository is a mock implementation of ports.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{}
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, filter ports.CustomerFilter) ([]*domain.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	args := m.Called(ctx, tenantID, customerID)
	return args.Error(0)
}

func (m *MockCustomerRepository) AppendCommunication(ctx context.Context, tenantID, customerID uuid.UUID, entry domain.CustomerCommunication) (*domain.Customer, error) {
	args := m.Called(ctx, tenantID, customerID, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) AppendDeal(ctx context.Context, tenantID, customerID uuid.UUID, deal domain.CustomerDeal) (*domain.Customer, error) {
	args := m.Called(ctx, tenantID, customerID, deal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, tenantID, ticketID uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, tenantID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, filter ports.TicketFilter) ([]*domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

// MockCommentRepository is a mock implementation of ports.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.TicketComment) (*domain.TicketComment, error) {
	args := m.Called(ctx, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketComment), args.Error(1)
}

func (m *MockCommentRepository) ListByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) ([]*domain.TicketComment, error) {
	args := m.Called(ctx, tenantID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TicketComment), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of ports.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{}
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter ports.InvoiceFilter) ([]*domain.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	args := m.Called(ctx, tenantID, year)
	return args.Get(0).(int64), args.Error(1)
}

// MockRealtimePublisher is a mock implementation of ports.RealtimePublisher
type MockRealtimePublisher struct {
	mock.Mock
}

func NewMockRealtimePublisher() *MockRealtimePublisher {
	return &MockRealtimePublisher{}
}

func (m *MockRealtimePublisher) PushToTenant(tenantID uuid.UUID, event string, data any) {
	m.Called(tenantID, event, data)
}

func (m *MockRealtimePublisher) PushToUser(userID uuid.UUID, event string, data any) {
	m.Called(userID, event, data)
}

func (m *MockRealtimePublisher) PushToAll(event string, data any) {
	m.Called(event, data)
}

// MockMailer is a mock implementation of ports.Mailer
type MockMailer struct {
	mock.Mock
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, params ports.MailParams) {
	m.Called(ctx, params)
}

// MockNotificationService is a mock implementation of ports.NotificationService
type MockNotificationService struct {
	mock.Mock
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) NotifyNewTask(ctx context.Context, task *domain.Task) {
	m.Called(ctx, task)
}

func (m *MockNotificationService) NotifyTaskUpdate(ctx context.Context, task *domain.Task, updatedBy uuid.UUID) {
	m.Called(ctx, task, updatedBy)
}

func (m *MockNotificationService) NotifyTaskReassigned(ctx context.Context, task *domain.Task, updatedBy uuid.UUID) {
	m.Called(ctx, task, updatedBy)
}

func (m *MockNotificationService) NotifyNewCustomer(ctx context.Context, customer *domain.Customer, tenantID uuid.UUID) {
	m.Called(ctx, customer, tenantID)
}

func (m *MockNotificationService) NotifyCustomerUpdated(ctx context.Context, customer *domain.Customer) {
	m.Called(ctx, customer)
}

func (m *MockNotificationService) NotifyCustomerDeleted(ctx context.Context, tenantID, customerID uuid.UUID) {
	m.Called(ctx, tenantID, customerID)
}

func (m *MockNotificationService) NotifyTicketCreated(ctx context.Context, ticket *domain.Ticket) {
	m.Called(ctx, ticket)
}

func (m *MockNotificationService) NotifyTicketAssigned(ctx context.Context, ticket *domain.Ticket, assignedBy uuid.UUID) {
	m.Called(ctx, ticket, assignedBy)
}

func (m *MockNotificationService) NotifyTicketStatusChanged(ctx context.Context, ticket *domain.Ticket, changedBy uuid.UUID) {
	m.Called(ctx, ticket, changedBy)
}

func (m *MockNotificationService) NotifyTicketComment(ctx context.Context, ticket *domain.Ticket, comment *domain.TicketComment) {
	m.Called(ctx, ticket, comment)
}

func (m *MockNotificationService) NotifyInvoicePaid(ctx context.Context, invoice *domain.Invoice, customer *domain.Customer, tenantID uuid.UUID) {
	m.Called(ctx, invoice, customer, tenantID)
}

// MockTokenVerifier is a mock implementation of ports.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func NewMockTokenVerifier() *MockTokenVerifier {
	return &MockTokenVerifier{}
}

func (m *MockTokenVerifier) Verify(token string) (domain.Identity, error) {
	args := m.Called(token)
	return args.Get(0).(domain.Identity), args.Error(1)
}

// MockTransactionManager runs fn inline without a database.
type MockTransactionManager struct{}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockTaskService is a mock implementation of ports.TaskService
type MockTaskService struct {
	mock.Mock
}

func NewMockTaskService() *MockTaskService {
	return &MockTaskService{}
}

func (m *MockTaskService) CreateTask(ctx context.Context, params ports.CreateTaskParams) (*domain.Task, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, actor domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, actor, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context, params ports.ListTasksParams) ([]*domain.Task, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, params ports.UpdateTaskParams) (*domain.Task, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

// MockAuthService is a mock implementation of ports.AuthService
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, params ports.RegisterParams) (*domain.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAnnouncementService is a mock implementation of ports.AnnouncementService
type MockAnnouncementService struct {
	mock.Mock
}

func NewMockAnnouncementService() *MockAnnouncementService {
	return &MockAnnouncementService{}
}

func (m *MockAnnouncementService) Announce(ctx context.Context, actor domain.Identity, title, message string) error {
	args := m.Called(ctx, actor, title, message)
	return args.Error(0)
}

// MockCustomerService is a mock implementation of ports.CustomerService
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, params ports.CreateCustomerParams) (*domain.Customer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, actor domain.Identity, customerID uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, actor, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, params ports.ListCustomersParams) ([]*domain.Customer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, params ports.UpdateCustomerParams) (*domain.Customer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, actor domain.Identity, customerID uuid.UUID) error {
	args := m.Called(ctx, actor, customerID)
	return args.Error(0)
}

func (m *MockCustomerService) AddCommunication(ctx context.Context, params ports.AddCommunicationParams) (*domain.Customer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerService) AddDeal(ctx context.Context, params ports.AddDealParams) (*domain.Customer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockInvoiceService is a mock implementation of ports.InvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, params ports.CreateInvoiceParams) (*domain.Invoice, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, actor domain.Identity, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, actor, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, params ports.ListInvoicesParams) ([]*domain.Invoice, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) MarkPaid(ctx context.Context, params ports.MarkPaidParams) (*domain.Invoice, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

// MockTicketService is a mock implementation of ports.TicketService
type MockTicketService struct {
	mock.Mock
}

func NewMockTicketService() *MockTicketService {
	return &MockTicketService{}
}

func (m *MockTicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, actor domain.Identity, ticketID uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) ListTickets(ctx context.Context, params ports.ListTicketsParams) ([]*domain.Ticket, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) UpdateStatus(ctx context.Context, actor domain.Identity, ticketID uuid.UUID, status domain.TicketStatus) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, ticketID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) AssignTicket(ctx context.Context, actor domain.Identity, ticketID, assigneeID uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, ticketID, assigneeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

// MockCommentService is a mock implementation of ports.CommentService
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) CreateComment(ctx context.Context, actor domain.Identity, ticketID uuid.UUID, body string) (*domain.TicketComment, error) {
	args := m.Called(ctx, actor, ticketID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketComment), args.Error(1)
}

func (m *MockCommentService) ListComments(ctx context.Context, actor domain.Identity, ticketID uuid.UUID) ([]*domain.TicketComment, error) {
	args := m.Called(ctx, actor, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TicketComment), args.Error(1)
}
