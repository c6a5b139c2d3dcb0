package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// CustomerService implements business logic for customers
type CustomerService struct {
	customerRepo ports.CustomerRepository
	notifier     ports.NotificationService
	logger       *slog.Logger
}

var _ ports.CustomerService = (*CustomerService)(nil)

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo ports.CustomerRepository,
	notifier ports.NotificationService,
	logger *slog.Logger,
) ports.CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		notifier:     notifier,
		logger:       logger.With("component", "customers"),
	}
}

// CreateCustomer adds a customer to the actor's tenant and tells the team.
func (s *CustomerService) CreateCustomer(ctx context.Context, params ports.CreateCustomerParams) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(domain.CustomerParams{
		TenantID:    params.Actor.TenantID,
		CompanyName: params.CompanyName,
		ContactName: params.ContactName,
		Email:       params.Email,
		Phone:       params.Phone,
		Status:      params.Status,
		Value:       params.Value,
		CreatedBy:   params.Actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.customerRepo.Create(ctx, customer)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer created", "customer_id", created.ID)
	s.notifier.NotifyNewCustomer(ctx, created, params.Actor.TenantID)
	return created, nil
}

// GetCustomer returns a customer of the actor's tenant.
func (s *CustomerService) GetCustomer(ctx context.Context, actor domain.Identity, customerID uuid.UUID) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, actor.TenantID, customerID)
}

// ListCustomers lists customers of the actor's tenant.
func (s *CustomerService) ListCustomers(ctx context.Context, params ports.ListCustomersParams) ([]*domain.Customer, error) {
	limit, offset := normalizePage(params.Limit, params.Offset)
	return s.customerRepo.List(ctx, ports.CustomerFilter{
		TenantID: params.Actor.TenantID,
		Status:   params.Status,
		Limit:    limit,
		Offset:   offset,
	})
}

// UpdateCustomer applies a partial update and syncs the tenant.
func (s *CustomerService) UpdateCustomer(ctx context.Context, params ports.UpdateCustomerParams) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, params.Actor.TenantID, params.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := customer.Apply(params.Changes); err != nil {
		return nil, err
	}

	updated, err := s.customerRepo.Update(ctx, customer)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer updated", "customer_id", updated.ID)
	s.notifier.NotifyCustomerUpdated(ctx, updated)
	return updated, nil
}

// DeleteCustomer removes a customer that has never been invoiced.
func (s *CustomerService) DeleteCustomer(ctx context.Context, actor domain.Identity, customerID uuid.UUID) error {
	if err := s.customerRepo.Delete(ctx, actor.TenantID, customerID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "customer deleted", "customer_id", customerID)
	s.notifier.NotifyCustomerDeleted(ctx, actor.TenantID, customerID)
	return nil
}

// AddCommunication logs a contact with a customer.
func (s *CustomerService) AddCommunication(ctx context.Context, params ports.AddCommunicationParams) (*domain.Customer, error) {
	entry, err := domain.NewCustomerCommunication(params.Type, params.Subject, params.Description, params.Date, params.Actor.UserID)
	if err != nil {
		return nil, err
	}

	updated, err := s.customerRepo.AppendCommunication(ctx, params.Actor.TenantID, params.CustomerID, entry)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyCustomerUpdated(ctx, updated)
	return updated, nil
}

// AddDeal opens a deal with a customer.
func (s *CustomerService) AddDeal(ctx context.Context, params ports.AddDealParams) (*domain.Customer, error) {
	deal, err := domain.NewCustomerDeal(params.Deal)
	if err != nil {
		return nil, err
	}

	updated, err := s.customerRepo.AppendDeal(ctx, params.Actor.TenantID, params.CustomerID, deal)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "deal added", "customer_id", updated.ID, "deal_id", deal.ID)
	s.notifier.NotifyCustomerUpdated(ctx, updated)
	return updated, nil
}
