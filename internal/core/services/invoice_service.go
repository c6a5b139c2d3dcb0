package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// InvoiceService implements business logic for invoices
type InvoiceService struct {
	invoiceRepo  ports.InvoiceRepository
	customerRepo ports.CustomerRepository
	txManager    ports.TransactionManager
	notifier     ports.NotificationService
	logger       *slog.Logger
	now          func() time.Time
}

var _ ports.InvoiceService = (*InvoiceService)(nil)

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo ports.InvoiceRepository,
	customerRepo ports.CustomerRepository,
	txManager ports.TransactionManager,
	notifier ports.NotificationService,
	logger *slog.Logger,
) ports.InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		txManager:    txManager,
		notifier:     notifier,
		logger:       logger.With("component", "invoices"),
		now:          time.Now,
	}
}

// CreateInvoice drafts an invoice for a customer of the actor's tenant. The
// invoice number is reserved in the same transaction that stores it.
func (s *InvoiceService) CreateInvoice(ctx context.Context, params ports.CreateInvoiceParams) (*domain.Invoice, error) {
	if _, err := s.customerRepo.GetByID(ctx, params.Actor.TenantID, params.CustomerID); err != nil {
		return nil, err
	}

	invoice, err := domain.NewInvoice(domain.InvoiceParams{
		TenantID:   params.Actor.TenantID,
		CustomerID: params.CustomerID,
		Items:      params.Items,
		TaxRate:    params.TaxRate,
		Discount:   params.Discount,
		Currency:   params.Currency,
		IssueDate:  params.IssueDate,
		DueDate:    params.DueDate,
		CreatedBy:  params.Actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	var created *domain.Invoice
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		year := invoice.IssueDate.Year()
		seq, err := s.invoiceRepo.NextSequence(ctx, invoice.TenantID, year)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = domain.FormatInvoiceNumber(year, seq)

		created, err = s.invoiceRepo.Create(ctx, invoice)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "invoice created",
		"invoice_id", created.ID,
		"invoice_number", created.InvoiceNumber,
	)
	return created, nil
}

// GetInvoice returns an invoice of the actor's tenant.
func (s *InvoiceService) GetInvoice(ctx context.Context, actor domain.Identity, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, actor.TenantID, invoiceID)
}

// ListInvoices lists invoices of the actor's tenant.
func (s *InvoiceService) ListInvoices(ctx context.Context, params ports.ListInvoicesParams) ([]*domain.Invoice, error) {
	limit, offset := normalizePage(params.Limit, params.Offset)
	return s.invoiceRepo.List(ctx, ports.InvoiceFilter{
		TenantID:   params.Actor.TenantID,
		Status:     params.Status,
		CustomerID: params.CustomerID,
		Limit:      limit,
		Offset:     offset,
	})
}

// MarkPaid settles an invoice and tells the tenant about it.
func (s *InvoiceService) MarkPaid(ctx context.Context, params ports.MarkPaidParams) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, params.Actor.TenantID, params.InvoiceID)
	if err != nil {
		return nil, err
	}

	method := params.Method
	if method == "" {
		method = domain.PaymentOther
	}
	paidAt := params.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	if err := invoice.MarkPaid(method, params.Reference, paidAt); err != nil {
		return nil, err
	}

	updated, err := s.invoiceRepo.Update(ctx, invoice)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, updated.TenantID, updated.CustomerID)
	if err != nil {
		// The payment is already stored; only the notification is lost.
		s.logger.WarnContext(ctx, "customer lookup failed, skipping paid notification",
			"invoice_id", updated.ID,
			"error", err,
		)
		return updated, nil
	}

	s.notifier.NotifyInvoicePaid(ctx, updated, customer, updated.TenantID)
	return updated, nil
}
