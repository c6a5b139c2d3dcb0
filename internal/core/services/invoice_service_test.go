package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/mocks"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
	"github.com/lorrc/skycrm-backend/internal/core/services"
	"github.com/lorrc/skycrm-backend/internal/infrastructure/logging"
)

type invoiceFixture struct {
	svc          ports.InvoiceService
	invoiceRepo  *mocks.MockInvoiceRepository
	customerRepo *mocks.MockCustomerRepository
	notifier     *mocks.MockNotificationService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo:  mocks.NewMockInvoiceRepository(),
		customerRepo: mocks.NewMockCustomerRepository(),
		notifier:     mocks.NewMockNotificationService(),
	}
	f.svc = services.NewInvoiceService(f.invoiceRepo, f.customerRepo, mocks.NewMockTransactionManager(), f.notifier, logging.NewNopLogger())
	return f
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	ctx := context.Background()
	issue := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	t.Run("reserves a number and stores the draft", func(t *testing.T) {
		f := newInvoiceFixture()
		actor := testActor()
		customer := &domain.Customer{ID: uuid.New(), TenantID: actor.TenantID, CompanyName: "Acme"}

		f.customerRepo.On("GetByID", ctx, actor.TenantID, customer.ID).Return(customer, nil)
		f.invoiceRepo.On("NextSequence", ctx, actor.TenantID, 2026).Return(int64(7), nil)
		f.invoiceRepo.On("Create", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.InvoiceNumber == "INV-2026-00007" && inv.Total.Equal(decimal.RequireFromString("220"))
		})).Return(&domain.Invoice{ID: uuid.New(), InvoiceNumber: "INV-2026-00007"}, nil)

		invoice, err := f.svc.CreateInvoice(ctx, ports.CreateInvoiceParams{
			Actor:      actor,
			CustomerID: customer.ID,
			Items:      []domain.InvoiceItem{{Description: "Setup", Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(100)}},
			TaxRate:    decimal.NewFromInt(10),
			IssueDate:  issue,
			DueDate:    issue.AddDate(0, 1, 0),
		})

		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00007", invoice.InvoiceNumber)
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("customer from another tenant", func(t *testing.T) {
		f := newInvoiceFixture()
		actor := testActor()
		customerID := uuid.New()

		f.customerRepo.On("GetByID", ctx, actor.TenantID, customerID).Return(nil, apperrors.ErrCustomerNotFound)

		_, err := f.svc.CreateInvoice(ctx, ports.CreateInvoiceParams{Actor: actor, CustomerID: customerID})
		assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
		f.invoiceRepo.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_MarkPaid(t *testing.T) {
	ctx := context.Background()

	newInvoice := func(actor domain.Identity, customerID uuid.UUID, status domain.InvoiceStatus) *domain.Invoice {
		return &domain.Invoice{
			ID:            uuid.New(),
			TenantID:      actor.TenantID,
			CustomerID:    customerID,
			InvoiceNumber: "INV-2026-00001",
			Status:        status,
		}
	}

	t.Run("success notifies tenant", func(t *testing.T) {
		f := newInvoiceFixture()
		actor := testActor()
		customer := &domain.Customer{ID: uuid.New(), TenantID: actor.TenantID, CompanyName: "Acme"}
		invoice := newInvoice(actor, customer.ID, domain.InvoiceStatusSent)

		f.invoiceRepo.On("GetByID", ctx, actor.TenantID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Update", ctx, invoice).Return(invoice, nil)
		f.customerRepo.On("GetByID", ctx, actor.TenantID, customer.ID).Return(customer, nil)
		f.notifier.On("NotifyInvoicePaid", ctx, invoice, customer, actor.TenantID).Once()

		paid, err := f.svc.MarkPaid(ctx, ports.MarkPaidParams{Actor: actor, InvoiceID: invoice.ID, Method: domain.PaymentCreditCard})

		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
		require.NotNil(t, paid.PaymentDate)
		f.notifier.AssertExpectations(t)
	})

	t.Run("already paid", func(t *testing.T) {
		f := newInvoiceFixture()
		actor := testActor()
		invoice := newInvoice(actor, uuid.New(), domain.InvoiceStatusPaid)

		f.invoiceRepo.On("GetByID", ctx, actor.TenantID, invoice.ID).Return(invoice, nil)

		_, err := f.svc.MarkPaid(ctx, ports.MarkPaidParams{Actor: actor, InvoiceID: invoice.ID})
		assert.ErrorIs(t, err, apperrors.ErrInvoiceNotPayable)
		f.invoiceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "NotifyInvoicePaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("losing a concurrent payment sends no notification", func(t *testing.T) {
		f := newInvoiceFixture()
		actor := testActor()
		invoice := newInvoice(actor, uuid.New(), domain.InvoiceStatusSent)

		f.invoiceRepo.On("GetByID", ctx, actor.TenantID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Update", ctx, invoice).Return(nil, apperrors.ErrInvoiceNotPayable)

		_, err := f.svc.MarkPaid(ctx, ports.MarkPaidParams{Actor: actor, InvoiceID: invoice.ID, Method: domain.PaymentCash})

		assert.ErrorIs(t, err, apperrors.ErrInvoiceNotPayable)
		f.customerRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "NotifyInvoicePaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("customer lookup failure keeps the payment", func(t *testing.T) {
		f := newInvoiceFixture()
		actor := testActor()
		invoice := newInvoice(actor, uuid.New(), domain.InvoiceStatusOverdue)

		f.invoiceRepo.On("GetByID", ctx, actor.TenantID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Update", ctx, invoice).Return(invoice, nil)
		f.customerRepo.On("GetByID", ctx, actor.TenantID, invoice.CustomerID).Return(nil, errors.New("db down"))

		paid, err := f.svc.MarkPaid(ctx, ports.MarkPaidParams{Actor: actor, InvoiceID: invoice.ID})

		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
		assert.Equal(t, domain.PaymentOther, *paid.PaymentMethod)
		f.notifier.AssertNotCalled(t, "NotifyInvoicePaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
