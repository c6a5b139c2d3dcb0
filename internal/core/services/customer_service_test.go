package services_test

import (
	"context"
	"testing"

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

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("success notifies tenant", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())
		actor := testActor()

		stored := &domain.Customer{ID: uuid.New(), TenantID: actor.TenantID, CompanyName: "Acme"}
		repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
			return c.TenantID == actor.TenantID && c.CreatedBy == actor.UserID
		})).Return(stored, nil)
		notifier.On("NotifyNewCustomer", ctx, stored, actor.TenantID).Once()

		customer, err := svc.CreateCustomer(ctx, ports.CreateCustomerParams{
			Actor:       actor,
			CompanyName: "Acme",
			Email:       "hello@acme.io",
			Value:       decimal.NewFromInt(5000),
		})

		require.NoError(t, err)
		assert.Equal(t, stored, customer)
		notifier.AssertExpectations(t)
	})

	t.Run("duplicate email is not announced", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())

		repo.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrCustomerExists)

		_, err := svc.CreateCustomer(ctx, ports.CreateCustomerParams{Actor: testActor(), CompanyName: "Acme", Email: "hello@acme.io"})

		assert.ErrorIs(t, err, apperrors.ErrCustomerExists)
		notifier.AssertNotCalled(t, "NotifyNewCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := services.NewCustomerService(mocks.NewMockCustomerRepository(), mocks.NewMockNotificationService(), logging.NewNopLogger())

		_, err := svc.CreateCustomer(ctx, ports.CreateCustomerParams{Actor: testActor(), Email: "hello@acme.io"})
		assert.ErrorIs(t, err, apperrors.ErrCompanyNameRequired)
	})
}

func TestCustomerService_GetCustomerIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockCustomerRepository()
	svc := services.NewCustomerService(repo, mocks.NewMockNotificationService(), logging.NewNopLogger())
	actor := testActor()
	id := uuid.New()

	repo.On("GetByID", ctx, actor.TenantID, id).Return(nil, apperrors.ErrCustomerNotFound)

	_, err := svc.GetCustomer(ctx, actor, id)
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
	repo.AssertExpectations(t)
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("applies changes and syncs tenant", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())
		actor := testActor()
		existing := &domain.Customer{ID: uuid.New(), TenantID: actor.TenantID, CompanyName: "Acme", Email: "a@acme.io", Status: domain.CustomerStatusLead}
		status := domain.CustomerStatusCustomer

		repo.On("GetByID", ctx, actor.TenantID, existing.ID).Return(existing, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
			return c.Status == domain.CustomerStatusCustomer && c.CompanyName == "Acme"
		})).Return(existing, nil)
		notifier.On("NotifyCustomerUpdated", ctx, existing).Once()

		updated, err := svc.UpdateCustomer(ctx, ports.UpdateCustomerParams{
			Actor:      actor,
			CustomerID: existing.ID,
			Changes:    domain.CustomerChanges{Status: &status},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.CustomerStatusCustomer, updated.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("invalid change is not written", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())
		actor := testActor()
		existing := &domain.Customer{ID: uuid.New(), TenantID: actor.TenantID, CompanyName: "Acme"}
		bad := domain.CustomerStatus("Churned")

		repo.On("GetByID", ctx, actor.TenantID, existing.ID).Return(existing, nil)

		_, err := svc.UpdateCustomer(ctx, ports.UpdateCustomerParams{Actor: actor, CustomerID: existing.ID, Changes: domain.CustomerChanges{Status: &bad}})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCustomerStatus)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "NotifyCustomerUpdated", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted customer is announced", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())
		actor := testActor()
		id := uuid.New()

		repo.On("Delete", ctx, actor.TenantID, id).Return(nil)
		notifier.On("NotifyCustomerDeleted", ctx, actor.TenantID, id).Once()

		require.NoError(t, svc.DeleteCustomer(ctx, actor, id))
		notifier.AssertExpectations(t)
	})

	t.Run("invoiced customer stays", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())
		actor := testActor()
		id := uuid.New()

		repo.On("Delete", ctx, actor.TenantID, id).Return(apperrors.ErrCustomerHasInvoices)

		assert.ErrorIs(t, svc.DeleteCustomer(ctx, actor, id), apperrors.ErrCustomerHasInvoices)
		notifier.AssertNotCalled(t, "NotifyCustomerDeleted", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Activity(t *testing.T) {
	ctx := context.Background()

	t.Run("communication is stamped with the author", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())
		actor := testActor()
		id := uuid.New()
		stored := &domain.Customer{ID: id, TenantID: actor.TenantID}

		repo.On("AppendCommunication", ctx, actor.TenantID, id, mock.MatchedBy(func(e domain.CustomerCommunication) bool {
			return e.Type == domain.CommunicationEmail && e.CreatedBy == actor.UserID && !e.Date.IsZero()
		})).Return(stored, nil)
		notifier.On("NotifyCustomerUpdated", ctx, stored).Once()

		_, err := svc.AddCommunication(ctx, ports.AddCommunicationParams{Actor: actor, CustomerID: id, Type: domain.CommunicationEmail, Subject: "Quote"})

		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("invalid deal never reaches the repository", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		svc := services.NewCustomerService(repo, mocks.NewMockNotificationService(), logging.NewNopLogger())
		over := 150

		_, err := svc.AddDeal(ctx, ports.AddDealParams{
			Actor:      testActor(),
			CustomerID: uuid.New(),
			Deal:       domain.DealParams{Title: "Upsell", Probability: &over},
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidDealProbability)
		repo.AssertNotCalled(t, "AppendDeal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deal on a foreign customer", func(t *testing.T) {
		repo := mocks.NewMockCustomerRepository()
		notifier := mocks.NewMockNotificationService()
		svc := services.NewCustomerService(repo, notifier, logging.NewNopLogger())
		actor := testActor()
		id := uuid.New()

		repo.On("AppendDeal", ctx, actor.TenantID, id, mock.AnythingOfType("domain.CustomerDeal")).Return(nil, apperrors.ErrCustomerNotFound)

		_, err := svc.AddDeal(ctx, ports.AddDealParams{Actor: actor, CustomerID: id, Deal: domain.DealParams{Title: "Upsell"}})

		assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
		notifier.AssertNotCalled(t, "NotifyCustomerUpdated", mock.Anything, mock.Anything)
	})
}
