package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
)

// seedTenant creates a fresh tenant with one admin user.
func seedTenant(t *testing.T) (*domain.Tenant, *domain.User) {
	t.Helper()
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	ctx := context.Background()

	sub := "t" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	tenant, err := domain.NewTenant("Tenant "+sub, sub)
	require.NoError(t, err)
	tenant, err = NewTenantRepository(testPool).Create(ctx, tenant)
	require.NoError(t, err)

	user, err := domain.NewUser(domain.UserRegistrationParams{
		Name:     "Admin",
		Email:    sub + "@example.com",
		Password: "Password123",
	}, tenant.ID, domain.RoleAdmin)
	require.NoError(t, err)
	user, err = NewUserRepository(testPool).Create(ctx, user)
	require.NoError(t, err)

	return tenant, user
}

func seedCustomer(t *testing.T, tenant *domain.Tenant, creator *domain.User) *domain.Customer {
	t.Helper()

	customer, err := domain.NewCustomer(domain.CustomerParams{
		TenantID:    tenant.ID,
		CompanyName: "Acme Ltd",
		Email:       uuid.NewString()[:8] + "@acme.test",
		CreatedBy:   creator.ID,
	})
	require.NoError(t, err)
	customer, err = NewCustomerRepository(testPool).Create(context.Background(), customer)
	require.NoError(t, err)
	return customer
}
