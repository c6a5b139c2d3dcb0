package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// TenantRepository is the secondary adapter for tenant persistence.
type TenantRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TenantRepository = (*TenantRepository)(nil)

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(pool *pgxpool.Pool) ports.TenantRepository {
	return &TenantRepository{pool: pool}
}

// Create persists a new tenant.
func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	const q = `
		INSERT INTO tenants (id, name, subdomain, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, subdomain, created_at`

	var out domain.Tenant
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, q, tenant.ID, tenant.Name, tenant.Subdomain, tenant.CreatedAt).
		Scan(&out.ID, &out.Name, &out.Subdomain, &out.CreatedAt)
	if err != nil {
		if _, ok := constraintViolation(err, pgUniqueViolation); ok {
			return nil, fmt.Errorf("subdomain %q: %w", tenant.Subdomain, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return &out, nil
}

// GetBySubdomain looks a tenant up by its subdomain.
func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	const q = `SELECT id, name, subdomain, created_at FROM tenants WHERE subdomain = $1`

	var out domain.Tenant
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, q, subdomain).
		Scan(&out.ID, &out.Name, &out.Subdomain, &out.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &out, nil
}
