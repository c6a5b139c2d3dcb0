package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

const userColumns = `id, tenant_id, name, email, password_hash, role, created_at`

// UserRepository is the secondary adapter for user persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.TenantID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	q := `
		INSERT INTO users (id, tenant_id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		user.ID, user.TenantID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt,
	))
	if err != nil {
		if _, ok := constraintViolation(err, pgUniqueViolation); ok {
			return nil, apperrors.ErrUserExists
		}
		if _, ok := constraintViolation(err, pgForeignKeyViolation); ok {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// GetByEmail looks a user up by login email across all tenants.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, q, email))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetByID returns a user of the given tenant.
func (r *UserRepository) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND id = $2`

	user, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, q, tenantID, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
