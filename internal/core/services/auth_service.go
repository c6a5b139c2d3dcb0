package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// AuthService implements authentication business logic
type AuthService struct {
	tenantRepo ports.TenantRepository
	userRepo   ports.UserRepository
	txManager  ports.TransactionManager
	logger     *slog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service
func NewAuthService(
	tenantRepo ports.TenantRepository,
	userRepo ports.UserRepository,
	txManager ports.TransactionManager,
	logger *slog.Logger,
) ports.AuthService {
	return &AuthService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		logger:     logger.With("component", "auth"),
	}
}

// Register creates a user account. The first user of an unknown subdomain
// creates the tenant and becomes its admin; later users join as members.
func (s *AuthService) Register(ctx context.Context, params ports.RegisterParams) (*domain.User, error) {
	regParams := domain.UserRegistrationParams{
		Name:     strings.TrimSpace(params.Name),
		Email:    normalizeEmail(params.Email),
		Password: params.Password,
	}
	if err := regParams.Validate(); err != nil {
		return nil, err
	}

	subdomain := strings.ToLower(strings.TrimSpace(params.Subdomain))
	if subdomain == "" {
		return nil, apperrors.ErrSubdomainRequired
	}

	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, regParams.Email)
	if err == nil {
		return nil, apperrors.ErrUserExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	var created *domain.User
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		role := domain.RoleUser
		tenant, err := s.tenantRepo.GetBySubdomain(ctx, subdomain)
		switch {
		case errors.Is(err, apperrors.ErrTenantNotFound):
			tenant, err = domain.NewTenant(params.TenantName, subdomain)
			if err != nil {
				return err
			}
			if tenant, err = s.tenantRepo.Create(ctx, tenant); err != nil {
				return err
			}
			role = domain.RoleAdmin
		case err != nil:
			return err
		}

		user, err := domain.NewUser(regParams, tenant.ID, role)
		if err != nil {
			return err
		}
		created, err = s.userRepo.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", created.ID,
		"tenant_id", created.TenantID,
		"role", created.Role,
	)
	return created, nil
}

// Login authenticates a user with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if password == "" {
		return nil, apperrors.ErrPasswordRequired
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Don't reveal whether email exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// Me returns the account behind an authenticated identity.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if err := identity.Validate(); err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.userRepo.GetByID(ctx, identity.TenantID, identity.UserID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
