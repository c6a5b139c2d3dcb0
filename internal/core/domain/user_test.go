package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectValid bool
	}{
		{"valid password", "Password1", true},
		{"valid with special char", "Password1!", true},
		{"too short", "Pass1", false},
		{"7 chars", "Passwo1", false},
		{"no uppercase", "password1", false},
		{"no lowercase", "PASSWORD1", false},
		{"no number", "Password", false},
		{"too long", strings.Repeat("Pa1", 25), false},
		{"exactly 8 chars valid", "Passwor1", true},
		{"exactly 72 chars valid", strings.Repeat("P", 35) + strings.Repeat("a", 35) + "12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := domain.ValidatePassword(tt.password)
			if tt.expectValid {
				assert.Empty(t, errs, "expected password to be valid, got errors: %v", errs)
			} else {
				assert.NotEmpty(t, errs, "expected password to be invalid")
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	t.Run("valid password", func(t *testing.T) {
		hash, err := domain.HashPassword("Password1")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "Password1", hash)
	})

	t.Run("weak password fails", func(t *testing.T) {
		hash, err := domain.HashPassword("weak")
		assert.ErrorIs(t, err, apperrors.ErrPasswordTooWeak)
		assert.Empty(t, hash)
	})
}

func TestUser_CheckPassword(t *testing.T) {
	hash, err := domain.HashPassword("Password1")
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), PasswordHash: hash}

	assert.True(t, user.CheckPassword("Password1"))
	assert.False(t, user.CheckPassword("WrongPassword1"))
	assert.False(t, user.CheckPassword(""))
}

func TestUserRegistrationParams_Validate(t *testing.T) {
	tests := []struct {
		name        string
		params      domain.UserRegistrationParams
		errorFields []string
	}{
		{
			name:   "valid params",
			params: domain.UserRegistrationParams{Name: "Jane Doe", Email: "jane@example.com", Password: "Password1"},
		},
		{
			name:        "empty name",
			params:      domain.UserRegistrationParams{Email: "jane@example.com", Password: "Password1"},
			errorFields: []string{"name"},
		},
		{
			name:        "name too long",
			params:      domain.UserRegistrationParams{Name: strings.Repeat("a", 256), Email: "jane@example.com", Password: "Password1"},
			errorFields: []string{"name"},
		},
		{
			name:        "invalid email format",
			params:      domain.UserRegistrationParams{Name: "Jane Doe", Email: "not-an-email", Password: "Password1"},
			errorFields: []string{"email"},
		},
		{
			name:        "multiple errors",
			params:      domain.UserRegistrationParams{Email: "invalid", Password: "weak"},
			errorFields: []string{"name", "email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if len(tt.errorFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var validationErr *apperrors.ValidationErrors
			require.ErrorAs(t, err, &validationErr)
			for _, field := range tt.errorFields {
				assert.Contains(t, validationErr.Errors, field, "expected error for field %q", field)
			}
		})
	}
}

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()
	params := domain.UserRegistrationParams{Name: "Jane Doe", Email: "jane@example.com", Password: "Password1"}

	t.Run("valid user creation", func(t *testing.T) {
		user, err := domain.NewUser(params, tenantID, domain.RoleAdmin)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, tenantID, user.TenantID)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		assert.NotEqual(t, params.Password, user.PasswordHash)
		assert.False(t, user.CreatedAt.IsZero())

		identity := user.Identity()
		assert.Equal(t, user.ID, identity.UserID)
		assert.Equal(t, tenantID, identity.TenantID)
		assert.True(t, identity.IsAdmin())
	})

	t.Run("invalid role", func(t *testing.T) {
		user, err := domain.NewUser(params, tenantID, domain.Role("owner"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
		assert.Nil(t, user)
	})

	t.Run("invalid params", func(t *testing.T) {
		user, err := domain.NewUser(domain.UserRegistrationParams{Email: "invalid"}, tenantID, domain.RoleUser)
		assert.Error(t, err)
		assert.Nil(t, user)
	})
}

func TestIdentity_Validate(t *testing.T) {
	valid := domain.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleUser}
	assert.NoError(t, valid.Validate())
	assert.False(t, valid.IsAdmin())

	missingTenant := valid
	missingTenant.TenantID = uuid.Nil
	assert.ErrorIs(t, missingTenant.Validate(), apperrors.ErrIdentityIncomplete)

	badRole := valid
	badRole.Role = ""
	assert.ErrorIs(t, badRole.Validate(), apperrors.ErrIdentityIncomplete)
}

func TestNewTenant(t *testing.T) {
	tenant, err := domain.NewTenant("Acme Corp", "  Acme ")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Subdomain)
	assert.Equal(t, "Acme Corp", tenant.Name)

	_, err = domain.NewTenant("Acme", "")
	assert.ErrorIs(t, err, apperrors.ErrSubdomainRequired)

	_, err = domain.NewTenant("", "bad_sub")
	var validationErr *apperrors.ValidationErrors
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors, "subdomain")
	assert.Contains(t, validationErr.Errors, "tenantName")
}
