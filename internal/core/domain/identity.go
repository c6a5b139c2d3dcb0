package domain

import (
	"github.com/google/uuid"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

// Role is a user's role inside a tenant.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Identity is the set of claims a verified credential carries. It is attached
// to a connection once, at admission, and never changes afterwards.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
}

// Validate checks that every claim is present.
func (i Identity) Validate() error {
	if i.UserID == uuid.Nil || i.TenantID == uuid.Nil || !i.Role.IsValid() {
		return apperrors.ErrIdentityIncomplete
	}
	return nil
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
