package domain

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

const (
	// TenantRoomPrefix namespaces the implicit room shared by a tenant's team.
	TenantRoomPrefix = "tenant-"
	// UserRoomPrefix namespaces the implicit room holding one user's devices.
	UserRoomPrefix = "user-"
	// MaxRoomNameLength bounds explicit room names chosen by clients.
	MaxRoomNameLength = 128
)

// TenantRoom returns the implicit room for a tenant.
func TenantRoom(tenantID uuid.UUID) string {
	return TenantRoomPrefix + tenantID.String()
}

// UserRoom returns the implicit room for a user.
func UserRoom(userID uuid.UUID) string {
	return UserRoomPrefix + userID.String()
}

// ScopedRoom returns the hub key of a client-chosen room. Explicit rooms are
// private to a tenant: two tenants joining "deal-1" get two different rooms.
func ScopedRoom(tenantID uuid.UUID, name string) string {
	return tenantID.String() + "/" + name
}

// IsReservedRoom reports whether name falls in the implicit room namespace.
func IsReservedRoom(name string) bool {
	return strings.HasPrefix(name, TenantRoomPrefix) || strings.HasPrefix(name, UserRoomPrefix)
}

// ValidateExplicitRoom checks a client-chosen room name. Names in the
// tenant-/user- namespace are refused so a client cannot join another
// tenant's or user's implicit room by guessing its id.
func ValidateExplicitRoom(name string) error {
	if strings.TrimSpace(name) == "" || len(name) > MaxRoomNameLength {
		return apperrors.ErrRoomInvalid
	}
	if IsReservedRoom(name) {
		return apperrors.ErrRoomReserved
	}
	return nil
}
