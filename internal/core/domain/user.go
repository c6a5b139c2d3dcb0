package domain

import (
	"net/mail"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

// Password validation constants
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
	MaxNameLength     = 255
	MaxEmailLength    = 255
)

// PasswordRequirements defines what a valid password needs
type PasswordRequirements struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
}

// DefaultPasswordRequirements returns the default password requirements
func DefaultPasswordRequirements() PasswordRequirements {
	return PasswordRequirements{
		MinLength:        MinPasswordLength,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
	}
}

// User is a member of exactly one tenant.
type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity returns the claims a token issued for this user carries.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, TenantID: u.TenantID, Role: u.Role}
}

// UserRegistrationParams holds parameters for user registration
type UserRegistrationParams struct {
	Name     string
	Email    string
	Password string
}

// Validate validates user registration parameters
func (p *UserRegistrationParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Name == "" {
		errs.Add("name", "Name is required")
	} else if len(p.Name) > MaxNameLength {
		errs.Add("name", "Name must be 255 characters or less")
	}

	if p.Email == "" {
		errs.Add("email", "Email is required")
	} else if len(p.Email) > MaxEmailLength {
		errs.Add("email", "Email must be 255 characters or less")
	} else if !isValidEmail(p.Email) {
		errs.Add("email", "Invalid email format")
	}

	for _, msg := range ValidatePassword(p.Password) {
		errs.Add("password", msg)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements
// Returns a slice of error messages (empty if valid)
func ValidatePassword(password string) []string {
	var errors []string
	requirements := DefaultPasswordRequirements()

	if len(password) < requirements.MinLength {
		errors = append(errors, "Password must be at least 8 characters long")
	}

	if len(password) > MaxPasswordLength {
		errors = append(errors, "Password must be 72 characters or less")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if requirements.RequireUppercase && !hasUpper {
		errors = append(errors, "Password must contain at least one uppercase letter")
	}
	if requirements.RequireLowercase && !hasLower {
		errors = append(errors, "Password must contain at least one lowercase letter")
	}
	if requirements.RequireNumber && !hasNumber {
		errors = append(errors, "Password must contain at least one number")
	}

	return errors
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	if errs := ValidatePassword(password); len(errs) > 0 {
		return "", apperrors.ErrPasswordTooWeak
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// NewUser creates a new user with validated parameters
func NewUser(params UserRegistrationParams, tenantID uuid.UUID, role Role) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, apperrors.ErrInvalidRole
	}

	hashedPassword, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
