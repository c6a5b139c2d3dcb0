package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Authentication & Authorization
	ErrMissingCredential  = errors.New("missing credential")
	ErrAuthentication     = errors.New("authentication error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("action forbidden")
	ErrUnauthorized       = errors.New("unauthorized")

	// Real-time rooms
	ErrRoomInvalid  = errors.New("room name is invalid")
	ErrRoomReserved = errors.New("room name uses a reserved prefix")

	// Tenant & user validation
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrSubdomainRequired  = errors.New("subdomain is required")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email format is invalid")
	ErrPasswordTooWeak    = errors.New("password does not meet security requirements")
	ErrPasswordRequired   = errors.New("password is required")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrInvalidRole        = errors.New("invalid role")
	ErrIdentityIncomplete = errors.New("identity is missing user, tenant or role")

	// Task validation
	ErrTaskNotFound        = errors.New("task not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title exceeds maximum length of 100 characters")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length of 1000 characters")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrAssignerRequired    = errors.New("assigned by is required")

	// Customer validation
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrCustomerExists         = errors.New("customer with this email already exists")
	ErrCompanyNameRequired    = errors.New("company name is required")
	ErrCompanyNameTooLong     = errors.New("company name exceeds maximum length of 100 characters")
	ErrInvalidCustomerStatus  = errors.New("invalid customer status")
	ErrNegativeCustomerValue  = errors.New("customer value cannot be negative")
	ErrCustomerCreatorMissing = errors.New("created by is required")
	ErrCustomerHasInvoices    = errors.New("customer has invoices and cannot be deleted")

	ErrInvalidCommunicationType = errors.New("invalid communication type")
	ErrDealTitleRequired        = errors.New("deal title is required")
	ErrNegativeDealValue        = errors.New("deal value cannot be negative")
	ErrInvalidDealStage         = errors.New("invalid deal stage")
	ErrInvalidDealProbability   = errors.New("deal probability must be between 0 and 100")

	// Support tickets
	ErrTicketNotFound            = errors.New("ticket not found")
	ErrSubjectRequired           = errors.New("subject is required")
	ErrSubjectTooLong            = errors.New("subject exceeds maximum length of 200 characters")
	ErrTicketDescriptionRequired = errors.New("description is required")
	ErrTicketDescriptionTooLong  = errors.New("description exceeds maximum length of 5000 characters")
	ErrInvalidTicketStatus       = errors.New("invalid ticket status")
	ErrInvalidTicketPriority     = errors.New("invalid ticket priority")
	ErrInvalidTicketType         = errors.New("invalid ticket type")
	ErrInvalidStatusTransition   = errors.New("invalid status transition")
	ErrTicketClosed              = errors.New("ticket is closed")
	ErrCommentBodyRequired       = errors.New("comment body is required")
	ErrCommentTooLong            = errors.New("comment exceeds maximum length of 2000 characters")

	// Invoice validation
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceItemsRequired = errors.New("invoice requires at least one item")
	ErrInvalidInvoiceItem   = errors.New("invoice item is invalid")
	ErrInvalidTaxRate       = errors.New("tax rate must be between 0 and 100")
	ErrNegativeDiscount     = errors.New("discount cannot be negative")
	ErrNegativeInvoiceTotal = errors.New("invoice total cannot be negative")
	ErrDueDateRequired      = errors.New("due date is required")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrInvoiceNotPayable    = errors.New("invoice cannot be marked as paid in its current status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrConflict    = errors.New("resource conflict")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Err:        ErrForbidden,
		Message:    message,
		Code:       "FORBIDDEN",
		StatusCode: 403,
	}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "NOT_FOUND",
		StatusCode: 404,
	}
}

func NewConflictError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "CONFLICT",
		StatusCode: 409,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
